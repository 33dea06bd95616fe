package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// CreateRegistryTxParams configures an offline registry topic creation.
// Zero values produce an indexed registry with the default TTL.
type CreateRegistryTxParams struct {
	RegistryType RegistryType
	TTL          int64
	AdminKey     hedera.Key
	SubmitKey    hedera.Key
	MemoOverride string
}

// AddCollectionTxParams configures a register entry pointing at a
// collection topic.
type AddCollectionTxParams struct {
	RegistryTopicID   string
	CollectionTopicID string
	Metadata          string
	Memo              string
	AnalyticsMemo     string
	Protocol          string
}

// UpdateCollectionTxParams configures an update entry replacing the entry
// identified by UID.
type UpdateCollectionTxParams struct {
	RegistryTopicID   string
	UID               string
	CollectionTopicID string
	Metadata          string
	Memo              string
	AnalyticsMemo     string
	Protocol          string
}

// RemoveCollectionTxParams configures a delete entry for UID.
type RemoveCollectionTxParams struct {
	RegistryTopicID string
	UID             string
	Memo            string
	AnalyticsMemo   string
	Protocol        string
}

// MigrateRegistryTxParams configures a migrate entry pointing at the
// successor registry topic.
type MigrateRegistryTxParams struct {
	RegistryTopicID string
	TargetTopicID   string
	Metadata        string
	Memo            string
	AnalyticsMemo   string
	Protocol        string
}

// BuildCreateRegistryTx assembles the topic create transaction for a new
// registry. The transaction is returned unfrozen so callers can sign and
// execute it themselves.
func BuildCreateRegistryTx(params CreateRegistryTxParams) *hedera.TopicCreateTransaction {
	memo := strings.TrimSpace(params.MemoOverride)
	if memo == "" {
		memo = BuildTopicMemo(registryTypeOrDefault(params.RegistryType), ttlOrDefault(params.TTL))
	}

	transaction := hedera.NewTopicCreateTransaction().SetTopicMemo(memo)
	if params.AdminKey != nil {
		transaction.SetAdminKey(params.AdminKey)
	}
	if params.SubmitKey != nil {
		transaction.SetSubmitKey(params.SubmitKey)
	}
	return transaction
}

// BuildAddCollectionTx assembles the submit transaction for a register
// entry.
func BuildAddCollectionTx(params AddCollectionTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	return buildRegistryMessageTx(params.RegistryTopicID, Message{
		P:        protocolOrDefault(params.Protocol),
		Op:       OperationRegister,
		TopicID:  params.CollectionTopicID,
		Metadata: params.Metadata,
		Memo:     params.Memo,
	}, params.AnalyticsMemo)
}

// BuildUpdateCollectionTx assembles the submit transaction for an update
// entry.
func BuildUpdateCollectionTx(params UpdateCollectionTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	return buildRegistryMessageTx(params.RegistryTopicID, Message{
		P:        protocolOrDefault(params.Protocol),
		Op:       OperationUpdate,
		UID:      params.UID,
		TopicID:  params.CollectionTopicID,
		Metadata: params.Metadata,
		Memo:     params.Memo,
	}, params.AnalyticsMemo)
}

// BuildRemoveCollectionTx assembles the submit transaction for a delete
// entry.
func BuildRemoveCollectionTx(params RemoveCollectionTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	return buildRegistryMessageTx(params.RegistryTopicID, Message{
		P:    protocolOrDefault(params.Protocol),
		Op:   OperationDelete,
		UID:  params.UID,
		Memo: params.Memo,
	}, params.AnalyticsMemo)
}

// BuildMigrateRegistryTx assembles the submit transaction for a migrate
// entry.
func BuildMigrateRegistryTx(params MigrateRegistryTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	return buildRegistryMessageTx(params.RegistryTopicID, Message{
		P:        protocolOrDefault(params.Protocol),
		Op:       OperationMigrate,
		TopicID:  params.TargetTopicID,
		Metadata: params.Metadata,
		Memo:     params.Memo,
	}, params.AnalyticsMemo)
}

func protocolOrDefault(protocol string) string {
	if trimmed := strings.TrimSpace(protocol); trimmed != "" {
		return trimmed
	}
	return defaultProtocol
}

func buildRegistryMessageTx(
	registryTopicID string,
	message Message,
	transactionMemo string,
) (*hedera.TopicMessageSubmitTransaction, error) {
	if err := ValidateMessage(message); err != nil {
		return nil, err
	}

	topicID, err := parseRegistryTopicID(registryTopicID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registry message: %w", err)
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(payload)
	if memo := strings.TrimSpace(transactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

func parseRegistryTopicID(raw string) (hedera.TopicID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return hedera.TopicID{}, fmt.Errorf("registry topic ID is required")
	}
	topicID, err := hedera.TopicIDFromString(trimmed)
	if err != nil {
		return hedera.TopicID{}, fmt.Errorf("invalid registry topic ID: %w", err)
	}
	return topicID, nil
}
