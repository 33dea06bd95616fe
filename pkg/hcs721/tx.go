package hcs721

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// SubmitMessageTxParams configures a raw submit against a collection topic.
// Payload is either a pre-encoded []byte or a Message to validate and
// serialize.
type SubmitMessageTxParams struct {
	TopicID         string
	Payload         any
	TransactionMemo string
}

// DeployTxParams configures the deploy message that turns a bare topic into
// a collection. MaxSupply zero deploys without a mint cap.
type DeployTxParams struct {
	TopicID         string
	Name            string
	Symbol          string
	MaxSupply       int64
	BaseURI         string
	Metadata        string
	Memo            string
	TransactionMemo string
}

// MintTxParams configures a mint to the To holder. TokenURI may be empty
// when the collection deployed with a base URI.
type MintTxParams struct {
	TopicID         string
	To              string
	TokenURI        string
	Memo            string
	TransactionMemo string
}

// TransferTxParams configures a transfer of Serial from From to To.
type TransferTxParams struct {
	TopicID         string
	Serial          int64
	From            string
	To              string
	Memo            string
	TransactionMemo string
}

// ApproveTxParams configures a per-serial approval grant. An empty To
// revokes the standing approval.
type ApproveTxParams struct {
	TopicID         string
	Serial          int64
	To              string
	Memo            string
	TransactionMemo string
}

// ApproveAllTxParams configures an operator grant or revocation covering
// every item From holds in the collection.
type ApproveAllTxParams struct {
	TopicID         string
	From            string
	Operator        string
	Approved        bool
	Memo            string
	TransactionMemo string
}

// BurnTxParams configures a burn of Serial held by From.
type BurnTxParams struct {
	TopicID         string
	Serial          int64
	From            string
	Memo            string
	TransactionMemo string
}

// UpdateURITxParams configures a metadata URI rewrite for Serial.
type UpdateURITxParams struct {
	TopicID         string
	Serial          int64
	TokenURI        string
	Memo            string
	TransactionMemo string
}

// RegisterTxParams configures the registry entry announcing a collection
// topic for indexer discovery.
type RegisterTxParams struct {
	RegistryTopicID string
	Name            string
	Metadata        string
	IsPrivate       bool
	TopicID         string
	Memo            string
	TransactionMemo string
}

// BuildHCS721SubmitMessageTx builds a generic HCS-721 submit transaction.
func BuildHCS721SubmitMessageTx(params SubmitMessageTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	trimmedTopicID := strings.TrimSpace(params.TopicID)
	if trimmedTopicID == "" {
		return nil, fmt.Errorf("topic ID is required")
	}
	topicID, err := hedera.TopicIDFromString(trimmedTopicID)
	if err != nil {
		return nil, fmt.Errorf("invalid topic ID: %w", err)
	}

	payload, err := encodeTxPayload(params.Payload)
	if err != nil {
		return nil, err
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(payload)
	if memo := strings.TrimSpace(params.TransactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}
	return transaction, nil
}

func encodeTxPayload(payload any) ([]byte, error) {
	switch typed := payload.(type) {
	case []byte:
		return typed, nil
	case Message:
		encoded, _, err := BuildMessagePayload(typed)
		if err != nil {
			return nil, err
		}
		return encoded, nil
	default:
		return nil, fmt.Errorf("payload must be []byte or hcs721.Message")
	}
}

// BuildHCS721DeployTx builds a collection deploy transaction.
func BuildHCS721DeployTx(params DeployTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	maxSupply := ""
	if params.MaxSupply > 0 {
		maxSupply = FormatSerial(params.MaxSupply)
	}

	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationDeploy,
		Name:      params.Name,
		Symbol:    params.Symbol,
		MaxSupply: maxSupply,
		BaseURI:   params.BaseURI,
		Metadata:  params.Metadata,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721MintTx builds a mint transaction. The serial is assigned by
// indexers in consensus order, never by the submitter.
func BuildHCS721MintTx(params MintTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationMint,
		To:        params.To,
		TokenURI:  params.TokenURI,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721TransferTx builds a transfer transaction.
func BuildHCS721TransferTx(params TransferTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationTransfer,
		Serial:    FormatSerial(params.Serial),
		From:      params.From,
		To:        params.To,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721ApproveTx builds an item approval transaction. An empty To
// revokes any standing approval for the serial.
func BuildHCS721ApproveTx(params ApproveTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationApprove,
		Serial:    FormatSerial(params.Serial),
		To:        params.To,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721ApproveAllTx builds an operator approval transaction.
func BuildHCS721ApproveAllTx(params ApproveAllTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	approved := params.Approved
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationApproveAll,
		From:      params.From,
		Operator:  params.Operator,
		Approved:  &approved,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721BurnTx builds a burn transaction.
func BuildHCS721BurnTx(params BurnTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationBurn,
		Serial:    FormatSerial(params.Serial),
		From:      params.From,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721UpdateURITx builds a token URI update transaction.
func BuildHCS721UpdateURITx(params UpdateURITxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationUpdateURI,
		Serial:    FormatSerial(params.Serial),
		TokenURI:  params.TokenURI,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.TopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}

// BuildHCS721RegisterTx builds a registry registration transaction.
func BuildHCS721RegisterTx(params RegisterTxParams) (*hedera.TopicMessageSubmitTransaction, error) {
	private := params.IsPrivate
	message := Message{
		Protocol:  ProtocolID,
		Operation: OperationRegister,
		Name:      params.Name,
		Metadata:  params.Metadata,
		Private:   &private,
		TopicID:   params.TopicID,
		Memo:      params.Memo,
	}
	return BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         params.RegistryTopicID,
		Payload:         message,
		TransactionMemo: params.TransactionMemo,
	})
}
