package registry

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/hashgraph-online/hcs721-go/pkg/mirror"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// overflowThreshold is the largest registry payload submitted inline.
// Anything bigger is inscribed on a data topic and referenced instead.
const overflowThreshold = 1024

// Client manages collection registry topics against a Hedera network.
// Reads go through the mirror node; writes are signed by the operator.
type Client struct {
	hederaClient  *hedera.Client
	mirrorClient  *mirror.Client
	operatorID    hedera.AccountID
	operatorKey   hedera.PrivateKey
	registryTypes map[string]RegistryType
	mutex         sync.RWMutex
}

// NewClient wires a registry client to a Hedera network and its mirror
// node using the operator credentials in config.
func NewClient(config ClientConfig) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	operatorID, operatorKey, err := shared.ResolveOperator(config.OperatorAccountID, config.OperatorPrivateKey)
	if err != nil {
		return nil, err
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	hederaClient, err := shared.NewHederaClient(network)
	if err != nil {
		return nil, err
	}
	hederaClient.SetOperator(operatorID, operatorKey)

	return &Client{
		hederaClient:  hederaClient,
		mirrorClient:  mirrorClient,
		operatorID:    operatorID,
		operatorKey:   operatorKey,
		registryTypes: make(map[string]RegistryType),
	}, nil
}

// MirrorClient returns the configured mirror node client.
func (client *Client) MirrorClient() *mirror.Client {
	return client.mirrorClient
}

// CreateRegistry creates a collection registry topic and caches its type
// for later submissions.
func (client *Client) CreateRegistry(
	ctx context.Context,
	options CreateRegistryOptions,
) (CreateRegistryResult, error) {
	registryType := registryTypeOrDefault(options.RegistryType)

	params := CreateRegistryTxParams{
		RegistryType: registryType,
		TTL:          options.TTL,
	}
	adminKey, err := shared.ResolveTopicKey(options.AdminKey, client.operatorKey, options.UseOperatorAsAdmin)
	if err != nil {
		return CreateRegistryResult{}, err
	}
	if adminKey != nil {
		params.AdminKey = *adminKey
	}
	submitKey, err := shared.ResolveTopicKey(options.SubmitKey, client.operatorKey, options.UseOperatorAsSubmit)
	if err != nil {
		return CreateRegistryResult{}, err
	}
	if submitKey != nil {
		params.SubmitKey = *submitKey
	}

	response, err := BuildCreateRegistryTx(params).Execute(client.hederaClient)
	if err != nil {
		return CreateRegistryResult{}, fmt.Errorf("failed to execute create topic transaction: %w", err)
	}
	receipt, err := response.GetReceipt(client.hederaClient)
	if err != nil {
		return CreateRegistryResult{}, fmt.Errorf("failed to get create topic receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return CreateRegistryResult{}, fmt.Errorf("topic ID missing in create topic receipt")
	}

	topicID := receipt.TopicID.String()
	client.rememberRegistryType(topicID, registryType)

	return CreateRegistryResult{
		Success:       true,
		TopicID:       topicID,
		TransactionID: response.TransactionID.String(),
	}, nil
}

// AddCollection appends a register entry pointing at a collection topic.
func (client *Client) AddCollection(
	ctx context.Context,
	registryTopicID string,
	options AddCollectionOptions,
) (OperationResult, error) {
	return client.publish(ctx, registryTopicID, Message{
		P:        protocolOrDefault(options.Protocol),
		Op:       OperationRegister,
		TopicID:  options.CollectionTopicID,
		Metadata: options.Metadata,
		Memo:     options.Memo,
	}, publishParams{
		typeOverride:  options.RegistryType,
		analyticsMemo: options.AnalyticsMemo,
	})
}

// UpdateCollection replaces an indexed registry entry identified by UID.
func (client *Client) UpdateCollection(
	ctx context.Context,
	registryTopicID string,
	options UpdateCollectionOptions,
) (OperationResult, error) {
	return client.publish(ctx, registryTopicID, Message{
		P:        defaultProtocol,
		Op:       OperationUpdate,
		TopicID:  options.CollectionTopicID,
		UID:      options.UID,
		Metadata: options.Metadata,
		Memo:     options.Memo,
	}, publishParams{
		typeOverride:  options.RegistryType,
		analyticsMemo: options.AnalyticsMemo,
		indexedOnly:   true,
	})
}

// RemoveCollection deletes an indexed registry entry identified by UID.
func (client *Client) RemoveCollection(
	ctx context.Context,
	registryTopicID string,
	options RemoveCollectionOptions,
) (OperationResult, error) {
	return client.publish(ctx, registryTopicID, Message{
		P:    defaultProtocol,
		Op:   OperationDelete,
		UID:  options.UID,
		Memo: options.Memo,
	}, publishParams{
		typeOverride:  options.RegistryType,
		analyticsMemo: options.AnalyticsMemo,
		indexedOnly:   true,
	})
}

// MigrateRegistry points the registry at a successor topic.
func (client *Client) MigrateRegistry(
	ctx context.Context,
	registryTopicID string,
	options MigrateRegistryOptions,
) (OperationResult, error) {
	return client.publish(ctx, registryTopicID, Message{
		P:        defaultProtocol,
		Op:       OperationMigrate,
		TopicID:  options.TargetTopicID,
		Metadata: options.Metadata,
		Memo:     options.Memo,
	}, publishParams{
		typeOverride:  options.RegistryType,
		analyticsMemo: options.AnalyticsMemo,
	})
}

// ListCollections reads a registry topic from the mirror node and decodes
// its entries. Non-indexed registries collapse to the latest entry.
func (client *Client) ListCollections(
	ctx context.Context,
	topicID string,
	options ListCollectionsOptions,
) (CollectionRegistry, error) {
	topicInfo, err := client.mirrorClient.GetTopicInfo(ctx, topicID)
	if err != nil {
		return CollectionRegistry{}, err
	}
	memoInfo, ok := ParseTopicMemo(topicInfo.Memo)
	if !ok {
		return CollectionRegistry{}, fmt.Errorf("topic %s is not a collection registry", topicID)
	}
	client.rememberRegistryType(topicID, memoInfo.RegistryType)

	messages, err := client.mirrorClient.GetTopicMessages(ctx, topicID, listQueryOptions(options))
	if err != nil {
		return CollectionRegistry{}, err
	}

	entries := make([]CollectionEntry, 0, len(messages))
	latestIndex := -1
	for _, item := range messages {
		var message Message
		if err := mirror.DecodeMessageJSON(item, &message); err != nil {
			continue
		}
		if err := ValidateMessage(message); err != nil {
			continue
		}

		entries = append(entries, CollectionEntry{
			RegistryTopicID:    topicID,
			Sequence:           item.SequenceNumber,
			Payer:              item.PayerAccountID,
			Message:            message,
			ConsensusTimestamp: item.ConsensusTimestamp,
			RegistryType:       memoInfo.RegistryType,
		})
		if latestIndex < 0 || item.ConsensusTimestamp > entries[latestIndex].ConsensusTimestamp {
			latestIndex = len(entries) - 1
		}
	}

	var latestEntry *CollectionEntry
	if latestIndex >= 0 {
		entry := entries[latestIndex]
		latestEntry = &entry
	}
	if memoInfo.RegistryType == RegistryTypeNonIndexed {
		entries = entries[:0]
		if latestEntry != nil {
			entries = append(entries, *latestEntry)
		}
	}

	return CollectionRegistry{
		TopicID:      topicID,
		RegistryType: memoInfo.RegistryType,
		TTL:          memoInfo.TTL,
		Entries:      entries,
		LatestEntry:  latestEntry,
	}, nil
}

func listQueryOptions(options ListCollectionsOptions) mirror.MessageQueryOptions {
	order := options.Order
	if order == "" {
		order = "asc"
	}
	sequenceFilter := ""
	if options.Skip > 0 {
		sequenceFilter = fmt.Sprintf("gt:%d", options.Skip)
	}
	return mirror.MessageQueryOptions{
		SequenceNumber: sequenceFilter,
		Limit:          options.Limit,
		Order:          order,
	}
}

// GetTopicInfo fetches topic metadata from the mirror node.
func (client *Client) GetTopicInfo(ctx context.Context, topicID string) (mirror.TopicInfo, error) {
	return client.mirrorClient.GetTopicInfo(ctx, topicID)
}

// SubmitMessage submits a registry message with an explicit transaction
// memo, bypassing validation and type resolution. Most callers want the
// operation helpers instead.
func (client *Client) SubmitMessage(
	ctx context.Context,
	registryTopicID string,
	payload Message,
	transactionMemo string,
) (OperationResult, error) {
	return client.submit(registryTopicID, payload, transactionMemo)
}

type publishParams struct {
	typeOverride  *RegistryType
	analyticsMemo string
	indexedOnly   bool
}

func (client *Client) publish(
	ctx context.Context,
	registryTopicID string,
	message Message,
	params publishParams,
) (OperationResult, error) {
	if err := ValidateMessage(message); err != nil {
		return OperationResult{}, err
	}

	registryType, err := client.resolveRegistryType(ctx, registryTopicID, params.typeOverride)
	if err != nil {
		return OperationResult{}, err
	}
	if params.indexedOnly && registryType != RegistryTypeIndexed {
		return OperationResult{}, fmt.Errorf("%s is only valid for indexed registries", message.Op)
	}

	memo := params.analyticsMemo
	if memo == "" {
		memo = BuildTransactionMemo(message.Op, registryType)
	}
	return client.submit(registryTopicID, message, memo)
}

func (client *Client) submit(
	registryTopicID string,
	message Message,
	transactionMemo string,
) (OperationResult, error) {
	topicID, err := parseRegistryTopicID(registryTopicID)
	if err != nil {
		return OperationResult{}, err
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return OperationResult{}, fmt.Errorf("failed to marshal registry message: %w", err)
	}
	if len(payload) > overflowThreshold {
		payload, err = client.overflowReference(message, payload)
		if err != nil {
			return OperationResult{}, err
		}
	}

	transaction := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(payload)
	if memo := strings.TrimSpace(transactionMemo); memo != "" {
		transaction.SetTransactionMemo(memo)
	}

	response, err := transaction.Execute(client.hederaClient)
	if err != nil {
		return OperationResult{}, fmt.Errorf("failed to execute message submit transaction: %w", err)
	}
	receipt, err := response.GetReceipt(client.hederaClient)
	if err != nil {
		return OperationResult{}, fmt.Errorf("failed to get message submit receipt: %w", err)
	}

	return OperationResult{
		Success:        true,
		TransactionID:  response.TransactionID.String(),
		SequenceNumber: int64(receipt.TopicSequenceNumber),
	}, nil
}

// overflowReference inscribes an oversized payload on a fresh HCS-1 data
// topic and returns the reference message that replaces it inline.
func (client *Client) overflowReference(message Message, payload []byte) ([]byte, error) {
	dataTopic, err := client.createDataTopic()
	if err != nil {
		return nil, err
	}

	response, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(dataTopic).
		SetMessage(payload).
		Execute(client.hederaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to publish overflow payload: %w", err)
	}
	if _, err := response.GetReceipt(client.hederaClient); err != nil {
		return nil, fmt.Errorf("failed to get overflow publish receipt: %w", err)
	}

	digest := sha256.Sum256(payload)
	reference := OverflowMessage{
		P:             message.P,
		Op:            message.Op,
		DataRef:       fmt.Sprintf("hcs://1/%s", dataTopic.String()),
		DataRefDigest: base64.RawURLEncoding.EncodeToString(digest[:]),
	}

	encoded, err := json.Marshal(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overflow reference: %w", err)
	}
	return encoded, nil
}

func (client *Client) createDataTopic() (hedera.TopicID, error) {
	operatorPublicKey := client.operatorKey.PublicKey()
	response, err := hedera.NewTopicCreateTransaction().
		SetTopicMemo("hcs-1:0:0").
		SetAdminKey(operatorPublicKey).
		SetSubmitKey(operatorPublicKey).
		Execute(client.hederaClient)
	if err != nil {
		return hedera.TopicID{}, fmt.Errorf("failed to create overflow data topic: %w", err)
	}
	receipt, err := response.GetReceipt(client.hederaClient)
	if err != nil {
		return hedera.TopicID{}, fmt.Errorf("failed to get overflow data topic receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return hedera.TopicID{}, fmt.Errorf("overflow data topic receipt missing topic ID")
	}
	return *receipt.TopicID, nil
}

// resolveRegistryType looks up a topic's registry type, preferring the
// explicit override, then the local cache, then the topic memo.
func (client *Client) resolveRegistryType(
	ctx context.Context,
	topicID string,
	override *RegistryType,
) (RegistryType, error) {
	if override != nil {
		return *override, nil
	}

	client.mutex.RLock()
	cached, known := client.registryTypes[topicID]
	client.mutex.RUnlock()
	if known {
		return cached, nil
	}

	topicInfo, err := client.mirrorClient.GetTopicInfo(ctx, topicID)
	if err != nil {
		return RegistryTypeIndexed, err
	}
	memoInfo, ok := ParseTopicMemo(topicInfo.Memo)
	if !ok {
		return RegistryTypeIndexed, fmt.Errorf("topic %s is not a collection registry", topicID)
	}

	client.rememberRegistryType(topicID, memoInfo.RegistryType)
	return memoInfo.RegistryType, nil
}

func (client *Client) rememberRegistryType(topicID string, registryType RegistryType) {
	client.mutex.Lock()
	client.registryTypes[topicID] = registryType
	client.mutex.Unlock()
}
