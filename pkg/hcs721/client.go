package hcs721

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashgraph-online/hcs721-go/pkg/mirror"
	"github.com/hashgraph-online/hcs721-go/pkg/registry"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// MessageSubmitter abstracts topic creation and message submission so the
// same client operations run against Hedera or an in-process local node.
type MessageSubmitter interface {
	CreateTopic(ctx context.Context, request CreateTopicRequest) (CreateTopicResult, error)
	SubmitMessage(ctx context.Context, request SubmitMessageRequest) (OperationResult, error)
}

type CreateTopicRequest struct {
	Memo      string
	AdminKey  string
	SubmitKey string
}

type CreateTopicResult struct {
	TopicID       string
	TransactionID string
}

type SubmitMessageRequest struct {
	TopicID         string
	Payload         []byte
	TransactionMemo string
	PayerAccountID  string
}

type Client struct {
	hederaClient *hedera.Client
	mirrorClient *mirror.Client
	submitter    MessageSubmitter
	operatorID   hedera.AccountID
	operatorKey  hedera.PrivateKey
	network      string

	registryTopicID string
}

// NewClient creates a new HCS-721 SDK client.
func NewClient(config ClientConfig) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	operatorID, operatorKey, err := shared.ResolveOperator(config.OperatorAccountID, config.OperatorPrivateKey)
	if err != nil {
		return nil, err
	}

	var hederaClient *hedera.Client
	if config.Submitter == nil {
		hederaClient, err = shared.NewHederaClient(network)
		if err != nil {
			return nil, err
		}
		hederaClient.SetOperator(operatorID, operatorKey)
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	registryTopicID := strings.TrimSpace(config.RegistryTopicID)
	if registryTopicID == "" {
		registryTopicID = DefaultRegistryTopicID
	}

	return &Client{
		hederaClient:    hederaClient,
		mirrorClient:    mirrorClient,
		submitter:       config.Submitter,
		operatorID:      operatorID,
		operatorKey:     operatorKey,
		network:         network,
		registryTopicID: registryTopicID,
	}, nil
}

// MirrorClient returns the configured mirror client.
func (client *Client) MirrorClient() *mirror.Client {
	return client.mirrorClient
}

// Network returns the normalized network name.
func (client *Client) Network() string {
	return client.network
}

// OperatorAccountID returns the operator account string.
func (client *Client) OperatorAccountID() string {
	return client.operatorID.String()
}

// RegistryTopicID returns the registry topic collections register on.
func (client *Client) RegistryTopicID() string {
	return client.registryTopicID
}

// SetRegistryTopicID points the client at a different collection registry.
func (client *Client) SetRegistryTopicID(topicID string) error {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return err
	}
	client.registryTopicID = normalizedTopicID
	return nil
}

// CreateCollectionTopic creates a bare topic for a collection without
// submitting a deploy message.
func (client *Client) CreateCollectionTopic(
	ctx context.Context,
	options CreateTopicOptions,
) (string, string, error) {
	return client.createTopic(ctx, options)
}

// CreateRegistryTopic creates a new indexed collection registry and assigns
// it as the client's registry topic ID.
func (client *Client) CreateRegistryTopic(
	ctx context.Context,
	options registry.CreateRegistryOptions,
) (string, string, error) {
	if options.RegistryType != registry.RegistryTypeIndexed && options.RegistryType != registry.RegistryTypeNonIndexed {
		options.RegistryType = registry.RegistryTypeIndexed
	}
	if options.TTL <= 0 {
		options.TTL = DefaultTopicTTL
	}
	if !options.UseOperatorAsAdmin && strings.TrimSpace(options.AdminKey) == "" {
		options.UseOperatorAsAdmin = true
	}
	if !options.UseOperatorAsSubmit && strings.TrimSpace(options.SubmitKey) == "" {
		options.UseOperatorAsSubmit = true
	}

	if client.submitter != nil {
		topicID, transactionID, err := client.createTopic(ctx, CreateTopicOptions{
			Memo:                registry.BuildTopicMemo(options.RegistryType, options.TTL),
			AdminKey:            options.AdminKey,
			SubmitKey:           options.SubmitKey,
			UseOperatorAsAdmin:  options.UseOperatorAsAdmin,
			UseOperatorAsSubmit: options.UseOperatorAsSubmit,
		})
		if err != nil {
			return "", "", err
		}
		client.registryTopicID = topicID
		return topicID, transactionID, nil
	}

	registryClient, err := registry.NewClient(registry.ClientConfig{
		OperatorAccountID:  client.operatorID.String(),
		OperatorPrivateKey: client.operatorKey.String(),
		Network:            client.network,
		MirrorBaseURL:      client.mirrorClient.BaseURL(),
	})
	if err != nil {
		return "", "", err
	}

	result, err := registryClient.CreateRegistry(ctx, options)
	if err != nil {
		return "", "", err
	}

	client.registryTopicID = result.TopicID
	return result.TopicID, result.TransactionID, nil
}

// DeployCollection creates a collection topic and publishes its deploy
// message.
func (client *Client) DeployCollection(
	ctx context.Context,
	options DeployCollectionOptions,
) (CollectionInfo, error) {
	reportDeployProgress(options.ProgressCallback, DeployCollectionProgress{
		Stage:      "creating-topic",
		Percentage: 20,
	})

	ttl := options.TTL
	if ttl <= 0 {
		ttl = DefaultTopicTTL
	}
	topicType := TopicTypePublic
	if options.UsePrivateTopic {
		topicType = TopicTypePrivate
	}

	topicID, _, err := client.createTopic(ctx, CreateTopicOptions{
		Memo:                BuildTopicMemo(topicType, ttl),
		AdminKey:            options.AdminKey,
		SubmitKey:           options.SubmitKey,
		UseOperatorAsAdmin:  strings.TrimSpace(options.AdminKey) == "",
		UseOperatorAsSubmit: options.UsePrivateTopic && strings.TrimSpace(options.SubmitKey) == "",
	})
	if err != nil {
		return CollectionInfo{}, CollectionDeploymentError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to create collection topic: %v", err)},
			Name:        options.Name,
		}
	}

	reportDeployProgress(options.ProgressCallback, DeployCollectionProgress{
		Stage:      "submitting-deploy",
		Percentage: 50,
		TopicID:    topicID,
	})

	maxSupply := ""
	if options.MaxSupply > 0 {
		maxSupply = FormatSerial(options.MaxSupply)
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationDeploy,
		Name:      options.Name,
		Symbol:    options.Symbol,
		MaxSupply: maxSupply,
		BaseURI:   options.BaseURI,
		Metadata:  options.Metadata,
		Memo:      options.Memo,
	})
	if err != nil {
		return CollectionInfo{}, err
	}

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationDeploy))
	if err != nil {
		return CollectionInfo{}, CollectionDeploymentError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit deploy message: %v", err)},
			Name:        options.Name,
			TopicID:     topicID,
		}
	}

	reportDeployProgress(options.ProgressCallback, DeployCollectionProgress{
		Stage:      "confirming",
		Percentage: 80,
		TopicID:    topicID,
		DeployTxID: result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return CollectionInfo{}, err
		}
	}

	reportDeployProgress(options.ProgressCallback, DeployCollectionProgress{
		Stage:      "complete",
		Percentage: 100,
		TopicID:    topicID,
		DeployTxID: result.TransactionID,
	})

	maxSupplyValue, _ := ParseMaxSupply(normalized.MaxSupply)

	return CollectionInfo{
		Name:                normalized.Name,
		Symbol:              normalized.Symbol,
		MaxSupply:           maxSupplyValue,
		BaseURI:             normalized.BaseURI,
		Metadata:            normalized.Metadata,
		TopicID:             topicID,
		CreatorAccountID:    client.operatorID.String(),
		NextSerial:          FirstSerial,
		TotalSupply:         0,
		BurnedCount:         0,
		DeploymentTimestamp: result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		IsPrivate:           options.UsePrivateTopic,
	}, nil
}

// MintItem submits an HCS-721 mint message and reports the serial the
// mint received in consensus order.
func (client *Client) MintItem(
	ctx context.Context,
	options MintItemOptions,
) (ItemTransaction, error) {
	reportMintProgress(options.ProgressCallback, MintItemProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationMint,
		To:        options.To,
		TokenURI:  options.TokenURI,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	if !options.DisableMirrorCheck {
		if err := client.checkMintCapacity(ctx, topicID, options.PrivateTopic); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportMintProgress(options.ProgressCallback, MintItemProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationMint))
	if err != nil {
		return ItemTransaction{}, ItemMintError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit mint message: %v", err)},
			TopicID:     topicID,
			To:          normalized.To,
		}
	}

	reportMintProgress(options.ProgressCallback, MintItemProgress{
		Stage:      "confirming",
		Percentage: 80,
		MintTxID:   result.TransactionID,
	})

	var serial int64
	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}

		reportMintProgress(options.ProgressCallback, MintItemProgress{
			Stage:      "resolving-serial",
			Percentage: 90,
			MintTxID:   result.TransactionID,
		})

		serial, err = client.resolveMintedSerial(ctx, topicID, result.SequenceNumber, options.PrivateTopic)
		if err != nil {
			return ItemTransaction{}, err
		}
	}

	reportMintProgress(options.ProgressCallback, MintItemProgress{
		Stage:      "complete",
		Percentage: 100,
		MintTxID:   result.TransactionID,
		Serial:     serial,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationMint,
		Serial:         serial,
		To:             normalized.To,
		TokenURI:       normalized.TokenURI,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// TransferItem submits an HCS-721 transfer message.
func (client *Client) TransferItem(
	ctx context.Context,
	options TransferItemOptions,
) (ItemTransaction, error) {
	reportTransferProgress(options.ProgressCallback, TransferItemProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	from := options.From
	if strings.TrimSpace(from) == "" {
		from = client.operatorID.String()
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationTransfer,
		Serial:    FormatSerial(options.Serial),
		From:      from,
		To:        options.To,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	reportTransferProgress(options.ProgressCallback, TransferItemProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationTransfer))
	if err != nil {
		return ItemTransaction{}, ItemTransferError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit transfer message: %v", err)},
			TopicID:     topicID,
			Serial:      options.Serial,
			From:        normalized.From,
			To:          normalized.To,
		}
	}

	reportTransferProgress(options.ProgressCallback, TransferItemProgress{
		Stage:        "confirming",
		Percentage:   80,
		TransferTxID: result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportTransferProgress(options.ProgressCallback, TransferItemProgress{
		Stage:        "complete",
		Percentage:   100,
		TransferTxID: result.TransactionID,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationTransfer,
		Serial:         options.Serial,
		From:           normalized.From,
		To:             normalized.To,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// Approve submits a serial approval. An empty To revokes the standing
// approval.
func (client *Client) Approve(
	ctx context.Context,
	options ApproveOptions,
) (ItemTransaction, error) {
	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationApprove,
		Serial:    FormatSerial(options.Serial),
		To:        options.To,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationApprove))
	if err != nil {
		return ItemTransaction{}, ItemApprovalError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit approve message: %v", err)},
			TopicID:     topicID,
			Serial:      options.Serial,
			Operator:    normalized.To,
		}
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:        "confirming",
		Percentage:   80,
		ApprovalTxID: result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:        "complete",
		Percentage:   100,
		ApprovalTxID: result.TransactionID,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationApprove,
		Serial:         options.Serial,
		To:             normalized.To,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// SetApprovalForAll grants or revokes an operator over every item the
// owner holds in the collection.
func (client *Client) SetApprovalForAll(
	ctx context.Context,
	options SetApprovalForAllOptions,
) (ItemTransaction, error) {
	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	owner := options.Owner
	if strings.TrimSpace(owner) == "" {
		owner = client.operatorID.String()
	}

	approved := options.Approved
	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationApproveAll,
		From:      owner,
		Operator:  options.Operator,
		Approved:  &approved,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationApproveAll))
	if err != nil {
		return ItemTransaction{}, ItemApprovalError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit approve_all message: %v", err)},
			TopicID:     topicID,
			Operator:    normalized.Operator,
		}
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:        "confirming",
		Percentage:   80,
		ApprovalTxID: result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportApprovalProgress(options.ProgressCallback, ApproveProgress{
		Stage:        "complete",
		Percentage:   100,
		ApprovalTxID: result.TransactionID,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationApproveAll,
		From:           normalized.From,
		Operator:       normalized.Operator,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// BurnItem submits an HCS-721 burn message.
func (client *Client) BurnItem(
	ctx context.Context,
	options BurnItemOptions,
) (ItemTransaction, error) {
	reportBurnProgress(options.ProgressCallback, BurnItemProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	from := options.From
	if strings.TrimSpace(from) == "" {
		from = client.operatorID.String()
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationBurn,
		Serial:    FormatSerial(options.Serial),
		From:      from,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	reportBurnProgress(options.ProgressCallback, BurnItemProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationBurn))
	if err != nil {
		return ItemTransaction{}, ItemBurnError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit burn message: %v", err)},
			TopicID:     topicID,
			Serial:      options.Serial,
			From:        normalized.From,
		}
	}

	reportBurnProgress(options.ProgressCallback, BurnItemProgress{
		Stage:      "confirming",
		Percentage: 80,
		BurnTxID:   result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportBurnProgress(options.ProgressCallback, BurnItemProgress{
		Stage:      "complete",
		Percentage: 100,
		BurnTxID:   result.TransactionID,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationBurn,
		Serial:         options.Serial,
		From:           normalized.From,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// UpdateItemURI submits a token URI update for a minted item.
func (client *Client) UpdateItemURI(
	ctx context.Context,
	options UpdateItemURIOptions,
) (ItemTransaction, error) {
	reportUpdateURIProgress(options.ProgressCallback, UpdateURIProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	topicID, err := NormalizeAccountID(options.TopicID)
	if err != nil {
		return ItemTransaction{}, err
	}

	payload, normalized, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationUpdateURI,
		Serial:    FormatSerial(options.Serial),
		TokenURI:  options.TokenURI,
		Memo:      options.Memo,
	})
	if err != nil {
		return ItemTransaction{}, err
	}

	reportUpdateURIProgress(options.ProgressCallback, UpdateURIProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, topicID, payload, BuildTransactionMemo(OperationUpdateURI))
	if err != nil {
		return ItemTransaction{}, ItemURIUpdateError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit update_uri message: %v", err)},
			TopicID:     topicID,
			Serial:      options.Serial,
		}
	}

	reportUpdateURIProgress(options.ProgressCallback, UpdateURIProgress{
		Stage:      "confirming",
		Percentage: 80,
		UpdateTxID: result.TransactionID,
	})

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, topicID, result.SequenceNumber, 15); err != nil {
			return ItemTransaction{}, err
		}
	}

	reportUpdateURIProgress(options.ProgressCallback, UpdateURIProgress{
		Stage:      "complete",
		Percentage: 100,
		UpdateTxID: result.TransactionID,
	})

	return ItemTransaction{
		ID:             result.TransactionID,
		Operation:      OperationUpdateURI,
		Serial:         options.Serial,
		TokenURI:       normalized.TokenURI,
		Timestamp:      result.ConsensusAt.UTC().Format(time.RFC3339Nano),
		SequenceNumber: result.SequenceNumber,
		TopicID:        topicID,
		TransactionID:  result.TransactionID,
		Memo:           normalized.Memo,
	}, nil
}

// RegisterCollection registers a collection topic on the configured
// registry topic.
func (client *Client) RegisterCollection(
	ctx context.Context,
	options RegisterCollectionOptions,
) (OperationResult, error) {
	reportRegisterProgress(options.ProgressCallback, RegisterCollectionProgress{
		Stage:      "validating",
		Percentage: 20,
	})

	registryTopicID := strings.TrimSpace(client.registryTopicID)
	if registryTopicID == "" {
		return OperationResult{}, TopicRegistrationError{
			HCS721Error: HCS721Error{Message: "registry topic ID is not configured"},
			TopicID:     "",
		}
	}

	isPrivate := options.IsPrivate
	payload, _, err := BuildMessagePayload(Message{
		Protocol:  ProtocolID,
		Operation: OperationRegister,
		Name:      options.Name,
		Metadata:  options.Metadata,
		Private:   &isPrivate,
		TopicID:   options.TopicID,
		Memo:      options.Memo,
	})
	if err != nil {
		return OperationResult{}, err
	}

	reportRegisterProgress(options.ProgressCallback, RegisterCollectionProgress{
		Stage:      "submitting",
		Percentage: 50,
	})

	result, err := client.submitMessage(ctx, registryTopicID, payload, BuildTransactionMemo(OperationRegister))
	if err != nil {
		return OperationResult{}, TopicRegistrationError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("failed to submit register message: %v", err)},
			TopicID:     options.TopicID,
		}
	}

	progress := RegisterCollectionProgress{Stage: "confirming", Percentage: 80, RegisterTxID: result.TransactionID}
	reportRegisterProgress(options.ProgressCallback, progress)

	if !options.DisableMirrorCheck {
		if err := client.waitForMirrorSequence(ctx, registryTopicID, result.SequenceNumber, 15); err != nil {
			return OperationResult{}, err
		}
	}

	progress.Stage = "complete"
	progress.Percentage = 100
	reportRegisterProgress(options.ProgressCallback, progress)
	return result, nil
}

func (client *Client) createTopic(
	ctx context.Context,
	options CreateTopicOptions,
) (string, string, error) {
	memo := strings.TrimSpace(options.Memo)
	if memo == "" {
		memo = BuildTopicMemo(TopicTypePublic, DefaultTopicTTL)
	}

	adminKey, err := shared.ResolveTopicKey(options.AdminKey, client.operatorKey, options.UseOperatorAsAdmin)
	if err != nil {
		return "", "", err
	}
	submitKey, err := shared.ResolveTopicKey(options.SubmitKey, client.operatorKey, options.UseOperatorAsSubmit)
	if err != nil {
		return "", "", err
	}

	if client.submitter != nil {
		return client.createTopicViaSubmitter(ctx, memo, adminKey, submitKey)
	}

	transaction := hedera.NewTopicCreateTransaction().SetTopicMemo(memo)
	if adminKey != nil {
		transaction.SetAdminKey(*adminKey)
	}
	if submitKey != nil {
		transaction.SetSubmitKey(*submitKey)
	}

	response, err := transaction.Execute(client.hederaClient)
	if err != nil {
		return "", "", fmt.Errorf("failed to execute create topic transaction: %w", err)
	}
	receipt, err := response.GetReceipt(client.hederaClient)
	if err != nil {
		return "", "", fmt.Errorf("failed to get create topic receipt: %w", err)
	}
	if receipt.TopicID == nil {
		return "", "", fmt.Errorf("topic ID missing in create topic receipt")
	}
	return receipt.TopicID.String(), response.TransactionID.String(), nil
}

func (client *Client) createTopicViaSubmitter(
	ctx context.Context,
	memo string,
	adminKey *hedera.PublicKey,
	submitKey *hedera.PublicKey,
) (string, string, error) {
	request := CreateTopicRequest{Memo: memo}
	if adminKey != nil {
		request.AdminKey = adminKey.String()
	}
	if submitKey != nil {
		request.SubmitKey = submitKey.String()
	}

	result, err := client.submitter.CreateTopic(ctx, request)
	if err != nil {
		return "", "", fmt.Errorf("failed to create topic: %w", err)
	}
	return result.TopicID, result.TransactionID, nil
}

func (client *Client) submitMessage(
	ctx context.Context,
	topicID string,
	payload []byte,
	transactionMemo string,
) (OperationResult, error) {
	if client.submitter != nil {
		result, err := client.submitter.SubmitMessage(ctx, SubmitMessageRequest{
			TopicID:         topicID,
			Payload:         payload,
			TransactionMemo: transactionMemo,
			PayerAccountID:  client.operatorID.String(),
		})
		if err != nil {
			return OperationResult{}, fmt.Errorf("failed to submit topic message: %w", err)
		}
		if result.TopicID == "" {
			result.TopicID = topicID
		}
		if result.ConsensusAt.IsZero() {
			result.ConsensusAt = time.Now().UTC()
		}
		return result, nil
	}

	transaction, err := BuildHCS721SubmitMessageTx(SubmitMessageTxParams{
		TopicID:         topicID,
		Payload:         payload,
		TransactionMemo: transactionMemo,
	})
	if err != nil {
		return OperationResult{}, err
	}

	response, err := transaction.Execute(client.hederaClient)
	if err != nil {
		return OperationResult{}, fmt.Errorf("failed to execute message submit transaction: %w", err)
	}
	receipt, err := response.GetReceipt(client.hederaClient)
	if err != nil {
		return OperationResult{}, fmt.Errorf("failed to get message submit receipt: %w", err)
	}

	consensusAt := time.Now().UTC()
	if record, recordErr := response.GetRecord(client.hederaClient); recordErr == nil && !record.ConsensusTimestamp.IsZero() {
		consensusAt = record.ConsensusTimestamp
	}

	return OperationResult{
		TopicID:        topicID,
		TransactionID:  response.TransactionID.String(),
		SequenceNumber: int64(receipt.TopicSequenceNumber),
		ConsensusAt:    consensusAt,
	}, nil
}

// checkMintCapacity pre-checks a capped collection against mirror state
// before paying for a mint that consensus would ignore. The check is
// advisory: mirror lag or lookup failures never block the submission.
func (client *Client) checkMintCapacity(
	ctx context.Context,
	topicID string,
	privateTopic bool,
) error {
	indexer, err := NewCollectionIndexer(IndexerConfig{
		Network:       client.network,
		MirrorBaseURL: client.mirrorClient.BaseURL(),
	})
	if err != nil {
		return nil
	}

	indexOptions := IndexOptions{CollectionTopics: []string{topicID}}
	if privateTopic {
		indexOptions = IndexOptions{PrivateTopics: []string{topicID}}
	}
	if err := indexer.IndexOnce(ctx, indexOptions); err != nil {
		return nil
	}

	collection, exists := indexer.GetCollectionInfo(topicID)
	if !exists || collection.MaxSupply <= 0 {
		return nil
	}
	if collection.TotalSupply < collection.MaxSupply {
		return nil
	}

	return ItemMintError{
		HCS721Error: HCS721Error{Message: fmt.Sprintf(
			"collection %s is at max supply: %d of %d items live, 0 available to mint",
			topicID, collection.TotalSupply, collection.MaxSupply,
		)},
		TopicID: topicID,
	}
}

func (client *Client) resolveMintedSerial(
	ctx context.Context,
	topicID string,
	sequenceNumber int64,
	privateTopic bool,
) (int64, error) {
	indexer, err := NewCollectionIndexer(IndexerConfig{
		Network:       client.network,
		MirrorBaseURL: client.mirrorClient.BaseURL(),
	})
	if err != nil {
		return 0, err
	}

	indexOptions := IndexOptions{CollectionTopics: []string{topicID}}
	if privateTopic {
		indexOptions = IndexOptions{PrivateTopics: []string{topicID}}
	}
	if err := indexer.IndexOnce(ctx, indexOptions); err != nil {
		return 0, err
	}

	serial, ok := indexer.SerialAtSequence(topicID, sequenceNumber)
	if !ok {
		return 0, ItemMintError{
			HCS721Error: HCS721Error{Message: fmt.Sprintf("mint at sequence %d was not applied by the collection state machine", sequenceNumber)},
			TopicID:     topicID,
		}
	}

	return serial, nil
}

// waitForMirrorSequence polls the mirror node until the topic exposes the
// given sequence number, giving up after maxAttempts polls 2 seconds apart.
func (client *Client) waitForMirrorSequence(
	ctx context.Context,
	topicID string,
	sequenceNumber int64,
	maxAttempts int,
) error {
	if sequenceNumber <= 0 {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		message, err := client.mirrorClient.GetTopicMessageBySequence(ctx, topicID, sequenceNumber)
		if err == nil && message != nil {
			return nil
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("mirror node did not return sequence %d for topic %s", sequenceNumber, topicID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func reportDeployProgress(callback func(DeployCollectionProgress), progress DeployCollectionProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportMintProgress(callback func(MintItemProgress), progress MintItemProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportTransferProgress(callback func(TransferItemProgress), progress TransferItemProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportApprovalProgress(callback func(ApproveProgress), progress ApproveProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportBurnProgress(callback func(BurnItemProgress), progress BurnItemProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportUpdateURIProgress(callback func(UpdateURIProgress), progress UpdateURIProgress) {
	if callback != nil {
		callback(progress)
	}
}

func reportRegisterProgress(callback func(RegisterCollectionProgress), progress RegisterCollectionProgress) {
	if callback != nil {
		callback(progress)
	}
}
