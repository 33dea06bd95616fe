package hcs721

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

type fakeSubmitter struct {
	topicID        string
	nextSequence   int64
	createRequests []CreateTopicRequest
	submitRequests []SubmitMessageRequest
}

func (submitter *fakeSubmitter) CreateTopic(
	ctx context.Context,
	request CreateTopicRequest,
) (CreateTopicResult, error) {
	submitter.createRequests = append(submitter.createRequests, request)
	return CreateTopicResult{
		TopicID:       submitter.topicID,
		TransactionID: "0.0.1001@1700000000.000000000",
	}, nil
}

func (submitter *fakeSubmitter) SubmitMessage(
	ctx context.Context,
	request SubmitMessageRequest,
) (OperationResult, error) {
	submitter.submitRequests = append(submitter.submitRequests, request)
	submitter.nextSequence++
	return OperationResult{
		TopicID:        request.TopicID,
		TransactionID:  fmt.Sprintf("0.0.1001@1700000000.%09d", submitter.nextSequence),
		SequenceNumber: submitter.nextSequence,
	}, nil
}

func newSubmitterClient(t *testing.T, submitter MessageSubmitter, mirrorBaseURL string) *Client {
	t.Helper()

	privateKey, err := hedera.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}

	client, err := NewClient(ClientConfig{
		OperatorAccountID:  "0.0.1001",
		OperatorPrivateKey: privateKey.String(),
		Network:            "testnet",
		MirrorBaseURL:      mirrorBaseURL,
		Submitter:          submitter,
	})
	if err != nil {
		t.Fatalf("unexpected client error: %v", err)
	}
	return client
}

func TestNewClientRequiresOperator(t *testing.T) {
	if _, err := NewClient(ClientConfig{
		OperatorPrivateKey: "anything",
		Network:            "testnet",
	}); err == nil {
		t.Fatal("expected missing operator account ID to fail")
	}

	if _, err := NewClient(ClientConfig{
		OperatorAccountID: "0.0.1001",
		Network:           "testnet",
	}); err == nil {
		t.Fatal("expected missing operator private key to fail")
	}
}

func TestNewClientRejectsUnsupportedNetwork(t *testing.T) {
	privateKey, err := hedera.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}

	if _, err := NewClient(ClientConfig{
		OperatorAccountID:  "0.0.1001",
		OperatorPrivateKey: privateKey.String(),
		Network:            "badnet",
	}); err == nil {
		t.Fatal("expected unsupported network to fail")
	}
}

func TestNewClientLocalNetworkNeedsSubmitter(t *testing.T) {
	privateKey, err := hedera.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}

	if _, err := NewClient(ClientConfig{
		OperatorAccountID:  "0.0.1001",
		OperatorPrivateKey: privateKey.String(),
		Network:            "local",
	}); err == nil {
		t.Fatal("expected local network without submitter to fail")
	}

	client, err := NewClient(ClientConfig{
		OperatorAccountID:  "0.0.1001",
		OperatorPrivateKey: privateKey.String(),
		Network:            "local",
		Submitter:          &fakeSubmitter{topicID: "0.0.5001"},
	})
	if err != nil {
		t.Fatalf("expected local network with submitter to work: %v", err)
	}
	if client.Network() != "local" {
		t.Fatalf("unexpected network: %s", client.Network())
	}
}

func TestSetRegistryTopicID(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5001"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if client.RegistryTopicID() != DefaultRegistryTopicID {
		t.Fatalf("unexpected default registry topic: %s", client.RegistryTopicID())
	}

	if err := client.SetRegistryTopicID("0.0.100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.RegistryTopicID() != "0.0.100" {
		t.Fatalf("unexpected registry topic: %s", client.RegistryTopicID())
	}

	if err := client.SetRegistryTopicID("junk"); err == nil {
		t.Fatal("expected invalid registry topic to fail")
	}
}

func TestDeployCollectionAndMintItemViaSubmitter(t *testing.T) {
	topicID := "0.0.5001"
	server := newMirrorFixtureServer(t, topicMessagesFixture{
		topicID: {
			newFixtureMessage(t, topicID, 1, "0.0.1001", Message{
				Protocol:  "hcs-721",
				Operation: "deploy",
				Name:      "Game Items",
				Symbol:    "ITM",
			}),
			newFixtureMessage(t, topicID, 2, "0.0.1001", Message{
				Protocol:  "hcs-721",
				Operation: "mint",
				To:        "0.0.2002",
				TokenURI:  "https://game.example/item-id-8u5h2m.json",
			}),
		},
	})
	defer server.Close()

	submitter := &fakeSubmitter{topicID: topicID}
	client := newSubmitterClient(t, submitter, server.URL)

	var deployStages []string
	collection, err := client.DeployCollection(t.Context(), DeployCollectionOptions{
		Name:   "Game Items",
		Symbol: "itm",
		ProgressCallback: func(progress DeployCollectionProgress) {
			deployStages = append(deployStages, progress.Stage)
		},
	})
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}

	if collection.TopicID != topicID {
		t.Fatalf("unexpected collection topic: %s", collection.TopicID)
	}
	if collection.Symbol != "ITM" {
		t.Fatalf("expected normalized symbol ITM, got %s", collection.Symbol)
	}
	if collection.NextSerial != FirstSerial {
		t.Fatalf("expected next serial %d, got %d", FirstSerial, collection.NextSerial)
	}

	wantDeployStages := []string{"creating-topic", "submitting-deploy", "confirming", "complete"}
	if len(deployStages) != len(wantDeployStages) {
		t.Fatalf("unexpected deploy stages: %v", deployStages)
	}
	for index, stage := range wantDeployStages {
		if deployStages[index] != stage {
			t.Fatalf("unexpected deploy stage %d: %s", index, deployStages[index])
		}
	}

	if len(submitter.createRequests) != 1 {
		t.Fatalf("expected one topic creation, got %d", len(submitter.createRequests))
	}
	createRequest := submitter.createRequests[0]
	if createRequest.Memo != "hcs-721:0:86400" {
		t.Fatalf("unexpected topic memo: %s", createRequest.Memo)
	}
	if createRequest.AdminKey == "" {
		t.Fatal("expected operator admin key on collection topic")
	}
	if createRequest.SubmitKey != "" {
		t.Fatal("expected no submit key on a public collection topic")
	}

	var mintStages []string
	var mintSerial int64
	minted, err := client.MintItem(t.Context(), MintItemOptions{
		TopicID:  topicID,
		To:       "0.0.2002",
		TokenURI: "https://game.example/item-id-8u5h2m.json",
		ProgressCallback: func(progress MintItemProgress) {
			mintStages = append(mintStages, progress.Stage)
			if progress.Stage == "complete" {
				mintSerial = progress.Serial
			}
		},
	})
	if err != nil {
		t.Fatalf("unexpected mint error: %v", err)
	}

	if minted.Serial != 1 {
		t.Fatalf("expected first mint to resolve serial 1, got %d", minted.Serial)
	}
	if mintSerial != 1 {
		t.Fatalf("expected complete stage to carry serial 1, got %d", mintSerial)
	}

	wantMintStages := []string{"validating", "submitting", "confirming", "resolving-serial", "complete"}
	if len(mintStages) != len(wantMintStages) {
		t.Fatalf("unexpected mint stages: %v", mintStages)
	}
	for index, stage := range wantMintStages {
		if mintStages[index] != stage {
			t.Fatalf("unexpected mint stage %d: %s", index, mintStages[index])
		}
	}

	if len(submitter.submitRequests) != 2 {
		t.Fatalf("expected deploy and mint submissions, got %d", len(submitter.submitRequests))
	}

	deployRequest := submitter.submitRequests[0]
	if deployRequest.TransactionMemo != "hcs-721:op:0" {
		t.Fatalf("unexpected deploy tx memo: %s", deployRequest.TransactionMemo)
	}
	if deployRequest.PayerAccountID != "0.0.1001" {
		t.Fatalf("unexpected payer: %s", deployRequest.PayerAccountID)
	}

	mintRequest := submitter.submitRequests[1]
	if mintRequest.TransactionMemo != "hcs-721:op:1" {
		t.Fatalf("unexpected mint tx memo: %s", mintRequest.TransactionMemo)
	}
	var mintPayload map[string]any
	if err := json.Unmarshal(mintRequest.Payload, &mintPayload); err != nil {
		t.Fatalf("failed to decode mint payload: %v", err)
	}
	if _, exists := mintPayload["sn"]; exists {
		t.Fatal("mint payload must not carry sn")
	}
}

func TestDeployPrivateCollectionSetsSubmitKey(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5002"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	collection, err := client.DeployCollection(t.Context(), DeployCollectionOptions{
		Name:               "Guild Items",
		Symbol:             "GLD",
		UsePrivateTopic:    true,
		TTL:                3600,
		DisableMirrorCheck: true,
	})
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	if !collection.IsPrivate {
		t.Fatal("expected private collection")
	}

	createRequest := submitter.createRequests[0]
	if createRequest.Memo != "hcs-721:1:3600" {
		t.Fatalf("unexpected topic memo: %s", createRequest.Memo)
	}
	if createRequest.SubmitKey == "" {
		t.Fatal("expected operator submit key on a private collection topic")
	}
}

func TestTransferItemDefaultsFromToOperator(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5003"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	transfer, err := client.TransferItem(t.Context(), TransferItemOptions{
		TopicID:            "0.0.5003",
		Serial:             4,
		To:                 "0.0.2003",
		DisableMirrorCheck: true,
	})
	if err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	if transfer.From != "0.0.1001" {
		t.Fatalf("expected from to default to operator, got %s", transfer.From)
	}

	message := decodeSubmittedMessage(t, submitter.submitRequests[0])
	if message.Operation != OperationTransfer || message.Serial != "4" {
		t.Fatalf("unexpected transfer message: %+v", message)
	}
	if message.From != "0.0.1001" || message.To != "0.0.2003" {
		t.Fatalf("unexpected accounts: %s -> %s", message.From, message.To)
	}
}

func TestApproveAndSetApprovalForAll(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5004"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if _, err := client.Approve(t.Context(), ApproveOptions{
		TopicID:            "0.0.5004",
		Serial:             1,
		To:                 "0.0.3003",
		DisableMirrorCheck: true,
	}); err != nil {
		t.Fatalf("unexpected approve error: %v", err)
	}

	approveMessage := decodeSubmittedMessage(t, submitter.submitRequests[0])
	if approveMessage.Operation != OperationApprove || approveMessage.To != "0.0.3003" {
		t.Fatalf("unexpected approve message: %+v", approveMessage)
	}

	if _, err := client.SetApprovalForAll(t.Context(), SetApprovalForAllOptions{
		TopicID:            "0.0.5004",
		Operator:           "0.0.4004",
		Approved:           true,
		DisableMirrorCheck: true,
	}); err != nil {
		t.Fatalf("unexpected approve_all error: %v", err)
	}

	approveAllMessage := decodeSubmittedMessage(t, submitter.submitRequests[1])
	if approveAllMessage.Operation != OperationApproveAll {
		t.Fatalf("unexpected operation: %s", approveAllMessage.Operation)
	}
	if approveAllMessage.From != "0.0.1001" {
		t.Fatalf("expected owner to default to operator, got %s", approveAllMessage.From)
	}
	if approveAllMessage.Approved == nil || !*approveAllMessage.Approved {
		t.Fatal("expected approved flag true")
	}
}

func TestBurnAndUpdateURI(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5005"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if _, err := client.BurnItem(t.Context(), BurnItemOptions{
		TopicID:            "0.0.5005",
		Serial:             2,
		DisableMirrorCheck: true,
	}); err != nil {
		t.Fatalf("unexpected burn error: %v", err)
	}

	burnMessage := decodeSubmittedMessage(t, submitter.submitRequests[0])
	if burnMessage.Operation != OperationBurn || burnMessage.From != "0.0.1001" {
		t.Fatalf("unexpected burn message: %+v", burnMessage)
	}

	updated, err := client.UpdateItemURI(t.Context(), UpdateItemURIOptions{
		TopicID:            "0.0.5005",
		Serial:             2,
		TokenURI:           "https://game.example/item-id-8u5h2m-v2.json",
		DisableMirrorCheck: true,
	})
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if updated.TokenURI != "https://game.example/item-id-8u5h2m-v2.json" {
		t.Fatalf("unexpected uri: %s", updated.TokenURI)
	}

	updateMessage := decodeSubmittedMessage(t, submitter.submitRequests[1])
	if updateMessage.Operation != OperationUpdateURI || updateMessage.Serial != "2" {
		t.Fatalf("unexpected update message: %+v", updateMessage)
	}
}

func TestRegisterCollectionUsesRegistryTopic(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5006"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if err := client.SetRegistryTopicID("0.0.100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := client.RegisterCollection(t.Context(), RegisterCollectionOptions{
		TopicID:            "0.0.5006",
		Name:               "Game Items",
		Metadata:           "hcs://1/0.0.5006",
		IsPrivate:          false,
		DisableMirrorCheck: true,
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if result.TopicID != "0.0.100" {
		t.Fatalf("expected submission on registry topic, got %s", result.TopicID)
	}

	request := submitter.submitRequests[0]
	if request.TopicID != "0.0.100" {
		t.Fatalf("unexpected request topic: %s", request.TopicID)
	}
	if request.TransactionMemo != "hcs-721:op:7" {
		t.Fatalf("unexpected register tx memo: %s", request.TransactionMemo)
	}

	message := decodeSubmittedMessage(t, request)
	if message.TopicID != "0.0.5006" {
		t.Fatalf("unexpected t_id: %s", message.TopicID)
	}
	if message.Private == nil || *message.Private {
		t.Fatal("expected private flag false")
	}
}

func TestMintItemRejectsInvalidTokenURI(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5007"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if _, err := client.MintItem(t.Context(), MintItemOptions{
		TopicID:            "0.0.5007",
		To:                 "0.0.2002",
		TokenURI:           strings.Repeat("a", MaxTokenURILength+1),
		DisableMirrorCheck: true,
	}); err == nil {
		t.Fatal("expected oversized token URI to fail")
	}
	if len(submitter.submitRequests) != 0 {
		t.Fatal("expected no submission for invalid mint")
	}
}

func TestMintItemAllowsEmptyTokenURI(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5007"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	if _, err := client.MintItem(t.Context(), MintItemOptions{
		TopicID:            "0.0.5007",
		To:                 "0.0.2002",
		DisableMirrorCheck: true,
	}); err != nil {
		t.Fatalf("expected empty token URI mint to submit, got %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(submitter.submitRequests[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode mint payload: %v", err)
	}
	if _, exists := payload["uri"]; exists {
		t.Fatal("expected empty uri to be omitted from the wire message")
	}
}

func TestMintItemPrecheckRejectsExhaustedSupply(t *testing.T) {
	topicID := "0.0.5008"
	server := newMirrorFixtureServer(t, topicMessagesFixture{
		topicID: {
			newFixtureMessage(t, topicID, 1, "0.0.1001", Message{
				Protocol:  "hcs-721",
				Operation: "deploy",
				Name:      "Game Items",
				Symbol:    "ITM",
				MaxSupply: "1",
			}),
			newFixtureMessage(t, topicID, 2, "0.0.1001", Message{
				Protocol:  "hcs-721",
				Operation: "mint",
				To:        "0.0.2002",
				TokenURI:  "https://game.example/item-id-8u5h2m.json",
			}),
		},
	})
	defer server.Close()

	submitter := &fakeSubmitter{topicID: topicID}
	client := newSubmitterClient(t, submitter, server.URL)

	_, err := client.MintItem(t.Context(), MintItemOptions{
		TopicID:  topicID,
		To:       "0.0.2003",
		TokenURI: "https://game.example/item-id-9k1x4p.json",
	})
	if err == nil {
		t.Fatal("expected exhausted supply to fail the pre-check")
	}

	var mintErr ItemMintError
	if !errors.As(err, &mintErr) {
		t.Fatalf("expected ItemMintError, got %T: %v", err, err)
	}
	if !strings.Contains(mintErr.Message, "max supply") {
		t.Fatalf("unexpected error message: %s", mintErr.Message)
	}
	if len(submitter.submitRequests) != 0 {
		t.Fatal("expected no submission past the supply pre-check")
	}
}

func TestDeployCollectionCarriesMaxSupplyAndBaseURI(t *testing.T) {
	submitter := &fakeSubmitter{topicID: "0.0.5009"}
	client := newSubmitterClient(t, submitter, "https://testnet.mirrornode.hedera.com")

	collection, err := client.DeployCollection(t.Context(), DeployCollectionOptions{
		Name:               "Game Items",
		Symbol:             "itm",
		MaxSupply:          100,
		BaseURI:            "https://game.example/items/",
		DisableMirrorCheck: true,
	})
	if err != nil {
		t.Fatalf("unexpected deploy error: %v", err)
	}
	if collection.MaxSupply != 100 {
		t.Fatalf("expected max supply 100, got %d", collection.MaxSupply)
	}
	if collection.BaseURI != "https://game.example/items/" {
		t.Fatalf("unexpected base uri: %s", collection.BaseURI)
	}

	var payload map[string]any
	if err := json.Unmarshal(submitter.submitRequests[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode deploy payload: %v", err)
	}
	if payload["max"] != "100" {
		t.Fatalf("expected max key 100, got %v", payload["max"])
	}
	if payload["base_uri"] != "https://game.example/items/" {
		t.Fatalf("unexpected base_uri key: %v", payload["base_uri"])
	}
}

func decodeSubmittedMessage(t *testing.T, request SubmitMessageRequest) Message {
	t.Helper()

	var message Message
	if err := json.Unmarshal(request.Payload, &message); err != nil {
		t.Fatalf("failed to decode submitted payload: %v", err)
	}
	return message
}
