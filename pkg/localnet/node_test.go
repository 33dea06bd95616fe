package localnet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
)

func TestNodeCreateTopicAssignsSequentialIDs(t *testing.T) {
	node := NewNode(NodeConfig{})

	first, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{Memo: "hcs-721:0:86400"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{Memo: "hcs-721:1:3600"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TopicID != "0.0.1001" || second.TopicID != "0.0.1002" {
		t.Fatalf("unexpected topic IDs: %s, %s", first.TopicID, second.TopicID)
	}
	if first.TransactionID == "" || first.TransactionID == second.TransactionID {
		t.Fatalf("expected distinct transaction IDs: %s, %s", first.TransactionID, second.TransactionID)
	}

	record, exists := node.Topic(first.TopicID)
	if !exists {
		t.Fatal("expected topic record")
	}
	if record.Memo != "hcs-721:0:86400" {
		t.Fatalf("unexpected memo: %s", record.Memo)
	}
}

func TestNodeSubmitAssignsPerTopicSequences(t *testing.T) {
	node := NewNode(NodeConfig{})

	first, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var previous hcs721.OperationResult
	for index, topicID := range []string{first.TopicID, second.TopicID, first.TopicID, second.TopicID} {
		result, submitErr := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
			TopicID: topicID,
			Payload: []byte(`{"p":"hcs-721"}`),
		})
		if submitErr != nil {
			t.Fatalf("unexpected submit error: %v", submitErr)
		}

		wantSequence := int64(index/2) + 1
		if result.SequenceNumber != wantSequence {
			t.Fatalf("submission %d: expected sequence %d, got %d", index, wantSequence, result.SequenceNumber)
		}
		if index > 0 && !result.ConsensusAt.After(previous.ConsensusAt) {
			t.Fatalf("expected strictly increasing consensus timestamps")
		}
		previous = result
	}

	messages, exists := node.TopicMessages(first.TopicID)
	if !exists || len(messages) != 2 {
		t.Fatalf("expected 2 messages on first topic, got %d", len(messages))
	}
	if messages[0].SequenceNumber != 1 || messages[1].SequenceNumber != 2 {
		t.Fatalf("unexpected sequences: %d, %d", messages[0].SequenceNumber, messages[1].SequenceNumber)
	}
	if bytes.Equal(messages[0].RunningHash, messages[1].RunningHash) {
		t.Fatal("expected running hash to advance per message")
	}
}

func TestNodeRejectsInvalidSubmissions(t *testing.T) {
	node := NewNode(NodeConfig{})

	if _, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID: "0.0.9999",
		Payload: []byte("x"),
	}); err == nil {
		t.Fatal("expected unknown topic to fail")
	}

	created, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID: created.TopicID,
	}); err == nil {
		t.Fatal("expected empty payload to fail")
	}

	oversized := make([]byte, MaxMessageBytes+1)
	if _, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID: created.TopicID,
		Payload: oversized,
	}); err == nil {
		t.Fatal("expected oversized payload to fail")
	}
}

func TestNodeSubmitKeyGuardsForeignPayers(t *testing.T) {
	node := NewNode(NodeConfig{})

	created, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{
		Memo:      "hcs-721:1:86400",
		SubmitKey: "302a300506032b6570032100aa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID:        created.TopicID,
		Payload:        []byte("ok"),
		PayerAccountID: node.OperatorAccountID(),
	}); err != nil {
		t.Fatalf("expected operator submission to pass: %v", err)
	}

	if _, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID:        created.TopicID,
		Payload:        []byte("denied"),
		PayerAccountID: "0.0.9999",
	}); err == nil {
		t.Fatal("expected foreign payer to be rejected on a submit-keyed topic")
	}
}

func TestNodeReplayIsDeterministic(t *testing.T) {
	run := func() (hcs721.CreateTopicResult, hcs721.OperationResult) {
		node := NewNode(NodeConfig{})
		created, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{Memo: "hcs-721:0:86400"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		submitted, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
			TopicID: created.TopicID,
			Payload: []byte(`{"p":"hcs-721","op":"deploy","name":"Game Items","sym":"ITM"}`),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return created, submitted
	}

	firstCreated, firstSubmitted := run()
	secondCreated, secondSubmitted := run()

	if firstCreated.TopicID != secondCreated.TopicID {
		t.Fatalf("expected identical topic IDs, got %s and %s", firstCreated.TopicID, secondCreated.TopicID)
	}
	if firstSubmitted.TransactionID != secondSubmitted.TransactionID {
		t.Fatalf("expected identical transaction IDs, got %s and %s",
			firstSubmitted.TransactionID, secondSubmitted.TransactionID)
	}
	if !firstSubmitted.ConsensusAt.Equal(secondSubmitted.ConsensusAt) {
		t.Fatal("expected identical consensus timestamps across replays")
	}
}

func TestNodeCreateAccount(t *testing.T) {
	node := NewNode(NodeConfig{})

	accountID := node.CreateAccount("player one")
	if accountID != "0.0.1001" {
		t.Fatalf("unexpected account ID: %s", accountID)
	}

	record, exists := node.Account(accountID)
	if !exists {
		t.Fatal("expected account record")
	}
	if record.Balance <= 0 {
		t.Fatalf("expected funded account, got balance %d", record.Balance)
	}
	if record.Memo != "player one" {
		t.Fatalf("unexpected memo: %s", record.Memo)
	}

	operator, exists := node.Account(node.OperatorAccountID())
	if !exists || operator.Balance <= record.Balance {
		t.Fatal("expected genesis operator to hold the treasury balance")
	}
}

func TestNodeTransactionsByIDAcceptsBothForms(t *testing.T) {
	node := NewNode(NodeConfig{})

	created, err := node.CreateTopic(t.Context(), hcs721.CreateTopicRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	submitted, err := node.SubmitMessage(t.Context(), hcs721.SubmitMessageRequest{
		TopicID: created.TopicID,
		Payload: []byte("payload"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := node.TransactionsByID(submitted.TransactionID)
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Name != "CONSENSUSSUBMITMESSAGE" || records[0].EntityID != created.TopicID {
		t.Fatalf("unexpected record: %+v", records[0])
	}

	mirrorForm := strings.Replace(submitted.TransactionID, "@", "-", 1)
	if dot := strings.LastIndex(mirrorForm, "."); dot >= 0 {
		mirrorForm = mirrorForm[:dot] + "-" + mirrorForm[dot+1:]
	}
	if len(node.TransactionsByID(mirrorForm)) != 1 {
		t.Fatalf("expected mirror-form lookup to match: %s", mirrorForm)
	}

	if len(node.TransactionsByID("0.0.2@1.000000001")) != 0 {
		t.Fatal("expected no match for an unknown transaction ID")
	}
}
