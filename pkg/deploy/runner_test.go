package deploy

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hashgraph-online/hcs721-go/pkg/localnet"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func localOperator() shared.OperatorConfig {
	return shared.OperatorConfig{
		AccountID:  shared.LocalnetOperatorAccountID,
		PrivateKey: shared.LocalnetOperatorPrivateKey,
		Network:    shared.NetworkLocal,
	}
}

func TestRunnerLocalWalkthrough(t *testing.T) {
	node := localnet.NewNode(localnet.NodeConfig{})

	runner, err := NewRunner(RunnerConfig{
		Manifest: Manifest{
			Network: "local",
			Collection: CollectionManifest{
				Name:   "Game Items",
				Symbol: "ITM",
			},
			Registry: RegistryManifest{
				Enabled: true,
				Create:  true,
			},
			Premint: []PremintItem{
				{To: "0.0.2002", URI: "https://game.example/item-id-8u5h2m.json"},
				{URI: "https://game.example/item-id-9k1x4p.json"},
			},
		},
		Operator: localOperator(),
		Logger:   quietLogger(),
		Node:     node,
	})
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}

	result, err := runner.Run(t.Context())
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if _, parseErr := uuid.Parse(result.RunID); parseErr != nil {
		t.Fatalf("expected a uuid run ID, got %q", result.RunID)
	}
	if result.CollectionTopicID == "" || result.RegistryTopicID == "" {
		t.Fatalf("expected collection and registry topics, got %+v", result)
	}
	if len(result.Serials) != 2 || result.Serials[0] != 1 || result.Serials[1] != 2 {
		t.Fatalf("expected serials [1 2], got %v", result.Serials)
	}

	wantSteps := []string{
		"create-registry",
		"deploy-collection",
		"register-collection",
		"mint-item",
		"mint-item",
	}
	if len(result.Steps) != len(wantSteps) {
		t.Fatalf("unexpected steps: %+v", result.Steps)
	}
	for index, step := range result.Steps {
		if step.Name != wantSteps[index] {
			t.Fatalf("step %d: expected %s, got %s", index, wantSteps[index], step.Name)
		}
	}

	registryMessages, exists := node.TopicMessages(result.RegistryTopicID)
	if !exists || len(registryMessages) != 1 {
		t.Fatalf("expected one registry announcement, got %d", len(registryMessages))
	}
	var announcement map[string]any
	if err := json.Unmarshal(registryMessages[0].Payload, &announcement); err != nil {
		t.Fatalf("failed to decode announcement: %v", err)
	}
	if announcement["op"] != "register" || announcement["t_id"] != result.CollectionTopicID {
		t.Fatalf("unexpected announcement: %v", announcement)
	}

	collectionMessages, exists := node.TopicMessages(result.CollectionTopicID)
	if !exists || len(collectionMessages) != 3 {
		t.Fatalf("expected deploy plus two mints, got %d messages", len(collectionMessages))
	}
}

func TestRunnerDefaultsPremintRecipientToOperator(t *testing.T) {
	node := localnet.NewNode(localnet.NodeConfig{})

	runner, err := NewRunner(RunnerConfig{
		Manifest: Manifest{
			Network: "local",
			Collection: CollectionManifest{
				Name:   "Game Items",
				Symbol: "ITM",
			},
			Premint: []PremintItem{
				{URI: "https://game.example/item-id-8u5h2m.json"},
			},
		},
		Operator: localOperator(),
		Logger:   quietLogger(),
		Node:     node,
	})
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}

	result, err := runner.Run(t.Context())
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	messages, _ := node.TopicMessages(result.CollectionTopicID)
	if len(messages) != 2 {
		t.Fatalf("expected deploy and one mint, got %d messages", len(messages))
	}

	var mint map[string]any
	if err := json.Unmarshal(messages[1].Payload, &mint); err != nil {
		t.Fatalf("failed to decode mint: %v", err)
	}
	if mint["to"] != shared.LocalnetOperatorAccountID {
		t.Fatalf("expected mint to default to the operator, got %v", mint["to"])
	}
}

func TestRunnerDeploysCappedCollectionWithBaseURI(t *testing.T) {
	node := localnet.NewNode(localnet.NodeConfig{})

	runner, err := NewRunner(RunnerConfig{
		Manifest: Manifest{
			Network: "local",
			Collection: CollectionManifest{
				Name:      "Game Items",
				Symbol:    "ITM",
				MaxSupply: 2,
				BaseURI:   "https://game.example/items/",
			},
			Premint: []PremintItem{
				{To: "0.0.2002"},
				{To: "0.0.2003"},
			},
		},
		Operator: localOperator(),
		Logger:   quietLogger(),
		Node:     node,
	})
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}

	result, err := runner.Run(t.Context())
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(result.Serials) != 2 || result.Serials[0] != 1 || result.Serials[1] != 2 {
		t.Fatalf("expected serials [1 2], got %v", result.Serials)
	}

	messages, _ := node.TopicMessages(result.CollectionTopicID)
	if len(messages) != 3 {
		t.Fatalf("expected deploy and two mints, got %d messages", len(messages))
	}

	var deployed map[string]any
	if err := json.Unmarshal(messages[0].Payload, &deployed); err != nil {
		t.Fatalf("failed to decode deploy: %v", err)
	}
	if deployed["max"] != "2" {
		t.Fatalf("expected max 2 on the wire, got %v", deployed["max"])
	}
	if deployed["base_uri"] != "https://game.example/items/" {
		t.Fatalf("unexpected base_uri: %v", deployed["base_uri"])
	}

	for index, message := range messages[1:] {
		var mint map[string]any
		if err := json.Unmarshal(message.Payload, &mint); err != nil {
			t.Fatalf("failed to decode mint %d: %v", index, err)
		}
		if _, present := mint["uri"]; present {
			t.Fatalf("expected mint %d to leave uri for derivation, got %v", index, mint["uri"])
		}
	}
}

func TestRunnerAbortsOnFirstFailingStep(t *testing.T) {
	node := localnet.NewNode(localnet.NodeConfig{})

	runner, err := NewRunner(RunnerConfig{
		Manifest: Manifest{
			Network: "local",
			Collection: CollectionManifest{
				Name:   "Game Items",
				Symbol: "ITM",
			},
			Premint: []PremintItem{
				{URI: strings.Repeat("x", 501)},
				{URI: "https://game.example/item-id-9k1x4p.json"},
			},
		},
		Operator: localOperator(),
		Logger:   quietLogger(),
		Node:     node,
	})
	if err != nil {
		t.Fatalf("unexpected runner error: %v", err)
	}

	_, err = runner.Run(t.Context())
	if err == nil {
		t.Fatal("expected the oversized URI to abort the run")
	}
	if !strings.Contains(err.Error(), "premint[0]") {
		t.Fatalf("expected the failing step in the error, got %v", err)
	}

	messages, exists := node.TopicMessages("0.0.1001")
	if !exists {
		t.Fatal("expected the collection topic to have been created before the abort")
	}
	if len(messages) != 1 {
		t.Fatalf("expected only the deploy message, got %d", len(messages))
	}
}

func TestNewRunnerRejectsInvalidManifest(t *testing.T) {
	if _, err := NewRunner(RunnerConfig{
		Manifest: Manifest{Network: "local"},
		Operator: localOperator(),
		Logger:   quietLogger(),
	}); err == nil {
		t.Fatal("expected missing collection to fail")
	}
}
