package deploy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
	"github.com/hashgraph-online/hcs721-go/pkg/localnet"
	"github.com/hashgraph-online/hcs721-go/pkg/registry"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
	"github.com/sirupsen/logrus"
)

type RunnerConfig struct {
	Manifest Manifest

	// Operator overrides credential resolution. Zero value resolves from
	// the environment, falling back to the localnet genesis operator on
	// local runs.
	Operator shared.OperatorConfig

	// Logger overrides the manifest-configured logger.
	Logger *logrus.Logger

	// Node injects a prebuilt localnet node for local runs.
	Node *localnet.Node

	// MirrorBaseURL points the run at an already-running mirror server
	// instead of embedding one.
	MirrorBaseURL string
}

type StepResult struct {
	Name          string
	TopicID       string
	TransactionID string
	Serial        int64
}

type RunResult struct {
	RunID             string
	Network           string
	StandardRevision  string
	CollectionTopicID string
	RegistryTopicID   string
	MirrorBaseURL     string
	Serials           []int64
	Steps             []StepResult
}

// Runner executes the deployment walkthrough: connect, create the collection
// topic, submit deploy, optionally announce on a registry, then mint the
// manifest's premint items in order. The first failing step aborts the run.
type Runner struct {
	manifest      Manifest
	operator      shared.OperatorConfig
	log           *logrus.Logger
	node          *localnet.Node
	mirrorBaseURL string
}

// NewRunner validates the manifest and resolves operator credentials.
func NewRunner(config RunnerConfig) (*Runner, error) {
	manifest := config.Manifest
	manifest.applyDefaults()
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	operator, err := resolveOperator(config.Operator, manifest.Network)
	if err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = newRunLogger(manifest.Log)
	}

	return &Runner{
		manifest:      manifest,
		operator:      operator,
		log:           log,
		node:          config.Node,
		mirrorBaseURL: strings.TrimSpace(config.MirrorBaseURL),
	}, nil
}

// Run executes the walkthrough and returns the collected results.
func (runner *Runner) Run(ctx context.Context) (RunResult, error) {
	runID := uuid.New().String()
	result := RunResult{
		RunID:            runID,
		Network:          runner.manifest.Network,
		StandardRevision: runner.manifest.StandardRevision,
	}

	runner.log.WithFields(logrus.Fields{
		"runId":    runID,
		"network":  runner.manifest.Network,
		"revision": runner.manifest.StandardRevision,
		"operator": runner.operator.AccountID,
	}).Info("starting deployment run")

	node := runner.node
	mirrorBaseURL := runner.mirrorBaseURL
	var submitter hcs721.MessageSubmitter

	if runner.manifest.Network == shared.NetworkLocal {
		if node == nil {
			node = localnet.NewNode(localnet.NodeConfig{})
		}
		submitter = node

		if mirrorBaseURL == "" {
			server, err := localnet.NewServer(localnet.ServerConfig{
				Node:   node,
				Logger: runner.log,
			})
			if err != nil {
				return RunResult{}, fmt.Errorf("failed to build localnet mirror: %w", err)
			}
			if err := server.Start(runner.manifest.Localnet.MirrorAddr); err != nil {
				return RunResult{}, err
			}
			defer server.Shutdown(context.Background())
			mirrorBaseURL = server.BaseURL()
		}
	}
	result.MirrorBaseURL = mirrorBaseURL

	client, err := hcs721.NewClient(hcs721.ClientConfig{
		OperatorAccountID:  runner.operator.AccountID,
		OperatorPrivateKey: runner.operator.PrivateKey,
		Network:            runner.manifest.Network,
		MirrorBaseURL:      mirrorBaseURL,
		Submitter:          submitter,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to connect: %w", err)
	}

	if balance, balanceErr := client.MirrorClient().GetAccountBalance(ctx, runner.operator.AccountID); balanceErr == nil {
		runner.log.WithFields(logrus.Fields{
			"account":  runner.operator.AccountID,
			"tinybars": balance,
		}).Info("operator balance")
	} else {
		runner.log.WithError(balanceErr).Debug("operator balance unavailable")
	}

	if runner.manifest.Registry.Enabled && runner.manifest.Registry.Create {
		registryTopicID, transactionID, registryErr := client.CreateRegistryTopic(ctx, registry.CreateRegistryOptions{
			TTL:                 runner.manifest.Registry.TTL,
			UseOperatorAsAdmin:  true,
			UseOperatorAsSubmit: true,
		})
		if registryErr != nil {
			return RunResult{}, fmt.Errorf("failed to create registry topic: %w", registryErr)
		}
		result.RegistryTopicID = registryTopicID
		result.Steps = append(result.Steps, StepResult{
			Name:          "create-registry",
			TopicID:       registryTopicID,
			TransactionID: transactionID,
		})
		runner.log.WithFields(logrus.Fields{
			"registryTopic": registryTopicID,
		}).Info("registry topic created")
	} else if runner.manifest.Registry.Enabled {
		if err := client.SetRegistryTopicID(runner.manifest.Registry.TopicID); err != nil {
			return RunResult{}, err
		}
		result.RegistryTopicID = client.RegistryTopicID()
	}

	deployMemo := runner.manifest.Collection.Memo
	if deployMemo == "" {
		deployMemo = fmt.Sprintf("rev:%s run:%s", runner.manifest.StandardRevision, runID)
	}

	collection, err := client.DeployCollection(ctx, hcs721.DeployCollectionOptions{
		Name:            runner.manifest.Collection.Name,
		Symbol:          runner.manifest.Collection.Symbol,
		MaxSupply:       runner.manifest.Collection.MaxSupply,
		BaseURI:         runner.manifest.Collection.BaseURI,
		Metadata:        runner.manifest.Collection.Metadata,
		Memo:            deployMemo,
		TTL:             runner.manifest.Collection.TTL,
		UsePrivateTopic: runner.manifest.Collection.Private,
		ProgressCallback: func(progress hcs721.DeployCollectionProgress) {
			runner.log.WithFields(logrus.Fields{
				"stage":   progress.Stage,
				"percent": progress.Percentage,
			}).Debug("deploying collection")
		},
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to deploy collection: %w", err)
	}
	result.CollectionTopicID = collection.TopicID
	result.Steps = append(result.Steps, StepResult{
		Name:    "deploy-collection",
		TopicID: collection.TopicID,
	})
	runner.log.WithFields(logrus.Fields{
		"collectionTopic": collection.TopicID,
		"name":            collection.Name,
		"symbol":          collection.Symbol,
		"private":         collection.IsPrivate,
	}).Info("collection deployed")

	if runner.manifest.Registry.Enabled {
		registration, registerErr := client.RegisterCollection(ctx, hcs721.RegisterCollectionOptions{
			TopicID:   collection.TopicID,
			Name:      collection.Name,
			Metadata:  collection.Metadata,
			IsPrivate: collection.IsPrivate,
		})
		if registerErr != nil {
			return RunResult{}, fmt.Errorf("failed to register collection: %w", registerErr)
		}
		result.Steps = append(result.Steps, StepResult{
			Name:          "register-collection",
			TopicID:       registration.TopicID,
			TransactionID: registration.TransactionID,
		})
		runner.log.WithFields(logrus.Fields{
			"registryTopic":   registration.TopicID,
			"collectionTopic": collection.TopicID,
		}).Info("collection registered")
	}

	for index, item := range runner.manifest.Premint {
		to := strings.TrimSpace(item.To)
		if to == "" {
			to = runner.operator.AccountID
		}

		minted, mintErr := client.MintItem(ctx, hcs721.MintItemOptions{
			TopicID:      collection.TopicID,
			To:           to,
			TokenURI:     item.URI,
			Memo:         item.Memo,
			PrivateTopic: collection.IsPrivate,
		})
		if mintErr != nil {
			return RunResult{}, fmt.Errorf("failed to mint premint[%d]: %w", index, mintErr)
		}

		result.Serials = append(result.Serials, minted.Serial)
		result.Steps = append(result.Steps, StepResult{
			Name:          "mint-item",
			TopicID:       collection.TopicID,
			TransactionID: minted.TransactionID,
			Serial:        minted.Serial,
		})
		runner.log.WithFields(logrus.Fields{
			"serial": minted.Serial,
			"to":     to,
			"uri":    item.URI,
		}).Info("item minted")
	}

	runner.log.WithFields(logrus.Fields{
		"runId":           runID,
		"collectionTopic": result.CollectionTopicID,
		"registryTopic":   result.RegistryTopicID,
		"serials":         result.Serials,
	}).Info("deployment run complete")

	return result, nil
}

func resolveOperator(operator shared.OperatorConfig, network string) (shared.OperatorConfig, error) {
	if strings.TrimSpace(operator.AccountID) != "" && strings.TrimSpace(operator.PrivateKey) != "" {
		operator.Network = network
		return operator, nil
	}

	resolved, err := shared.OperatorConfigFromEnv()
	if err == nil {
		resolved.Network = network
		return resolved, nil
	}
	if network == shared.NetworkLocal {
		return shared.OperatorConfig{
			AccountID:  shared.LocalnetOperatorAccountID,
			PrivateKey: shared.LocalnetOperatorPrivateKey,
			Network:    network,
		}, nil
	}
	return shared.OperatorConfig{}, err
}

func newRunLogger(config LogManifest) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if config.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}
