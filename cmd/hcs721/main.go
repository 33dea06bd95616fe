package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashgraph-online/hcs721-go/pkg/deploy"
	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
	"github.com/hashgraph-online/hcs721-go/pkg/localnet"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
)

const (
	exitSuccess           = 0
	exitRuntimeFailure    = 1
	exitInvalidInvocation = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitInvalidInvocation
	}

	switch args[0] {
	case "deploy":
		return runDeploy(args[1:], stdout, stderr)
	case "mint":
		return runMint(args[1:], stdout, stderr)
	case "resolve":
		return runResolve(args[1:], stdout, stderr)
	case "items":
		return runItems(args[1:], stdout, stderr)
	case "localnet":
		return runLocalnet(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return exitSuccess
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitInvalidInvocation
	}
}

func usage(out io.Writer) {
	fmt.Fprint(out, `Usage: hcs721 <command> [flags]

Commands:
  deploy    run a deployment manifest against a network
  mint      mint an item into a deployed collection
  resolve   look up an item's owner and metadata URI
  items     list the items an account holds in a collection
  localnet  run a local test network with a mirror REST server
  help      show this message

Run 'hcs721 <command> -h' for command flags.
`)
}

func runDeploy(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("deploy", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	manifestPath := flagSet.String("manifest", "deploy.yaml", "path to the deployment manifest")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitInvalidInvocation
	}

	manifest, err := deploy.LoadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	runner, err := deploy.NewRunner(deploy.RunnerConfig{Manifest: manifest})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	fmt.Fprintf(stdout, "run %s complete on %s\n", result.RunID, result.Network)
	fmt.Fprintf(stdout, "collection topic: %s\n", result.CollectionTopicID)
	if result.RegistryTopicID != "" {
		fmt.Fprintf(stdout, "registry topic: %s\n", result.RegistryTopicID)
	}
	for _, step := range result.Steps {
		if step.Name != "mint-item" {
			continue
		}
		fmt.Fprintf(stdout, "minted serial %d (tx %s)\n", step.Serial, step.TransactionID)
	}
	return exitSuccess
}

func runMint(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("mint", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	network := flagSet.String("network", "", "hedera network (defaults to HEDERA_NETWORK)")
	mirrorURL := flagSet.String("mirror", "", "mirror node base URL override")
	topicID := flagSet.String("topic", "", "collection topic ID")
	symbol := flagSet.String("symbol", "", "collection symbol, resolved through the registry")
	registryTopicID := flagSet.String("registry", "", "registry topic for -symbol resolution")
	to := flagSet.String("to", "", "recipient account (defaults to the operator)")
	tokenURI := flagSet.String("uri", "", "metadata URI (optional for collections with a base URI)")
	memo := flagSet.String("memo", "", "optional message memo")
	private := flagSet.Bool("private", false, "collection lives on a private topic")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitInvalidInvocation
	}
	if *topicID == "" && *symbol == "" {
		fmt.Fprintln(stderr, "one of -topic or -symbol is required")
		return exitInvalidInvocation
	}

	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}
	if *network == "" {
		*network = operator.Network
	}

	client, err := hcs721.NewClient(hcs721.ClientConfig{
		OperatorAccountID:  operator.AccountID,
		OperatorPrivateKey: operator.PrivateKey,
		Network:            *network,
		MirrorBaseURL:      *mirrorURL,
		RegistryTopicID:    *registryTopicID,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	ctx := context.Background()
	resolvedTopicID := *topicID
	if resolvedTopicID == "" {
		resolvedTopicID, err = findCollectionBySymbol(ctx, *network, *mirrorURL, *registryTopicID, *symbol)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntimeFailure
		}
	}

	recipient := *to
	if recipient == "" {
		recipient = operator.AccountID
	}

	minted, err := client.MintItem(ctx, hcs721.MintItemOptions{
		TopicID:      resolvedTopicID,
		To:           recipient,
		TokenURI:     *tokenURI,
		Memo:         *memo,
		PrivateTopic: *private,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	fmt.Fprintf(stdout, "minted serial %d on %s (tx %s)\n", minted.Serial, resolvedTopicID, minted.TransactionID)
	return exitSuccess
}

func runResolve(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	network := flagSet.String("network", "", "hedera network (defaults to HEDERA_NETWORK)")
	mirrorURL := flagSet.String("mirror", "", "mirror node base URL override")
	topicID := flagSet.String("topic", "", "collection topic ID")
	symbol := flagSet.String("symbol", "", "collection symbol, resolved through the registry")
	registryTopicID := flagSet.String("registry", "", "registry topic for -symbol resolution")
	serial := flagSet.Int64("serial", 0, "item serial number")
	private := flagSet.Bool("private", false, "collection lives on a private topic")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitInvalidInvocation
	}
	if *serial <= 0 {
		fmt.Fprintln(stderr, "-serial must be positive")
		return exitInvalidInvocation
	}
	if *topicID == "" && *symbol == "" {
		fmt.Fprintln(stderr, "one of -topic or -symbol is required")
		return exitInvalidInvocation
	}
	if *network == "" {
		*network = os.Getenv("HEDERA_NETWORK")
	}

	ctx := context.Background()

	indexer, err := hcs721.NewCollectionIndexer(hcs721.IndexerConfig{
		Network:       *network,
		MirrorBaseURL: *mirrorURL,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	resolvedTopicID := *topicID
	if resolvedTopicID != "" {
		options := hcs721.IndexOptions{CollectionTopics: []string{resolvedTopicID}}
		if *private {
			options = hcs721.IndexOptions{PrivateTopics: []string{resolvedTopicID}}
		}
		if err := indexer.IndexOnce(ctx, options); err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntimeFailure
		}
	} else {
		if err := indexer.IndexOnce(ctx, hcs721.IndexOptions{
			IncludeRegistryTopic: true,
			RegistryTopicID:      *registryTopicID,
		}); err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntimeFailure
		}
		found, exists := collectionBySymbol(indexer, *symbol)
		if !exists {
			fmt.Fprintf(stderr, "no registered collection with symbol %q\n", *symbol)
			return exitRuntimeFailure
		}
		resolvedTopicID = found
	}

	owner, err := indexer.OwnerOf(resolvedTopicID, *serial)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}
	tokenURI, err := indexer.TokenURI(resolvedTopicID, *serial)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	fmt.Fprintf(stdout, "collection %s serial %d\n", resolvedTopicID, *serial)
	fmt.Fprintf(stdout, "owner: %s\n", owner)
	fmt.Fprintf(stdout, "uri: %s\n", tokenURI)
	return exitSuccess
}

func runItems(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("items", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	network := flagSet.String("network", "", "hedera network (defaults to HEDERA_NETWORK)")
	mirrorURL := flagSet.String("mirror", "", "mirror node base URL override")
	topicID := flagSet.String("topic", "", "collection topic ID")
	symbol := flagSet.String("symbol", "", "collection symbol, resolved through the registry")
	registryTopicID := flagSet.String("registry", "", "registry topic for -symbol resolution")
	owner := flagSet.String("owner", "", "account or EVM address to list items for")
	private := flagSet.Bool("private", false, "collection lives on a private topic")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitInvalidInvocation
	}
	holder, err := hcs721.NormalizeHolderID(*owner)
	if err != nil {
		fmt.Fprintln(stderr, "-owner must be a Hedera account ID or EVM address")
		return exitInvalidInvocation
	}
	if *topicID == "" && *symbol == "" {
		fmt.Fprintln(stderr, "one of -topic or -symbol is required")
		return exitInvalidInvocation
	}
	if *network == "" {
		*network = os.Getenv("HEDERA_NETWORK")
	}

	ctx := context.Background()

	indexer, err := hcs721.NewCollectionIndexer(hcs721.IndexerConfig{
		Network:       *network,
		MirrorBaseURL: *mirrorURL,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	resolvedTopicID := *topicID
	if resolvedTopicID != "" {
		options := hcs721.IndexOptions{CollectionTopics: []string{resolvedTopicID}}
		if *private {
			options = hcs721.IndexOptions{PrivateTopics: []string{resolvedTopicID}}
		}
		if err := indexer.IndexOnce(ctx, options); err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntimeFailure
		}
	} else {
		if err := indexer.IndexOnce(ctx, hcs721.IndexOptions{
			IncludeRegistryTopic: true,
			RegistryTopicID:      *registryTopicID,
		}); err != nil {
			fmt.Fprintln(stderr, err)
			return exitRuntimeFailure
		}
		found, exists := collectionBySymbol(indexer, *symbol)
		if !exists {
			fmt.Fprintf(stderr, "no registered collection with symbol %q\n", *symbol)
			return exitRuntimeFailure
		}
		resolvedTopicID = found
	}

	items := indexer.ItemsOf(resolvedTopicID, holder)
	fmt.Fprintf(stdout, "collection %s holder %s\n", resolvedTopicID, holder)
	fmt.Fprintf(stdout, "items: %d\n", len(items))
	for _, item := range items {
		fmt.Fprintf(stdout, "serial %d uri %s\n", item.Serial, item.TokenURI)
	}
	return exitSuccess
}

func runLocalnet(args []string, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("localnet", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	addr := flagSet.String("addr", "127.0.0.1:5551", "mirror REST listen address")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitInvalidInvocation
	}

	node := localnet.NewNode(localnet.NodeConfig{})
	server, err := localnet.NewServer(localnet.ServerConfig{Node: node})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}
	if err := server.Start(*addr); err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}

	fmt.Fprintf(stdout, "localnet ready\n")
	fmt.Fprintf(stdout, "operator account: %s\n", node.OperatorAccountID())
	fmt.Fprintf(stdout, "operator key: %s\n", shared.LocalnetOperatorPrivateKey)
	fmt.Fprintf(stdout, "mirror REST: %s\n", server.BaseURL())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(stderr, err)
		return exitRuntimeFailure
	}
	return exitSuccess
}

// findCollectionBySymbol indexes the registry and matches a deployed
// collection by its normalized symbol.
func findCollectionBySymbol(
	ctx context.Context,
	network string,
	mirrorURL string,
	registryTopicID string,
	symbol string,
) (string, error) {
	indexer, err := hcs721.NewCollectionIndexer(hcs721.IndexerConfig{
		Network:       network,
		MirrorBaseURL: mirrorURL,
	})
	if err != nil {
		return "", err
	}
	if err := indexer.IndexOnce(ctx, hcs721.IndexOptions{
		IncludeRegistryTopic: true,
		RegistryTopicID:      registryTopicID,
	}); err != nil {
		return "", err
	}

	topicID, exists := collectionBySymbol(indexer, symbol)
	if !exists {
		return "", fmt.Errorf("no registered collection with symbol %q", symbol)
	}
	return topicID, nil
}

func collectionBySymbol(indexer *hcs721.CollectionIndexer, symbol string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	state := indexer.StateSnapshot()
	for topicID, collection := range state.Collections {
		if collection.Symbol == normalized {
			return topicID, true
		}
	}
	return "", false
}
