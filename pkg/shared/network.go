package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Network names accepted across the SDK. Aliases such as "localnet" and
// "localhost" normalize to NetworkLocal.
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkLocal   = "local"
)

var networkAliases = map[string]string{
	NetworkMainnet: NetworkMainnet,
	NetworkTestnet: NetworkTestnet,
	NetworkLocal:   NetworkLocal,
	"localnet":     NetworkLocal,
	"localhost":    NetworkLocal,
}

// NormalizeNetwork maps a raw network name to one of the canonical network
// constants. Empty input defaults to testnet.
func NormalizeNetwork(network string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(network))
	if trimmed == "" {
		return NetworkTestnet, nil
	}
	canonical, ok := networkAliases[trimmed]
	if !ok {
		return "", fmt.Errorf("unsupported network %q", network)
	}
	return canonical, nil
}

// NewHederaClient builds a Hedera network client for mainnet or testnet.
// Local runs submit through an in-process localnet node instead.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	switch normalized {
	case NetworkMainnet:
		return hedera.ClientForMainnet(), nil
	case NetworkLocal:
		return nil, fmt.Errorf("network %q has no Hedera client; submit through a localnet node", normalized)
	default:
		return hedera.ClientForTestnet(), nil
	}
}
