package shared

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Default localnet operator: the Hedera local-node genesis treasury account and
// its well-known development key. Never funded on a public network.
const (
	LocalnetOperatorAccountID  = "0.0.2"
	LocalnetOperatorPrivateKey = "302e020100300506032b65700422042091132178e72057a1d7528025956fe39b0b847f200ab59b2fdd367017f3087137"
)

type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
}

var dotenvLoadOnce sync.Once

// OperatorConfigFromEnv reads the operator account, key, and network from the
// environment, loading the nearest .env file first. Network-scoped variables
// such as TESTNET_OPERATOR_ID take precedence over the generic names, and
// local networks fall back to the localnet genesis operator.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	network := firstNonEmptyEnv("HEDERA_NETWORK", "NETWORK")
	if network == "" {
		network = NetworkTestnet
	}

	accountID := firstNonEmptyEnv(
		"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "ACCOUNT_ID", "OPERATOR_ID",
	)
	privateKey := firstNonEmptyEnv(
		"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "PRIVATE_KEY", "OPERATOR_KEY",
	)

	prefix := scopedEnvPrefix(network)
	if prefix != "" {
		if scoped := firstNonEmptyEnv(
			prefix+"_HEDERA_ACCOUNT_ID",
			prefix+"_HEDERA_OPERATOR_ID",
			prefix+"_OPERATOR_ID",
		); scoped != "" {
			accountID = scoped
		}
		if scoped := firstNonEmptyEnv(
			prefix+"_HEDERA_PRIVATE_KEY",
			prefix+"_HEDERA_OPERATOR_KEY",
			prefix+"_OPERATOR_KEY",
		); scoped != "" {
			privateKey = scoped
		}
	}
	if prefix == "LOCALNET" {
		if accountID == "" {
			accountID = LocalnetOperatorAccountID
		}
		if privateKey == "" {
			privateKey = LocalnetOperatorPrivateKey
		}
	}

	config := OperatorConfig{
		AccountID:  accountID,
		PrivateKey: privateKey,
		Network:    network,
	}
	if config.AccountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if config.PrivateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}
	return config, nil
}

func scopedEnvPrefix(network string) string {
	switch strings.ToLower(network) {
	case NetworkMainnet:
		return "MAINNET"
	case NetworkTestnet:
		return "TESTNET"
	case NetworkLocal, "localnet", "localhost":
		return "LOCALNET"
	}
	return ""
}

func loadDotEnvIfPresent() {
	dotenvLoadOnce.Do(func() {
		if path, ok := findDotEnv(); ok {
			loadDotEnvFile(path)
		}
	})
}

// findDotEnv walks from the working directory and from this source file's
// directory toward the filesystem root, returning the first .env it sees.
func findDotEnv() (string, bool) {
	roots := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	if _, sourceFile, _, ok := runtime.Caller(0); ok {
		roots = append(roots, filepath.Dir(sourceFile))
	}

	visited := make(map[string]struct{})
	for _, root := range roots {
		dir := root
		for {
			candidate := filepath.Join(dir, ".env")
			if _, seen := visited[candidate]; !seen {
				visited[candidate] = struct{}{}
				if _, err := os.Stat(candidate); err == nil {
					return candidate, true
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return "", false
}

// loadDotEnvFile sets variables from a dotenv file without overriding values
// already present in the environment. It reports whether anything was set.
func loadDotEnvFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	loaded := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, ok := parseDotEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if os.Setenv(key, value) == nil {
			loaded = true
		}
	}
	return loaded
}

func parseDotEnvLine(raw string) (string, string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if !isValidEnvKey(key) {
		return "", "", false
	}
	return key, unquoteEnvValue(strings.TrimSpace(value)), true
}

func unquoteEnvValue(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func isValidEnvKey(key string) bool {
	if key == "" {
		return false
	}
	for index, char := range key {
		switch {
		case char == '_',
			char >= 'A' && char <= 'Z',
			char >= 'a' && char <= 'z':
		case char >= '0' && char <= '9':
			if index == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// ParsePrivateKey tries the key encodings Hedera tooling emits, in order:
// ED25519, ECDSA, then DER. The error lists every failed attempt.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	attempts := []struct {
		encoding string
		parse    func(string) (hedera.PrivateKey, error)
	}{
		{"ED25519", hedera.PrivateKeyFromStringEd25519},
		{"ECDSA", hedera.PrivateKeyFromStringECDSA},
		{"DER", hedera.PrivateKeyFromString},
	}

	failures := make([]string, 0, len(attempts))
	for _, attempt := range attempts {
		key, err := attempt.parse(candidate)
		if err == nil {
			return key, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", attempt.encoding, err))
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key (%s)", strings.Join(failures, "; "),
	)
}

// ResolveOperator validates operator credentials and parses them into SDK
// types.
func ResolveOperator(accountID string, privateKey string) (hedera.AccountID, hedera.PrivateKey, error) {
	trimmedAccountID := strings.TrimSpace(accountID)
	if trimmedAccountID == "" {
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("operator account ID is required")
	}
	if strings.TrimSpace(privateKey) == "" {
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("operator private key is required")
	}

	operatorID, err := hedera.AccountIDFromString(trimmedAccountID)
	if err != nil {
		return hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	operatorKey, err := ParsePrivateKey(privateKey)
	if err != nil {
		return hedera.AccountID{}, hedera.PrivateKey{}, err
	}
	return operatorID, operatorKey, nil
}

// ResolveTopicKey resolves an optional admin or submit key for topic
// creation: the operator's public key when useOperator is set, the parsed
// value when one is given, nil otherwise. The value may be a public key or
// a private key, in which case the derived public key is used.
func ResolveTopicKey(raw string, operatorKey hedera.PrivateKey, useOperator bool) (*hedera.PublicKey, error) {
	if useOperator {
		operatorPublicKey := operatorKey.PublicKey()
		return &operatorPublicKey, nil
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	publicKey, publicErr := hedera.PublicKeyFromString(trimmed)
	if publicErr == nil {
		return &publicKey, nil
	}
	privateKey, privateErr := ParsePrivateKey(trimmed)
	if privateErr != nil {
		return nil, fmt.Errorf("failed to parse key as public (%v) or private (%v)", publicErr, privateErr)
	}
	derived := privateKey.PublicKey()
	return &derived, nil
}
