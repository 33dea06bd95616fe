package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultProtocol is the registry wire protocol. Collection registries
// reuse the HCS-2 topic registry standard for their memos and generic
// entries.
const defaultProtocol = "hcs-2"

// defaultRegistryTTL is the cache lifetime written into registry topic
// memos when the caller does not pick one.
const defaultRegistryTTL int64 = 86400

// TopicMemo is the decoded form of a registry topic memo.
type TopicMemo struct {
	RegistryType RegistryType
	TTL          int64
}

// BuildTopicMemo renders the hcs-2:<type>:<ttl> memo that marks a topic
// as a collection registry.
func BuildTopicMemo(registryType RegistryType, ttl int64) string {
	return fmt.Sprintf("%s:%d:%d", defaultProtocol, registryType, ttl)
}

// ParseTopicMemo decodes a registry topic memo. The second return value
// is false when the memo is malformed or belongs to another protocol.
func ParseTopicMemo(memo string) (*TopicMemo, bool) {
	protocol, rest, found := strings.Cut(strings.TrimSpace(memo), ":")
	if !found || protocol != defaultProtocol {
		return nil, false
	}
	rawType, rawTTL, found := strings.Cut(rest, ":")
	if !found || strings.Contains(rawTTL, ":") {
		return nil, false
	}

	typeValue, err := strconv.Atoi(rawType)
	if err != nil {
		return nil, false
	}
	registryType := RegistryType(typeValue)
	if registryType != RegistryTypeIndexed && registryType != RegistryTypeNonIndexed {
		return nil, false
	}

	ttl, err := strconv.ParseInt(rawTTL, 10, 64)
	if err != nil {
		return nil, false
	}

	return &TopicMemo{RegistryType: registryType, TTL: ttl}, true
}

// BuildTransactionMemo renders the hcs-2:op:<code>:<type> analytics memo
// attached to registry submit transactions.
func BuildTransactionMemo(operation Operation, registryType RegistryType) string {
	return fmt.Sprintf("%s:op:%d:%d", defaultProtocol, operationCode(operation), registryType)
}

func operationCode(operation Operation) int {
	switch operation {
	case OperationUpdate:
		return 1
	case OperationDelete:
		return 2
	case OperationMigrate:
		return 3
	default:
		return 0
	}
}

func registryTypeOrDefault(registryType RegistryType) RegistryType {
	if registryType == RegistryTypeNonIndexed {
		return RegistryTypeNonIndexed
	}
	return RegistryTypeIndexed
}

func ttlOrDefault(ttl int64) int64 {
	if ttl <= 0 {
		return defaultRegistryTTL
	}
	return ttl
}
