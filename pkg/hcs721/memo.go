package hcs721

import (
	"fmt"
	"strconv"
	"strings"
)

type TopicType int

const (
	TopicTypePublic  TopicType = 0
	TopicTypePrivate TopicType = 1

	DefaultTopicTTL = int64(86400)
)

type TopicMemo struct {
	TopicType TopicType
	TTL       int64
}

// BuildTopicMemo builds and returns the configured value.
func BuildTopicMemo(topicType TopicType, ttl int64) string {
	return fmt.Sprintf("%s:%d:%d", ProtocolID, topicType, ttl)
}

// ParseTopicMemo parses the provided input value.
func ParseTopicMemo(memo string) (*TopicMemo, bool) {
	parts := strings.Split(strings.TrimSpace(memo), ":")
	if len(parts) != 3 {
		return nil, false
	}
	if parts[0] != ProtocolID {
		return nil, false
	}

	topicTypeValue, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, false
	}
	ttl, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, false
	}

	topicType := TopicType(topicTypeValue)
	if topicType != TopicTypePublic && topicType != TopicTypePrivate {
		return nil, false
	}

	return &TopicMemo{
		TopicType: topicType,
		TTL:       ttl,
	}, true
}

// BuildTransactionMemo builds and returns the configured value.
func BuildTransactionMemo(operation string) string {
	operationCode := map[string]int{
		OperationDeploy:     0,
		OperationMint:       1,
		OperationTransfer:   2,
		OperationApprove:    3,
		OperationApproveAll: 4,
		OperationBurn:       5,
		OperationUpdateURI:  6,
		OperationRegister:   7,
	}

	code := operationCode[operation]
	return fmt.Sprintf("%s:op:%d", ProtocolID, code)
}
