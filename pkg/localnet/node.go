package localnet

import (
	"context"
	"crypto/sha512"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
)

const (
	// DefaultOperatorAccountID is the genesis treasury account every fresh
	// node starts with, matching the hedera local node convention.
	DefaultOperatorAccountID = "0.0.2"

	// DefaultFirstEntityNum is the entity number assigned to the first
	// created topic or account.
	DefaultFirstEntityNum = int64(1001)

	// MaxMessageBytes is the single-transaction consensus message limit.
	// Chunked submissions are not modeled.
	MaxMessageBytes = 1024

	runningHashVersion = int64(3)

	genesisBalanceTinybar = int64(5_000_000_000_000_000_000)
	accountBalanceTinybar = int64(1_000_000_000_000)
)

var _ hcs721.MessageSubmitter = &Node{}

type NodeConfig struct {
	// OperatorAccountID overrides the genesis account. Defaults to 0.0.2.
	OperatorAccountID string

	// FirstEntityNum overrides the number of the first allocated entity.
	FirstEntityNum int64

	// StartTime anchors the consensus clock. Defaults to a fixed epoch so
	// repeated runs produce identical timestamps.
	StartTime time.Time
}

type TopicRecord struct {
	TopicID          string
	Memo             string
	AdminKey         string
	SubmitKey        string
	CreatedTimestamp string
}

type MessageRecord struct {
	TopicID            string
	SequenceNumber     int64
	ConsensusTimestamp string
	Payload            []byte
	PayerAccountID     string
	RunningHash        []byte
	RunningHashVersion int64
}

type AccountRecord struct {
	AccountID        string
	Balance          int64
	Memo             string
	CreatedTimestamp string
}

type TransactionRecord struct {
	TransactionID      string
	Name               string
	Result             string
	ConsensusTimestamp string
	EntityID           string
	PayerAccountID     string
	ChargedFee         int64
}

type topicState struct {
	record TopicRecord

	// submitGuard is the payer that created a submit-keyed topic. Other
	// payers are rejected, which is how private collection topics behave
	// on the real network.
	submitGuard string

	messages    []MessageRecord
	runningHash []byte
}

// Node is an in-process consensus substrate covering the slice of Hedera the
// SDK touches: topic creation, ordered message submission, and the records a
// mirror node would serve back. Entity IDs, sequence numbers, and consensus
// timestamps are deterministic.
type Node struct {
	mutex sync.Mutex

	operatorID    string
	nextEntityNum int64

	baseSeconds int64
	eventCount  int64

	topics       map[string]*topicState
	accounts     map[string]*AccountRecord
	transactions []TransactionRecord
}

// NewNode creates a node with a funded genesis operator account.
func NewNode(config NodeConfig) *Node {
	operatorID := strings.TrimSpace(config.OperatorAccountID)
	if operatorID == "" {
		operatorID = DefaultOperatorAccountID
	}

	firstEntityNum := config.FirstEntityNum
	if firstEntityNum <= 0 {
		firstEntityNum = DefaultFirstEntityNum
	}

	startTime := config.StartTime
	if startTime.IsZero() {
		startTime = time.Unix(1_700_000_000, 0).UTC()
	}

	node := &Node{
		operatorID:    operatorID,
		nextEntityNum: firstEntityNum,
		baseSeconds:   startTime.Unix(),
		topics:        map[string]*topicState{},
		accounts:      map[string]*AccountRecord{},
	}

	node.accounts[operatorID] = &AccountRecord{
		AccountID:        operatorID,
		Balance:          genesisBalanceTinybar,
		Memo:             "localnet genesis operator",
		CreatedTimestamp: fmt.Sprintf("%d.%09d", node.baseSeconds, 0),
	}

	return node
}

// OperatorAccountID returns the genesis operator account ID.
func (node *Node) OperatorAccountID() string {
	return node.operatorID
}

// CreateTopic allocates the next entity ID and records the topic.
func (node *Node) CreateTopic(
	ctx context.Context,
	request hcs721.CreateTopicRequest,
) (hcs721.CreateTopicResult, error) {
	if err := ctx.Err(); err != nil {
		return hcs721.CreateTopicResult{}, err
	}

	node.mutex.Lock()
	defer node.mutex.Unlock()

	topicID := node.allocateEntityIDLocked()
	consensusAt, timestamp := node.tickLocked()

	state := &topicState{
		record: TopicRecord{
			TopicID:          topicID,
			Memo:             request.Memo,
			AdminKey:         strings.TrimSpace(request.AdminKey),
			SubmitKey:        strings.TrimSpace(request.SubmitKey),
			CreatedTimestamp: timestamp,
		},
	}
	if state.record.SubmitKey != "" {
		state.submitGuard = node.operatorID
	}
	node.topics[topicID] = state

	transactionID := formatTransactionID(node.operatorID, consensusAt)
	node.transactions = append(node.transactions, TransactionRecord{
		TransactionID:      transactionID,
		Name:               "CONSENSUSCREATETOPIC",
		Result:             "SUCCESS",
		ConsensusTimestamp: timestamp,
		EntityID:           topicID,
		PayerAccountID:     node.operatorID,
		ChargedFee:         2_500_000,
	})

	return hcs721.CreateTopicResult{
		TopicID:       topicID,
		TransactionID: transactionID,
	}, nil
}

// SubmitMessage appends a message to a topic, assigning the next sequence
// number and a strictly increasing consensus timestamp.
func (node *Node) SubmitMessage(
	ctx context.Context,
	request hcs721.SubmitMessageRequest,
) (hcs721.OperationResult, error) {
	if err := ctx.Err(); err != nil {
		return hcs721.OperationResult{}, err
	}

	topicID := strings.TrimSpace(request.TopicID)
	if topicID == "" {
		return hcs721.OperationResult{}, fmt.Errorf("topic ID is required")
	}
	if len(request.Payload) == 0 {
		return hcs721.OperationResult{}, fmt.Errorf("message payload is required")
	}
	if len(request.Payload) > MaxMessageBytes {
		return hcs721.OperationResult{}, fmt.Errorf(
			"message payload is %d bytes; the single-transaction limit is %d",
			len(request.Payload), MaxMessageBytes,
		)
	}

	node.mutex.Lock()
	defer node.mutex.Unlock()

	state, exists := node.topics[topicID]
	if !exists {
		return hcs721.OperationResult{}, fmt.Errorf("topic %s does not exist", topicID)
	}

	payer := strings.TrimSpace(request.PayerAccountID)
	if payer == "" {
		payer = node.operatorID
	}
	if state.submitGuard != "" && payer != state.submitGuard {
		return hcs721.OperationResult{}, fmt.Errorf(
			"topic %s has a submit key; payer %s is not authorized",
			topicID, payer,
		)
	}
	node.ensureAccountLocked(payer)

	consensusAt, timestamp := node.tickLocked()
	sequenceNumber := int64(len(state.messages)) + 1

	payload := make([]byte, len(request.Payload))
	copy(payload, request.Payload)

	hashInput := append(append([]byte{}, state.runningHash...), payload...)
	runningHash := sha512.Sum384(hashInput)
	state.runningHash = runningHash[:]

	state.messages = append(state.messages, MessageRecord{
		TopicID:            topicID,
		SequenceNumber:     sequenceNumber,
		ConsensusTimestamp: timestamp,
		Payload:            payload,
		PayerAccountID:     payer,
		RunningHash:        state.runningHash,
		RunningHashVersion: runningHashVersion,
	})

	transactionID := formatTransactionID(payer, consensusAt)
	node.transactions = append(node.transactions, TransactionRecord{
		TransactionID:      transactionID,
		Name:               "CONSENSUSSUBMITMESSAGE",
		Result:             "SUCCESS",
		ConsensusTimestamp: timestamp,
		EntityID:           topicID,
		PayerAccountID:     payer,
		ChargedFee:         100_000,
	})

	return hcs721.OperationResult{
		TopicID:        topicID,
		TransactionID:  transactionID,
		SequenceNumber: sequenceNumber,
		ConsensusAt:    consensusAt,
	}, nil
}

// CreateAccount allocates a funded account and returns its ID.
func (node *Node) CreateAccount(memo string) string {
	node.mutex.Lock()
	defer node.mutex.Unlock()

	accountID := node.allocateEntityIDLocked()
	_, timestamp := node.tickLocked()
	node.accounts[accountID] = &AccountRecord{
		AccountID:        accountID,
		Balance:          accountBalanceTinybar,
		Memo:             memo,
		CreatedTimestamp: timestamp,
	}
	return accountID
}

// Topic returns a topic record.
func (node *Node) Topic(topicID string) (TopicRecord, bool) {
	node.mutex.Lock()
	defer node.mutex.Unlock()

	state, exists := node.topics[strings.TrimSpace(topicID)]
	if !exists {
		return TopicRecord{}, false
	}
	return state.record, true
}

// TopicMessages returns a detached copy of a topic's messages in consensus
// order. The second result reports whether the topic exists.
func (node *Node) TopicMessages(topicID string) ([]MessageRecord, bool) {
	node.mutex.Lock()
	defer node.mutex.Unlock()

	state, exists := node.topics[strings.TrimSpace(topicID)]
	if !exists {
		return nil, false
	}

	messages := make([]MessageRecord, len(state.messages))
	copy(messages, state.messages)
	return messages, true
}

// Account returns an account record.
func (node *Node) Account(accountID string) (AccountRecord, bool) {
	node.mutex.Lock()
	defer node.mutex.Unlock()

	record, exists := node.accounts[strings.TrimSpace(accountID)]
	if !exists {
		return AccountRecord{}, false
	}
	return *record, true
}

// TransactionsByID returns every record matching a transaction ID in either
// the SDK (payer@seconds.nanos) or mirror (payer-seconds-nanos) form.
func (node *Node) TransactionsByID(transactionID string) []TransactionRecord {
	normalized := normalizeTransactionID(transactionID)
	if normalized == "" {
		return nil
	}

	node.mutex.Lock()
	defer node.mutex.Unlock()

	var matches []TransactionRecord
	for _, record := range node.transactions {
		if normalizeTransactionID(record.TransactionID) == normalized {
			matches = append(matches, record)
		}
	}
	return matches
}

func (node *Node) allocateEntityIDLocked() string {
	entityID := fmt.Sprintf("0.0.%d", node.nextEntityNum)
	node.nextEntityNum++
	return entityID
}

func (node *Node) ensureAccountLocked(accountID string) {
	if _, exists := node.accounts[accountID]; exists {
		return
	}
	_, timestamp := node.tickLocked()
	node.accounts[accountID] = &AccountRecord{
		AccountID:        accountID,
		Balance:          accountBalanceTinybar,
		CreatedTimestamp: timestamp,
	}
}

func (node *Node) tickLocked() (time.Time, string) {
	node.eventCount++
	seconds := node.baseSeconds + node.eventCount/1_000_000_000
	nanos := node.eventCount % 1_000_000_000
	return time.Unix(seconds, nanos).UTC(), fmt.Sprintf("%d.%09d", seconds, nanos)
}

func formatTransactionID(payer string, consensusAt time.Time) string {
	return fmt.Sprintf("%s@%d.%09d", payer, consensusAt.Unix(), consensusAt.Nanosecond())
}

func normalizeTransactionID(transactionID string) string {
	normalized := strings.TrimSpace(transactionID)
	normalized = strings.ReplaceAll(normalized, "@", "-")
	normalized = strings.ReplaceAll(normalized, ".", "-")
	return normalized
}
