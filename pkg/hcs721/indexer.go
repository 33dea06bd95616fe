package hcs721

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/hashgraph-online/hcs721-go/pkg/mirror"
	"github.com/hashgraph-online/hcs721-go/pkg/shared"
)

// indexPageLimit is the page size requested from the mirror node while
// draining a topic.
const indexPageLimit = 1000

const defaultPollInterval = 30 * time.Second

// indexTarget names a collection topic scheduled for an indexing pass.
type indexTarget struct {
	TopicID string
	Private bool
}

type CollectionIndexer struct {
	mirrorClient *mirror.Client

	mutex               sync.RWMutex
	state               CollectionState
	lastIndexedSequence map[string]int64

	stopPolling context.CancelFunc
	pollDone    chan struct{}
}

// NewCollectionIndexer creates a mirror-backed HCS-721 collection indexer.
// The indexer keeps all derived state in memory; run IndexOnce or
// StartPolling to populate it.
func NewCollectionIndexer(config IndexerConfig) (*CollectionIndexer, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: network,
		BaseURL: config.MirrorBaseURL,
		APIKey:  config.MirrorAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return &CollectionIndexer{
		mirrorClient:        mirrorClient,
		lastIndexedSequence: map[string]int64{},
		state: CollectionState{
			Collections:  map[string]CollectionInfo{},
			Items:        map[string]map[int64]ItemInfo{},
			Balances:     map[string]map[string]int64{},
			Operators:    map[string]map[string]map[string]bool{},
			Transactions: []ItemTransaction{},
		},
	}, nil
}

// StateSnapshot returns a deep copy of the current index state.
func (indexer *CollectionIndexer) StateSnapshot() CollectionState {
	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	items := make(map[string]map[int64]ItemInfo, len(indexer.state.Items))
	for topicID, topicItems := range indexer.state.Items {
		items[topicID] = maps.Clone(topicItems)
	}

	balances := make(map[string]map[string]int64, len(indexer.state.Balances))
	for topicID, topicBalances := range indexer.state.Balances {
		balances[topicID] = maps.Clone(topicBalances)
	}

	operators := make(map[string]map[string]map[string]bool, len(indexer.state.Operators))
	for topicID, topicOperators := range indexer.state.Operators {
		ownerClone := make(map[string]map[string]bool, len(topicOperators))
		for owner, ownerOperators := range topicOperators {
			ownerClone[owner] = maps.Clone(ownerOperators)
		}
		operators[topicID] = ownerClone
	}

	return CollectionState{
		Collections:            maps.Clone(indexer.state.Collections),
		Items:                  items,
		Balances:               balances,
		Operators:              operators,
		Transactions:           slices.Clone(indexer.state.Transactions),
		LastProcessedSequence:  indexer.state.LastProcessedSequence,
		LastProcessedTimestamp: indexer.state.LastProcessedTimestamp,
	}
}

// GetCollectionInfo returns deployed collection metadata for the given topic.
func (indexer *CollectionIndexer) GetCollectionInfo(topicID string) (CollectionInfo, bool) {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return CollectionInfo{}, false
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()
	info, ok := indexer.state.Collections[normalizedTopicID]
	return info, ok
}

// GetItem returns the indexed item for topic/serial.
func (indexer *CollectionIndexer) GetItem(topicID string, serial int64) (ItemInfo, bool) {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return ItemInfo{}, false
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	topicItems, exists := indexer.state.Items[normalizedTopicID]
	if !exists {
		return ItemInfo{}, false
	}
	item, exists := topicItems[serial]
	return item, exists
}

// OwnerOf returns the current owner of an item. Burned and never-minted
// serials report ItemNotFoundError.
func (indexer *CollectionIndexer) OwnerOf(topicID string, serial int64) (string, error) {
	item, exists := indexer.GetItem(topicID, serial)
	if !exists {
		return "", NewItemNotFoundError(topicID, serial)
	}
	return item.Owner, nil
}

// TokenURI returns the metadata URI of an item.
func (indexer *CollectionIndexer) TokenURI(topicID string, serial int64) (string, error) {
	item, exists := indexer.GetItem(topicID, serial)
	if !exists {
		return "", NewItemNotFoundError(topicID, serial)
	}
	return item.TokenURI, nil
}

// GetApproved returns the approved account for an item, or empty when no
// approval stands.
func (indexer *CollectionIndexer) GetApproved(topicID string, serial int64) (string, error) {
	item, exists := indexer.GetItem(topicID, serial)
	if !exists {
		return "", NewItemNotFoundError(topicID, serial)
	}
	return item.Approved, nil
}

// BalanceOf returns how many items of a collection an account owns.
func (indexer *CollectionIndexer) BalanceOf(topicID string, accountID string) int64 {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return 0
	}
	normalizedAccountID, err := NormalizeHolderID(accountID)
	if err != nil {
		return 0
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	topicBalances, exists := indexer.state.Balances[normalizedTopicID]
	if !exists {
		return 0
	}
	return topicBalances[normalizedAccountID]
}

// ItemsOf lists the live items an account holds in a collection, ordered
// by serial.
func (indexer *CollectionIndexer) ItemsOf(topicID string, accountID string) []ItemInfo {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return nil
	}
	normalizedAccountID, err := NormalizeHolderID(accountID)
	if err != nil {
		return nil
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	owned := make([]ItemInfo, 0)
	for _, item := range indexer.state.Items[normalizedTopicID] {
		if item.Owner == normalizedAccountID {
			owned = append(owned, item)
		}
	}
	slices.SortFunc(owned, func(left, right ItemInfo) int {
		return cmp.Compare(left.Serial, right.Serial)
	})
	return owned
}

// IsApprovedForAll reports whether operator may manage every item owner
// holds in the collection.
func (indexer *CollectionIndexer) IsApprovedForAll(topicID string, owner string, operator string) bool {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return false
	}
	normalizedOwner, err := NormalizeHolderID(owner)
	if err != nil {
		return false
	}
	normalizedOperator, err := NormalizeHolderID(operator)
	if err != nil {
		return false
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	topicOperators, exists := indexer.state.Operators[normalizedTopicID]
	if !exists {
		return false
	}
	ownerOperators, exists := topicOperators[normalizedOwner]
	if !exists {
		return false
	}
	return ownerOperators[normalizedOperator]
}

// TotalSupply returns the number of live items in a collection.
func (indexer *CollectionIndexer) TotalSupply(topicID string) int64 {
	info, exists := indexer.GetCollectionInfo(topicID)
	if !exists {
		return 0
	}
	return info.TotalSupply
}

// SerialAtSequence returns the serial assigned by the mint that reached
// consensus at the given topic sequence number.
func (indexer *CollectionIndexer) SerialAtSequence(topicID string, sequenceNumber int64) (int64, bool) {
	normalizedTopicID, err := NormalizeAccountID(topicID)
	if err != nil {
		return 0, false
	}

	indexer.mutex.RLock()
	defer indexer.mutex.RUnlock()

	for _, transaction := range indexer.state.Transactions {
		if transaction.Operation != OperationMint {
			continue
		}
		if transaction.TopicID != normalizedTopicID {
			continue
		}
		if transaction.SequenceNumber != sequenceNumber {
			continue
		}
		return transaction.Serial, true
	}

	return 0, false
}

// IndexOnce runs a single indexing pass over every requested topic, resuming
// each one from its last indexed sequence number.
func (indexer *CollectionIndexer) IndexOnce(
	ctx context.Context,
	options IndexOptions,
) error {
	targets, err := indexer.gatherTargets(ctx, options)
	if err != nil {
		return err
	}

	for _, target := range targets {
		if err := indexer.indexTopic(ctx, target.TopicID, target.Private); err != nil {
			return err
		}
	}
	return nil
}

// gatherTargets resolves the topics an indexing pass should visit:
// registry-discovered collections first, then the explicitly listed public
// and private ones. A topic named more than once is visited once, under the
// privacy designation it first appeared with.
func (indexer *CollectionIndexer) gatherTargets(
	ctx context.Context,
	options IndexOptions,
) ([]indexTarget, error) {
	targets := make([]indexTarget, 0)
	seen := map[string]bool{}
	appendTarget := func(topicID string, private bool) error {
		normalized, err := NormalizeAccountID(topicID)
		if err != nil {
			return err
		}
		if !seen[normalized] {
			seen[normalized] = true
			targets = append(targets, indexTarget{TopicID: normalized, Private: private})
		}
		return nil
	}

	if options.IncludeRegistryTopic {
		registryTopicID := options.RegistryTopicID
		if registryTopicID == "" {
			registryTopicID = DefaultRegistryTopicID
		}
		normalizedRegistryTopicID, err := NormalizeAccountID(registryTopicID)
		if err != nil {
			return nil, err
		}

		discovered, err := indexer.discoverCollections(ctx, normalizedRegistryTopicID)
		if err != nil {
			return nil, err
		}
		for _, target := range discovered {
			if err := appendTarget(target.TopicID, target.Private); err != nil {
				return nil, err
			}
		}
	}

	for _, topicID := range options.CollectionTopics {
		if err := appendTarget(topicID, false); err != nil {
			return nil, err
		}
	}
	for _, topicID := range options.PrivateTopics {
		if err := appendTarget(topicID, true); err != nil {
			return nil, err
		}
	}

	return targets, nil
}

// StartPolling indexes immediately and then again on every tick until
// StopPolling is called or ctx is canceled. Failed cycles are retried on the
// next tick, resuming from the last indexed sequence numbers.
func (indexer *CollectionIndexer) StartPolling(
	ctx context.Context,
	options IndexOptions,
	interval time.Duration,
) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()
	if indexer.stopPolling != nil {
		return fmt.Errorf("indexer polling already running")
	}

	pollCtx, cancel := context.WithCancel(ctx)
	indexer.stopPolling = cancel
	indexer.pollDone = make(chan struct{})
	go indexer.pollLoop(pollCtx, options, interval, indexer.pollDone)
	return nil
}

func (indexer *CollectionIndexer) pollLoop(
	ctx context.Context,
	options IndexOptions,
	interval time.Duration,
	done chan<- struct{},
) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = indexer.IndexOnce(ctx, options)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// StopPolling halts an active polling loop and waits for its goroutine to
// exit. It is a no-op when polling is not running.
func (indexer *CollectionIndexer) StopPolling() {
	indexer.mutex.Lock()
	cancel := indexer.stopPolling
	done := indexer.pollDone
	indexer.stopPolling = nil
	indexer.pollDone = nil
	indexer.mutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// discoverCollections reads a registry topic and returns every collection
// announced through a register entry. Malformed entries are skipped.
func (indexer *CollectionIndexer) discoverCollections(
	ctx context.Context,
	registryTopicID string,
) ([]indexTarget, error) {
	messages, err := indexer.mirrorClient.GetTopicMessages(ctx, registryTopicID, ascendingQuery(0))
	if err != nil {
		return nil, fmt.Errorf("failed to query HCS-721 registry topic %s: %w", registryTopicID, err)
	}

	discovered := make([]indexTarget, 0, len(messages))
	for _, topicMessage := range messages {
		message, ok := decodeTopicMessage(topicMessage)
		if !ok || message.Operation != OperationRegister || message.Private == nil {
			continue
		}
		collectionTopicID, err := NormalizeAccountID(message.TopicID)
		if err != nil {
			continue
		}
		discovered = append(discovered, indexTarget{
			TopicID: collectionTopicID,
			Private: *message.Private,
		})
	}

	return discovered, nil
}

func (indexer *CollectionIndexer) indexTopic(
	ctx context.Context,
	topicID string,
	isPrivate bool,
) error {
	indexer.mutex.RLock()
	lastSequence := indexer.lastIndexedSequence[topicID]
	indexer.mutex.RUnlock()

	messages, err := indexer.mirrorClient.GetTopicMessages(ctx, topicID, ascendingQuery(lastSequence))
	if err != nil {
		return fmt.Errorf("failed to fetch topic %s messages: %w", topicID, err)
	}

	maxSequence := lastSequence
	for _, topicMessage := range messages {
		message, ok := decodeTopicMessage(topicMessage)
		if !ok {
			continue
		}
		maxSequence = max(maxSequence, topicMessage.SequenceNumber)
		indexer.processMessage(topicID, topicMessage, message, isPrivate)
	}

	if maxSequence > lastSequence {
		indexer.mutex.Lock()
		indexer.lastIndexedSequence[topicID] = maxSequence
		indexer.mutex.Unlock()
	}
	return nil
}

// ascendingQuery requests consensus-ordered pages, resuming after a
// previously indexed sequence number when one is known.
func ascendingQuery(afterSequence int64) mirror.MessageQueryOptions {
	query := mirror.MessageQueryOptions{Order: "asc", Limit: indexPageLimit}
	if afterSequence > 0 {
		query.SequenceNumber = fmt.Sprintf("gt:%d", afterSequence)
	}
	return query
}

// decodeTopicMessage unwraps a base64 mirror payload into an HCS-721
// message. Payloads that do not carry one report ok false.
func decodeTopicMessage(topicMessage mirror.TopicMessage) (Message, bool) {
	payload, err := mirror.DecodeMessageData(topicMessage)
	if err != nil {
		return Message{}, false
	}
	message, err := ParseMessageBytes(payload)
	if err != nil {
		return Message{}, false
	}
	return message, true
}

func (indexer *CollectionIndexer) processMessage(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	switch message.Operation {
	case OperationDeploy:
		indexer.processDeploy(topicID, topicMessage, message, isPrivate)
	case OperationMint:
		indexer.processMint(topicID, topicMessage, message, isPrivate)
	case OperationTransfer:
		indexer.processTransfer(topicID, topicMessage, message, isPrivate)
	case OperationApprove:
		indexer.processApprove(topicID, topicMessage, message, isPrivate)
	case OperationApproveAll:
		indexer.processApproveAll(topicID, topicMessage, message, isPrivate)
	case OperationBurn:
		indexer.processBurn(topicID, topicMessage, message, isPrivate)
	case OperationUpdateURI:
		indexer.processUpdateURI(topicID, topicMessage, message, isPrivate)
	}
}

func (indexer *CollectionIndexer) processDeploy(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	maxSupply, err := ParseMaxSupply(message.MaxSupply)
	if err != nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	// The first deploy on a topic wins; later deploys are ignored.
	if _, exists := indexer.state.Collections[topicID]; exists {
		return
	}

	indexer.state.Collections[topicID] = CollectionInfo{
		Name:                message.Name,
		Symbol:              message.Symbol,
		MaxSupply:           maxSupply,
		BaseURI:             message.BaseURI,
		Metadata:            message.Metadata,
		TopicID:             topicID,
		CreatorAccountID:    topicMessage.PayerAccountID,
		NextSerial:          FirstSerial,
		TotalSupply:         0,
		BurnedCount:         0,
		DeploymentTimestamp: topicMessage.ConsensusTimestamp,
		IsPrivate:           isPrivate,
	}

	indexer.state.LastProcessedSequence++
	indexer.state.LastProcessedTimestamp = topicMessage.ConsensusTimestamp
}

func (indexer *CollectionIndexer) processMint(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	collection, exists := indexer.state.Collections[topicID]
	if !exists {
		return
	}

	if !isPrivate {
		payer := topicMessage.PayerAccountID
		if payer != collection.CreatorAccountID && !operatorApprovedLocked(indexer.state, topicID, collection.CreatorAccountID, payer) {
			return
		}
	}

	// A capped collection ignores mints while supply sits at the cap;
	// burning frees capacity again.
	if collection.MaxSupply > 0 && collection.TotalSupply >= collection.MaxSupply {
		return
	}

	serial := collection.NextSerial
	collection.NextSerial++
	collection.TotalSupply++
	indexer.state.Collections[topicID] = collection

	tokenURI := message.TokenURI
	if tokenURI == "" && collection.BaseURI != "" {
		tokenURI = collection.BaseURI + FormatSerial(serial)
	}

	topicItems := indexer.getOrCreateItemsLocked(topicID)
	topicItems[serial] = ItemInfo{
		TopicID:     topicID,
		Serial:      serial,
		Owner:       message.To,
		Approved:    "",
		TokenURI:    tokenURI,
		MintedAt:    topicMessage.ConsensusTimestamp,
		LastUpdated: topicMessage.ConsensusTimestamp,
	}

	topicBalances := indexer.getOrCreateBalancesLocked(topicID)
	topicBalances[message.To]++

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationMint,
		Serial:    serial,
		To:        message.To,
		TokenURI:  tokenURI,
		Memo:      message.Memo,
	})
}

func (indexer *CollectionIndexer) processTransfer(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	serial, err := ParseSerial(message.Serial)
	if err != nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	topicItems, exists := indexer.state.Items[topicID]
	if !exists {
		return
	}
	item, exists := topicItems[serial]
	if !exists {
		return
	}

	if item.Owner != message.From {
		return
	}
	if !isPrivate && !isAuthorizedLocked(indexer.state, topicID, item, topicMessage.PayerAccountID) {
		return
	}

	topicBalances := indexer.getOrCreateBalancesLocked(topicID)
	topicBalances[item.Owner]--
	if topicBalances[item.Owner] <= 0 {
		delete(topicBalances, item.Owner)
	}
	topicBalances[message.To]++

	item.Owner = message.To
	// Transfers revoke any standing serial approval.
	item.Approved = ""
	item.LastUpdated = topicMessage.ConsensusTimestamp
	topicItems[serial] = item

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationTransfer,
		Serial:    serial,
		From:      message.From,
		To:        message.To,
		Memo:      message.Memo,
	})
}

func (indexer *CollectionIndexer) processApprove(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	serial, err := ParseSerial(message.Serial)
	if err != nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	topicItems, exists := indexer.state.Items[topicID]
	if !exists {
		return
	}
	item, exists := topicItems[serial]
	if !exists {
		return
	}

	if !isPrivate {
		payer := topicMessage.PayerAccountID
		if payer != item.Owner && !operatorApprovedLocked(indexer.state, topicID, item.Owner, payer) {
			return
		}
	}

	item.Approved = message.To
	item.LastUpdated = topicMessage.ConsensusTimestamp
	topicItems[serial] = item

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationApprove,
		Serial:    serial,
		From:      item.Owner,
		To:        message.To,
		Memo:      message.Memo,
	})
}

func (indexer *CollectionIndexer) processApproveAll(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	if message.Approved == nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	if _, exists := indexer.state.Collections[topicID]; !exists {
		return
	}

	if !isPrivate && topicMessage.PayerAccountID != message.From {
		return
	}

	topicOperators := indexer.getOrCreateOperatorsLocked(topicID)
	ownerOperators, exists := topicOperators[message.From]
	if !exists {
		ownerOperators = map[string]bool{}
		topicOperators[message.From] = ownerOperators
	}

	if *message.Approved {
		ownerOperators[message.Operator] = true
	} else {
		delete(ownerOperators, message.Operator)
		if len(ownerOperators) == 0 {
			delete(topicOperators, message.From)
		}
	}

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationApproveAll,
		From:      message.From,
		Operator:  message.Operator,
		Memo:      message.Memo,
	})
}

func (indexer *CollectionIndexer) processBurn(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	serial, err := ParseSerial(message.Serial)
	if err != nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	collection, collectionExists := indexer.state.Collections[topicID]
	topicItems, itemsExist := indexer.state.Items[topicID]
	if !collectionExists || !itemsExist {
		return
	}
	item, exists := topicItems[serial]
	if !exists {
		return
	}

	if item.Owner != message.From {
		return
	}
	if !isPrivate && !isAuthorizedLocked(indexer.state, topicID, item, topicMessage.PayerAccountID) {
		return
	}

	topicBalances := indexer.getOrCreateBalancesLocked(topicID)
	topicBalances[item.Owner]--
	if topicBalances[item.Owner] <= 0 {
		delete(topicBalances, item.Owner)
	}

	// Burned serials are never reassigned; NextSerial keeps advancing.
	delete(topicItems, serial)
	collection.TotalSupply--
	collection.BurnedCount++
	indexer.state.Collections[topicID] = collection

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationBurn,
		Serial:    serial,
		From:      message.From,
		Memo:      message.Memo,
	})
}

func (indexer *CollectionIndexer) processUpdateURI(
	topicID string,
	topicMessage mirror.TopicMessage,
	message Message,
	isPrivate bool,
) {
	serial, err := ParseSerial(message.Serial)
	if err != nil {
		return
	}

	indexer.mutex.Lock()
	defer indexer.mutex.Unlock()

	collection, collectionExists := indexer.state.Collections[topicID]
	topicItems, itemsExist := indexer.state.Items[topicID]
	if !collectionExists || !itemsExist {
		return
	}
	item, exists := topicItems[serial]
	if !exists {
		return
	}

	if !isPrivate && topicMessage.PayerAccountID != collection.CreatorAccountID {
		return
	}

	item.TokenURI = message.TokenURI
	item.LastUpdated = topicMessage.ConsensusTimestamp
	topicItems[serial] = item

	indexer.recordTransactionLocked(topicID, topicMessage, ItemTransaction{
		Operation: OperationUpdateURI,
		Serial:    serial,
		TokenURI:  message.TokenURI,
		Memo:      message.Memo,
	})
}

// recordTransactionLocked appends an entry to the transaction log and
// advances the processed counters. The caller holds the write lock.
func (indexer *CollectionIndexer) recordTransactionLocked(
	topicID string,
	topicMessage mirror.TopicMessage,
	transaction ItemTransaction,
) {
	transaction.ID = transactionIDOrFallback(topicID, topicMessage)
	transaction.TopicID = topicID
	transaction.Timestamp = topicMessage.ConsensusTimestamp
	transaction.SequenceNumber = topicMessage.SequenceNumber
	transaction.TransactionID = topicMessage.ConsensusTimestamp
	indexer.state.Transactions = append(indexer.state.Transactions, transaction)

	indexer.state.LastProcessedSequence++
	indexer.state.LastProcessedTimestamp = topicMessage.ConsensusTimestamp
}

func (indexer *CollectionIndexer) getOrCreateItemsLocked(
	topicID string,
) map[int64]ItemInfo {
	topicItems, exists := indexer.state.Items[topicID]
	if !exists {
		topicItems = map[int64]ItemInfo{}
		indexer.state.Items[topicID] = topicItems
	}
	return topicItems
}

func (indexer *CollectionIndexer) getOrCreateBalancesLocked(
	topicID string,
) map[string]int64 {
	topicBalances, exists := indexer.state.Balances[topicID]
	if !exists {
		topicBalances = map[string]int64{}
		indexer.state.Balances[topicID] = topicBalances
	}
	return topicBalances
}

func (indexer *CollectionIndexer) getOrCreateOperatorsLocked(
	topicID string,
) map[string]map[string]bool {
	topicOperators, exists := indexer.state.Operators[topicID]
	if !exists {
		topicOperators = map[string]map[string]bool{}
		indexer.state.Operators[topicID] = topicOperators
	}
	return topicOperators
}

// isAuthorizedLocked reports whether payer may move or burn the item:
// the owner, the serial-approved account, or an approved operator.
func isAuthorizedLocked(state CollectionState, topicID string, item ItemInfo, payer string) bool {
	if payer == "" {
		return false
	}
	if payer == item.Owner {
		return true
	}
	if item.Approved != "" && payer == item.Approved {
		return true
	}
	return operatorApprovedLocked(state, topicID, item.Owner, payer)
}

func operatorApprovedLocked(state CollectionState, topicID string, owner string, operator string) bool {
	topicOperators, exists := state.Operators[topicID]
	if !exists {
		return false
	}
	ownerOperators, exists := topicOperators[owner]
	if !exists {
		return false
	}
	return ownerOperators[operator]
}

func transactionIDOrFallback(topicID string, topicMessage mirror.TopicMessage) string {
	if topicMessage.ConsensusTimestamp != "" {
		return topicMessage.ConsensusTimestamp
	}
	return fmt.Sprintf("%s-%d", topicID, topicMessage.SequenceNumber)
}
