package hcs721

import (
	"regexp"
	"time"
)

const (
	ProtocolID = "hcs-721"

	OperationDeploy     = "deploy"
	OperationMint       = "mint"
	OperationTransfer   = "transfer"
	OperationApprove    = "approve"
	OperationApproveAll = "approve_all"
	OperationBurn       = "burn"
	OperationUpdateURI  = "update_uri"
	OperationRegister   = "register"

	DefaultRegistryTopicID = "0.0.6547820"

	// Serials start at one and are assigned in consensus order.
	FirstSerial = int64(1)

	MaxSerialLength   = 18
	MaxNameLength     = 100
	MaxSymbolLength   = 10
	MaxTokenURILength = 500
	MaxMetadataLength = 100
	MaxMemoLength     = 500
)

var (
	hederaEntityRegex = regexp.MustCompile(`^(0|(?:[1-9]\d*))\.(0|(?:[1-9]\d*))\.(0|(?:[1-9]\d*))(?:-([a-z]{5}))?$`)
	serialRegex       = regexp.MustCompile(`^\d+$`)
	symbolRegex       = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// Message is the JSON wire form of every HCS-721 operation. One struct
// covers all eight operations; ValidateMessage enforces which fields an
// operation requires and NormalizeMessage canonicalizes them.
type Message struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`

	Name      string `json:"name,omitempty"`
	Symbol    string `json:"sym,omitempty"`
	MaxSupply string `json:"max,omitempty"`
	BaseURI   string `json:"base_uri,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
	Memo      string `json:"m,omitempty"`

	Serial   string `json:"sn,omitempty"`
	TokenURI string `json:"uri,omitempty"`
	To       string `json:"to,omitempty"`
	From     string `json:"from,omitempty"`
	Operator string `json:"operator,omitempty"`
	Approved *bool  `json:"approved,omitempty"`

	Private *bool  `json:"private,omitempty"`
	TopicID string `json:"t_id,omitempty"`
}

// Typed shapes for individual operations. The SDK itself works with the
// combined Message form; these are for callers that marshal or decode one
// operation at a time.
type DeployMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Name      string `json:"name"`
	Symbol    string `json:"sym"`
	MaxSupply string `json:"max,omitempty"`
	BaseURI   string `json:"base_uri,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
	Memo      string `json:"m,omitempty"`
}

type MintMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	To        string `json:"to"`
	TokenURI  string `json:"uri"`
	Memo      string `json:"m,omitempty"`
}

type TransferMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Serial    string `json:"sn"`
	From      string `json:"from"`
	To        string `json:"to"`
	Memo      string `json:"m,omitempty"`
}

type ApproveMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Serial    string `json:"sn"`
	To        string `json:"to,omitempty"`
	Memo      string `json:"m,omitempty"`
}

type ApproveAllMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	From      string `json:"from"`
	Operator  string `json:"operator"`
	Approved  bool   `json:"approved"`
	Memo      string `json:"m,omitempty"`
}

type BurnMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Serial    string `json:"sn"`
	From      string `json:"from"`
	Memo      string `json:"m,omitempty"`
}

type UpdateURIMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Serial    string `json:"sn"`
	TokenURI  string `json:"uri"`
	Memo      string `json:"m,omitempty"`
}

// RegisterMessage is the registry entry that announces a collection topic
// for indexer discovery.
type RegisterMessage struct {
	Protocol  string `json:"p"`
	Operation string `json:"op"`
	Name      string `json:"name"`
	Metadata  string `json:"metadata,omitempty"`
	Private   bool   `json:"private"`
	TopicID   string `json:"t_id"`
	Memo      string `json:"m,omitempty"`
}

// ClientConfig carries the operator credentials, network selection and
// registry binding for a Client. Submitter, when set, routes topic
// creation and message submission through an external signer instead of
// the operator key.
type ClientConfig struct {
	OperatorAccountID  string
	OperatorPrivateKey string
	Network            string
	MirrorBaseURL      string
	MirrorAPIKey       string
	RegistryTopicID    string
	Submitter          MessageSubmitter
}

// CreateTopicOptions configures the bare consensus topic a collection is
// deployed onto. Admin and submit keys may be passed explicitly or copied
// from the operator.
type CreateTopicOptions struct {
	Memo                string
	AdminKey            string
	SubmitKey           string
	UseOperatorAsAdmin  bool
	UseOperatorAsSubmit bool
}

type DeployCollectionProgress struct {
	Stage      string
	Percentage int
	TopicID    string
	DeployTxID string
	Error      string
}

type DeployCollectionOptions struct {
	Name               string
	Symbol             string
	MaxSupply          int64
	BaseURI            string
	Metadata           string
	Memo               string
	TTL                int64
	UsePrivateTopic    bool
	AdminKey           string
	SubmitKey          string
	DisableMirrorCheck bool
	ProgressCallback   func(DeployCollectionProgress)
}

type MintItemProgress struct {
	Stage      string
	Percentage int
	MintTxID   string
	Serial     int64
	Error      string
}

type MintItemOptions struct {
	TopicID            string
	To                 string
	TokenURI           string
	Memo               string
	PrivateTopic       bool
	DisableMirrorCheck bool
	ProgressCallback   func(MintItemProgress)
}

type TransferItemProgress struct {
	Stage        string
	Percentage   int
	TransferTxID string
	Error        string
}

type TransferItemOptions struct {
	TopicID            string
	Serial             int64
	From               string
	To                 string
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(TransferItemProgress)
}

type ApproveProgress struct {
	Stage        string
	Percentage   int
	ApprovalTxID string
	Error        string
}

type ApproveOptions struct {
	TopicID            string
	Serial             int64
	To                 string
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(ApproveProgress)
}

type SetApprovalForAllOptions struct {
	TopicID            string
	Owner              string
	Operator           string
	Approved           bool
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(ApproveProgress)
}

type BurnItemProgress struct {
	Stage      string
	Percentage int
	BurnTxID   string
	Error      string
}

type BurnItemOptions struct {
	TopicID            string
	Serial             int64
	From               string
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(BurnItemProgress)
}

type UpdateURIProgress struct {
	Stage      string
	Percentage int
	UpdateTxID string
	Error      string
}

type UpdateItemURIOptions struct {
	TopicID            string
	Serial             int64
	TokenURI           string
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(UpdateURIProgress)
}

type RegisterCollectionProgress struct {
	Stage        string
	Percentage   int
	RegisterTxID string
	Error        string
}

type RegisterCollectionOptions struct {
	TopicID            string
	Name               string
	Metadata           string
	IsPrivate          bool
	Memo               string
	DisableMirrorCheck bool
	ProgressCallback   func(RegisterCollectionProgress)
}

// CollectionInfo is the indexed view of a deployed collection.
type CollectionInfo struct {
	Name                string `json:"name"`
	Symbol              string `json:"symbol"`
	MaxSupply           int64  `json:"maxSupply,omitempty"`
	BaseURI             string `json:"baseUri,omitempty"`
	Metadata            string `json:"metadata,omitempty"`
	TopicID             string `json:"topicId"`
	CreatorAccountID    string `json:"creatorAccountId"`
	NextSerial          int64  `json:"nextSerial"`
	TotalSupply         int64  `json:"totalSupply"`
	BurnedCount         int64  `json:"burnedCount"`
	DeploymentTimestamp string `json:"deploymentTimestamp"`
	IsPrivate           bool   `json:"isPrivate"`
}

// ItemInfo is the indexed view of a single minted item.
type ItemInfo struct {
	TopicID     string `json:"topicId"`
	Serial      int64  `json:"serial"`
	Owner       string `json:"owner"`
	Approved    string `json:"approved,omitempty"`
	TokenURI    string `json:"tokenUri"`
	MintedAt    string `json:"mintedAt"`
	LastUpdated string `json:"lastUpdated"`
}

// ItemTransaction is one applied operation in a collection's history.
type ItemTransaction struct {
	ID             string `json:"id"`
	Operation      string `json:"operation"`
	Serial         int64  `json:"serial,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	Operator       string `json:"operator,omitempty"`
	TokenURI       string `json:"tokenUri,omitempty"`
	Timestamp      string `json:"timestamp"`
	SequenceNumber int64  `json:"sequenceNumber"`
	TopicID        string `json:"topicId"`
	TransactionID  string `json:"transactionId"`
	Memo           string `json:"memo,omitempty"`
}

// OperationResult reports where a submitted operation landed: the topic,
// the transaction that carried it and the assigned consensus placement.
type OperationResult struct {
	TopicID        string
	TransactionID  string
	SequenceNumber int64
	ConsensusAt    time.Time
}

// CollectionState is the indexer read model across every indexed
// collection. Items, Balances and Operators key by collection topic ID
// first.
type CollectionState struct {
	Collections            map[string]CollectionInfo
	Items                  map[string]map[int64]ItemInfo
	Balances               map[string]map[string]int64
	Operators              map[string]map[string]map[string]bool
	Transactions           []ItemTransaction
	LastProcessedSequence  int64
	LastProcessedTimestamp string
}

// IndexerConfig selects the mirror node a CollectionIndexer reads from.
type IndexerConfig struct {
	Network       string
	MirrorBaseURL string
	MirrorAPIKey  string
}

// IndexOptions names the topics one indexing pass covers. When
// IncludeRegistryTopic is set, collections announced in the registry are
// discovered and indexed alongside the explicit topic lists.
type IndexOptions struct {
	RegistryTopicID      string
	IncludeRegistryTopic bool
	CollectionTopics     []string
	PrivateTopics        []string
}
