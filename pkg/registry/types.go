package registry

// Operation enumerates the entry operations defined by the HCS-2 topic
// registry standard.
type Operation string

const (
	OperationRegister Operation = "register"
	OperationUpdate   Operation = "update"
	OperationDelete   Operation = "delete"
	OperationMigrate  Operation = "migrate"
)

// RegistryType selects how a registry topic is read back. The value is
// written into the topic memo at creation time.
type RegistryType int

const (
	// RegistryTypeIndexed registries keep their full entry history.
	RegistryTypeIndexed RegistryType = 0
	// RegistryTypeNonIndexed registries resolve to the latest entry only.
	RegistryTypeNonIndexed RegistryType = 1
)

// ClientConfig carries the operator credentials and network selection for
// a registry Client.
type ClientConfig struct {
	OperatorAccountID  string
	OperatorPrivateKey string
	Network            string
	MirrorBaseURL      string
	MirrorAPIKey       string
}

// Message is the JSON wire form of a registry entry.
type Message struct {
	P        string    `json:"p"`
	Op       Operation `json:"op"`
	TopicID  string    `json:"t_id,omitempty"`
	UID      string    `json:"uid,omitempty"`
	Metadata string    `json:"metadata,omitempty"`
	Memo     string    `json:"m,omitempty"`
	TTL      int64     `json:"ttl,omitempty"`
}

// OverflowMessage references a payload that exceeded the single-message
// size limit and was inscribed on a separate data topic.
type OverflowMessage struct {
	P             string    `json:"p"`
	Op            Operation `json:"op"`
	DataRef       string    `json:"d_ref"`
	DataRefDigest string    `json:"d_digest"`
}

// CreateRegistryOptions configures CreateRegistry. A zero RegistryType
// creates an indexed registry and a zero TTL falls back to the default.
type CreateRegistryOptions struct {
	RegistryType        RegistryType
	TTL                 int64
	UseOperatorAsAdmin  bool
	UseOperatorAsSubmit bool
	AdminKey            string
	SubmitKey           string
}

// AddCollectionOptions configures AddCollection. Protocol defaults to the
// registry wire protocol when empty.
type AddCollectionOptions struct {
	CollectionTopicID string
	Metadata          string
	Memo              string
	AnalyticsMemo     string
	Protocol          string
	RegistryType      *RegistryType
}

// UpdateCollectionOptions configures UpdateCollection. UID names the
// sequence number of the entry being replaced.
type UpdateCollectionOptions struct {
	CollectionTopicID string
	UID               string
	Metadata          string
	Memo              string
	AnalyticsMemo     string
	RegistryType      *RegistryType
}

// RemoveCollectionOptions configures RemoveCollection.
type RemoveCollectionOptions struct {
	UID           string
	Memo          string
	AnalyticsMemo string
	RegistryType  *RegistryType
}

// MigrateRegistryOptions configures MigrateRegistry. TargetTopicID is the
// successor registry topic.
type MigrateRegistryOptions struct {
	TargetTopicID string
	Metadata      string
	Memo          string
	AnalyticsMemo string
	RegistryType  *RegistryType
}

// ListCollectionsOptions pages through a registry topic. Skip is a
// sequence number lower bound, not an offset.
type ListCollectionsOptions struct {
	Limit int
	Order string
	Skip  int64
}

// CollectionEntry is a single registry entry pointing at a collection
// topic.
type CollectionEntry struct {
	RegistryTopicID    string       `json:"registry_topic_id"`
	Sequence           int64        `json:"sequence"`
	Payer              string       `json:"payer"`
	Message            Message      `json:"message"`
	ConsensusTimestamp string       `json:"consensus_timestamp"`
	RegistryType       RegistryType `json:"registry_type"`
}

// CollectionRegistry is the decoded contents of a registry topic.
type CollectionRegistry struct {
	TopicID      string            `json:"topic_id"`
	RegistryType RegistryType      `json:"registry_type"`
	TTL          int64             `json:"ttl"`
	Entries      []CollectionEntry `json:"entries"`
	LatestEntry  *CollectionEntry  `json:"latest_entry,omitempty"`
}

// CreateRegistryResult reports the outcome of a registry topic creation.
type CreateRegistryResult struct {
	Success       bool   `json:"success"`
	TopicID       string `json:"topic_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// OperationResult reports the outcome of a registry entry submission.
type OperationResult struct {
	Success        bool   `json:"success"`
	TransactionID  string `json:"transaction_id,omitempty"`
	Error          string `json:"error,omitempty"`
	SequenceNumber int64  `json:"sequence_number,omitempty"`
}
