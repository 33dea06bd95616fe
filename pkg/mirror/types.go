package mirror

// TopicInfo is the mirror node record for a consensus topic. Memo carries
// the topic's registration string, such as an hcs-721 collection memo.
type TopicInfo struct {
	TopicID          string           `json:"topic_id"`
	Memo             string           `json:"memo"`
	Deleted          bool             `json:"deleted"`
	CreatedTimestamp string           `json:"created_timestamp"`
	AdminKey         map[string]any   `json:"admin_key"`
	SubmitKey        map[string]any   `json:"submit_key"`
	FeeScheduleKey   map[string]any   `json:"fee_schedule_key"`
	FeeExemptKeyList []map[string]any `json:"fee_exempt_key_list"`
	AutoRenewAccount string           `json:"auto_renew_account"`
	AutoRenewPeriod  int64            `json:"auto_renew_period"`
}

// TopicMessage is one consensus-ordered message on a topic. Message holds
// the payload as base64; DecodeMessageData and DecodeMessageJSON unpack it.
type TopicMessage struct {
	SequenceNumber     int64      `json:"sequence_number"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	TopicID            string     `json:"topic_id"`
	Message            string     `json:"message"`
	PayerAccountID     string     `json:"payer_account_id"`
	RunningHash        string     `json:"running_hash"`
	RunningHashVersion int64      `json:"running_hash_version"`
	ChunkInfo          *ChunkInfo `json:"chunk_info,omitempty"`
}

// ChunkInfo is present on messages that were split across submissions.
type ChunkInfo struct {
	InitialTransactionID any `json:"initial_transaction_id,omitempty"`
	Number               int `json:"number,omitempty"`
	Total                int `json:"total,omitempty"`
}

// AccountInfo is the mirror node record for a ledger account. Balance is nil
// when the queried endpoint does not include a balance snapshot.
type AccountInfo struct {
	Account    string          `json:"account"`
	Balance    *AccountBalance `json:"balance,omitempty"`
	EVMAddress string          `json:"evm_address"`
	Key        map[string]any  `json:"key"`
	Memo       string          `json:"memo"`
}

// AccountBalance reports an account balance in tinybars.
type AccountBalance struct {
	Balance   int64  `json:"balance"`
	Timestamp string `json:"timestamp"`
}

// Transaction is the mirror node record of a submitted transaction.
// EntityID names the entity the transaction created, when it created one.
type Transaction struct {
	TransactionID      string     `json:"transaction_id"`
	Name               string     `json:"name"`
	Result             string     `json:"result"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	EntityID           *string    `json:"entity_id"`
	MemoBase64         string     `json:"memo_base64"`
	Node               string     `json:"node"`
	MaxFee             string     `json:"max_fee"`
	ChargedTxFee       int64      `json:"charged_tx_fee"`
	Transfers          []Transfer `json:"transfers"`
}

// Transfer is a single balance movement within a transaction.
type Transfer struct {
	Account    string `json:"account"`
	Amount     int64  `json:"amount"`
	IsApproval bool   `json:"is_approval"`
}

type pageLinks struct {
	Next string `json:"next"`
}

type messagesPage struct {
	Messages []TopicMessage `json:"messages"`
	Links    pageLinks      `json:"links"`
}

type transactionsPage struct {
	Transactions []Transaction `json:"transactions"`
	Links        pageLinks     `json:"links"`
}
