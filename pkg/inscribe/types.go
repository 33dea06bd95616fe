package inscribe

import "github.com/hashgraph-online/hcs721-go/pkg/hcs721"

// Attribute is a single trait on a metadata document, in the shape game
// marketplaces expect: a trait name plus a string or numeric value.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Document is an ERC-721 style metadata document for a game item. Name is
// required; everything else is optional and omitted from the canonical
// payload when empty.
type Document struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	ExternalURL string         `json:"external_url,omitempty"`
	Attributes  []Attribute    `json:"attributes,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// chunkEnvelope is the wire form of one inscription chunk. Orders are
// 1-based; a reader reassembles by order and checks it saw Total chunks.
type chunkEnvelope struct {
	Order   int    `json:"o"`
	Content string `json:"c"`
	Total   int    `json:"t"`
}

// WriterConfig configures a Writer.
type WriterConfig struct {
	// Submitter carries chunk messages to consensus. Any
	// hcs721.MessageSubmitter works; a localnet.Node is the usual choice
	// during development.
	Submitter hcs721.MessageSubmitter
	// PayerAccountID is the default payer stamped on chunk submissions.
	PayerAccountID string
}

// InscribeOptions tunes a single Inscribe call.
type InscribeOptions struct {
	// TopicID reuses an existing content topic instead of creating one.
	TopicID string
	// PayerAccountID overrides the writer default for this inscription.
	PayerAccountID string
}

// InscriptionResult reports where inscribed content landed and how to
// verify it.
type InscriptionResult struct {
	TopicID         string
	HRL             string
	ContentID       string
	Chunks          int
	CanonicalBytes  int
	CompressedBytes int
	// TransactionID is the transaction that carried the final chunk; once
	// it reaches consensus the inscription is complete.
	TransactionID string
}

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	Network       string
	MirrorBaseURL string
}
