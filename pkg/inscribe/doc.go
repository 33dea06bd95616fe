// Package inscribe stores ERC-721 style metadata documents directly on
// Hedera Consensus Service topics, so a mint's token URI can point at
// permanent on-ledger content instead of an HTTP server.
//
// A Writer canonicalizes the document (sorted keys, stable number text),
// derives a CIDv1 content ID from the canonical bytes, brotli-compresses
// the payload, and submits it as ordered base64 chunks that each fit in a
// single consensus message. The resulting hcs://721/<topicId> locator is
// what goes into the mint. A Reader walks the topic back through a mirror
// node, reassembles and decompresses the chunks, and verifies the content
// ID before handing the document back.
//
// # Specification
//
// Full specification: https://hol.org/docs/standards/hcs-721
//
// # Inscribe and Resolve
//
// Write a document against a localnet node, then resolve its locator:
//
//	writer, err := inscribe.NewWriter(inscribe.WriterConfig{
//		Submitter:      node,
//		PayerAccountID: node.OperatorAccountID(),
//	})
//
//	result, err := writer.Inscribe(context.Background(), inscribe.Document{
//		Name:  "Emberfall Blade",
//		Image: "hcs://721/0.0.5005",
//		Attributes: []inscribe.Attribute{
//			{TraitType: "rarity", Value: "legendary"},
//		},
//	}, inscribe.InscribeOptions{})
//
//	reader, err := inscribe.NewReader(inscribe.ReaderConfig{
//		Network:       "local",
//		MirrorBaseURL: server.BaseURL(),
//	})
//	document, contentID, err := reader.Fetch(context.Background(), result.HRL)
//
// The content ID returned by Fetch always matches result.ContentID when
// the payload survived intact.
package inscribe
