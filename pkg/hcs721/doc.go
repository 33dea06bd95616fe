// Package hcs721 implements the HCS-721 Game Items standard for Hedera
// Consensus Service topics. It provides message validation, transaction
// builders, a submission client, a mirror-driven indexer that derives
// item ownership from consensus order, and Merkle state roots with
// per-item inclusion proofs.
//
// Each collection lives on its own topic. A deploy message names the
// collection, mint messages assign serials in consensus order starting at
// 1, and transfer, approve, approve_all, burn, and update_uri messages
// move items between accounts under ERC-721 authorization rules. The
// indexer replays a topic deterministically, so every observer derives
// the same owner for every serial.
//
// # Specification
//
// Full specification: https://hol.org/docs/standards/hcs-721
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// # Build and Submit HCS-721 Messages
//
// Build deploy/mint/transfer/burn payload transactions:
//
//	tx, err := hcs721.BuildHCS721MintTx(hcs721.MintTxParams{
//		TopicID:  "0.0.12345",
//		To:       "0.0.2002",
//		TokenURI: "https://game.example/item-id-8u5h2m.json",
//	})
//
// # Client Usage
//
// Create a client, deploy a collection, and mint the first item:
//
//	client, err := hcs721.NewClient(hcs721.ClientConfig{
//		OperatorAccountID:  "0.0.1234",
//		OperatorPrivateKey: "<private-key>",
//		Network:            "testnet",
//	})
//
//	collection, err := client.DeployCollection(context.Background(), hcs721.DeployCollectionOptions{
//		Name:   "Game Items",
//		Symbol: "ITM",
//	})
//
//	minted, err := client.MintItem(context.Background(), hcs721.MintItemOptions{
//		TopicID:  collection.TopicID,
//		To:       "0.0.2002",
//		TokenURI: "https://game.example/item-id-8u5h2m.json",
//	})
//
// MintItem reports the serial the mint received once the message reaches
// consensus; serials are never chosen by the submitter.
//
// # Reading State
//
// Index a collection topic and query ownership:
//
//	indexer, err := hcs721.NewCollectionIndexer(hcs721.IndexerConfig{Network: "testnet"})
//	err = indexer.IndexOnce(context.Background(), hcs721.IndexOptions{
//		CollectionTopics: []string{collection.TopicID},
//	})
//	owner, err := indexer.OwnerOf(collection.TopicID, 1)
package hcs721
