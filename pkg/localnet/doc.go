// Package localnet provides an in-process local test network for the
// HCS-721 SDK. A Node models the consensus slice the SDK touches — topic
// creation, ordered message submission, accounts, and transaction records —
// with deterministic entity IDs, sequence numbers, and consensus timestamps.
// A Server exposes the node over the mirror node REST API so the SDK's
// mirror client and indexer read local state the same way they read
// testnet or mainnet.
//
// The node implements hcs721.MessageSubmitter, so an hcs721.Client built
// with Network "local" and a Node submits collection operations without any
// Hedera infrastructure:
//
//	node := localnet.NewNode(localnet.NodeConfig{})
//	server, err := localnet.NewServer(localnet.ServerConfig{Node: node})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := server.Start("127.0.0.1:0"); err != nil {
//		log.Fatal(err)
//	}
//	defer server.Shutdown(context.Background())
//
//	client, err := hcs721.NewClient(hcs721.ClientConfig{
//		OperatorAccountID:  node.OperatorAccountID(),
//		OperatorPrivateKey: operatorKey,
//		Network:            "local",
//		MirrorBaseURL:      server.BaseURL(),
//		Submitter:          node,
//	})
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// This package is part of the HCS-721 Game Items SDK for Go.
// See https://hol.org for more information about the Hashgraph Online ecosystem.
package localnet
