// Package mirror provides a Hedera Mirror Node client used by the HCS-721
// and registry packages in the HCS-721 Game Items SDK. It handles topic
// info lookups, message retrieval, account queries, and consensus data
// queries against the Hedera mirror node REST API.
//
// The mirror node provides a read-only view of the Hedera public ledger,
// enabling applications to query historical transactions, topic messages,
// and account state without submitting transactions to the network. For
// local development the client can point at the REST API of a hedera
// local node, or at the in-process mirror served by the localnet package.
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// # Hedera Mirror Node
//
// Learn more about Hedera: https://docs.hedera.com
//
// This package is part of the HCS-721 Game Items SDK for Go.
// See https://hol.org for more information about the Hashgraph Online ecosystem.
package mirror
