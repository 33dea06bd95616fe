// The HCS-721 Game Items SDK for Go is the official Go implementation of
// the HCS-721 standard: ERC-721 style game items as consensus-ordered JSON
// messages on Hedera Consensus Service topics. It provides packages for
// deploying collections, minting and transferring items, replaying topic
// history into a deterministic ownership state, and running the whole
// walkthrough against an in-process local network.
//
// # Packages
//
//   - pkg/hcs721: wire protocol, client, transaction builders, and the
//     collection indexer with Merkle state roots
//   - pkg/registry: collection discovery topics
//   - pkg/mirror: Hedera mirror node REST client
//   - pkg/inscribe: on-ledger metadata documents behind hcs://721 locators
//   - pkg/feed: live item events from a hosted indexer gateway
//   - pkg/deploy: manifest-driven deployment runner
//   - pkg/localnet: in-process consensus node and mirror server
//
// # Documentation
//
// Full SDK documentation: https://hol.org/docs/libraries/standards-sdk/
//
// HCS-721 specification: https://hol.org/docs/standards/hcs-721
//
// Hashgraph Online ecosystem: https://hol.org
//
// # Installation
//
//	go get github.com/hashgraph-online/hcs721-go@latest
package hcs721_go
