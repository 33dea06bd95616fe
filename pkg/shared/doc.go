// Package shared provides common utilities used across the HCS-721 Game Items
// SDK for Go. It includes network normalization (mainnet, testnet, and the
// in-process local network), operator environment variable loading, Hedera
// client construction, key parsing helpers, and EVM address derivation for
// secp256k1 key material.
//
// This package is typically used internally by other SDK packages but is
// also available for direct use when building custom integrations with the
// Hedera public ledger.
//
// # Environment Variables
//
// The shared package supports loading operator credentials from environment
// variables or .env files. Local runs fall back to the Hedera local-node
// genesis operator when no credentials are configured. See the SDK README
// for the full list of supported variable names.
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// This package is part of the HCS-721 Game Items SDK for Go.
// See https://hol.org for more information about the Hashgraph Online ecosystem.
package shared
