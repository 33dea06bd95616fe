// Package registry manages collection registry topics for the HCS-721
// Game Items SDK. A registry is an HCS-2 topic whose entries point at
// collection topics, giving indexers a single place to discover every
// collection a project has deployed.
//
// The package provides registry topic creation, transaction builders for
// the register, update, delete, and migrate operations, memo helpers, and
// mirror-node reads that decode a registry back into its entries. Indexed
// registries keep their full history; non-indexed registries resolve to
// the latest entry only.
//
// # Specification
//
// Registry topics follow the HCS-2 Topic Registry standard:
// https://hol.org/docs/standards/hcs-2
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// # Getting Started
//
// Create a registry client and initialize an indexed registry:
//
//	client, err := registry.NewClient(registry.ClientConfig{
//		OperatorAccountID:  "0.0.1234",
//		OperatorPrivateKey: "<private-key>",
//		Network:            "testnet",
//	})
//
//	result, err := client.CreateRegistry(ctx, registry.CreateRegistryOptions{
//		RegistryType:        registry.RegistryTypeIndexed,
//		TTL:                 86400,
//		UseOperatorAsAdmin:  true,
//		UseOperatorAsSubmit: true,
//	})
//
// Register a deployed collection so indexers can find it:
//
//	_, err = client.AddCollection(ctx, result.TopicID, registry.AddCollectionOptions{
//		CollectionTopicID: "0.0.5005",
//		Metadata:          "hcs://1/0.0.5005",
//	})
//
// This package is part of the HCS-721 Game Items SDK for Go.
// See https://hol.org for more information about the Hashgraph Online ecosystem.
package registry
