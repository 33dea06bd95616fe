// Package deploy provides the HCS-721 deployment runner: a manifest-driven
// walkthrough that connects to a network, creates a collection topic,
// publishes the deploy message, optionally announces the collection on a
// registry, and mints the manifest's premint items in order, logging each
// assigned serial.
//
// A YAML manifest selects the network and pins the protocol revision:
//
//	network: local
//	standardRevision: "1"
//	collection:
//	  name: Game Items
//	  symbol: ITM
//	  maxSupply: 100
//	  baseUri: https://game.example/items/
//	premint:
//	  - uri: https://game.example/item-id-8u5h2m.json
//
// Premint items may omit uri when the collection sets baseUri; the state
// machine derives one from the assigned serial.
//
//	manifest, err := deploy.LoadManifest("deploy.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	runner, err := deploy.NewRunner(deploy.RunnerConfig{Manifest: manifest})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := runner.Run(context.Background())
//
// Runs are strictly sequential: the first failing step aborts the run and
// the error reports which step failed. Local runs embed a localnet node and
// mirror server, so the walkthrough executes without any Hedera
// infrastructure.
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// This package is part of the HCS-721 Game Items SDK for Go.
// See https://hol.org for more information about the Hashgraph Online ecosystem.
package deploy
