// Package feed subscribes to live HCS-721 item events from a hosted
// indexer gateway over socket.io. A Watcher filters item-minted,
// item-transferred, and item-burned events down to one collection and
// blocks until a matching event arrives or the feed goes quiet.
//
// # SDK Documentation
//
// SDK documentation and guides: https://hol.org/docs/libraries/standards-sdk/
//
// # Wait for a Mint
//
//	watcher, err := feed.NewWatcher(feed.Config{
//		GatewayURL:        "https://gateway.example",
//		CollectionTopicID: "0.0.12345",
//	})
//
//	event, err := watcher.WaitForMint(context.Background(), 0)
//	// event.Serial and event.To describe the mint that landed.
//
// Waits end with an error when the gateway reports one, when the
// inactivity timeout passes without a matching event, or when the
// context is canceled.
package feed
