package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	socketio "github.com/zhouhui8915/go-socket.io-client"
)

const defaultInactivityTimeoutMs = 30000

// Config configures a Watcher.
type Config struct {
	// GatewayURL is the socket.io endpoint of a hosted indexer gateway.
	GatewayURL string
	// APIKey authenticates against gateways that require one.
	APIKey string
	// CollectionTopicID limits events to one collection. Empty watches
	// every collection the gateway emits.
	CollectionTopicID string
	// InactivityTimeoutMs aborts a wait when the gateway goes quiet.
	// Defaults to 30000.
	InactivityTimeoutMs int
}

// Watcher subscribes to live item events from an indexer gateway.
type Watcher struct {
	gatewayURL          string
	apiKey              string
	collectionTopicID   string
	inactivityTimeoutMs int
}

// NewWatcher creates a new Watcher.
func NewWatcher(config Config) (*Watcher, error) {
	gatewayURL := strings.TrimSpace(config.GatewayURL)
	if gatewayURL == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	parsed, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL: %w", err)
	}
	if parsed.Scheme == "" || strings.TrimSpace(parsed.Host) == "" {
		return nil, fmt.Errorf("invalid gateway URL: scheme and host are required")
	}

	return &Watcher{
		gatewayURL:          gatewayURL,
		apiKey:              strings.TrimSpace(config.APIKey),
		collectionTopicID:   strings.TrimSpace(config.CollectionTopicID),
		inactivityTimeoutMs: config.InactivityTimeoutMs,
	}, nil
}

// WaitOptions filters WaitForEvent. Zero values match everything.
type WaitOptions struct {
	// Kinds restricts which event streams are subscribed. Empty
	// subscribes to mint, transfer, and burn.
	Kinds []EventKind
	// Serial waits for one specific serial.
	Serial int64
	// To waits for events delivering to one account.
	To string
	// From waits for events leaving one account.
	From string
}

// WaitForMint blocks until the gateway reports a mint on the watched
// collection, or the wait times out. Serial 0 accepts any mint.
func (w *Watcher) WaitForMint(ctx context.Context, serial int64) (Event, error) {
	return w.WaitForEvent(ctx, WaitOptions{
		Kinds:  []EventKind{EventItemMinted},
		Serial: serial,
	})
}

// WaitForEvent blocks until an event passes the options filter, the
// inactivity timeout elapses, or ctx ends.
func (w *Watcher) WaitForEvent(ctx context.Context, options WaitOptions) (Event, error) {
	client, err := socketio.NewClient(w.gatewayURL, &socketio.Options{
		Transport: "websocket",
		Query: map[string]string{
			"apiKey": w.apiKey,
		},
		Header: map[string][]string{
			"x-api-key": {w.apiKey},
		},
	})
	if err != nil {
		return Event{}, err
	}

	kinds := options.Kinds
	if len(kinds) == 0 {
		kinds = []EventKind{EventItemMinted, EventItemTransferred, EventItemBurned}
	}

	eventChannel := make(chan Event, 8)
	errorChannel := make(chan string, 2)

	_ = client.On("error", func(message any) {
		errorChannel <- fmt.Sprintf("%v", message)
	})
	for _, kind := range kinds {
		eventKind := kind
		_ = client.On(string(eventKind), func(payload map[string]any) {
			if !matchesCollection(w.collectionTopicID, payload) {
				return
			}
			eventChannel <- parseItemEvent(eventKind, payload)
		})
	}

	inactivityTimeout := w.inactivityTimeoutMs
	if inactivityTimeout <= 0 {
		inactivityTimeout = defaultInactivityTimeoutMs
	}
	timer := time.NewTimer(time.Duration(inactivityTimeout) * time.Millisecond)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-timer.C:
			return Event{}, fmt.Errorf("event feed timeout")
		case message := <-errorChannel:
			return Event{}, fmt.Errorf("%s", message)
		case event := <-eventChannel:
			timer.Reset(time.Duration(inactivityTimeout) * time.Millisecond)

			if !matchesWaitOptions(event, options) {
				continue
			}
			return event, nil
		}
	}
}

func matchesWaitOptions(event Event, options WaitOptions) bool {
	if options.Serial > 0 && event.Serial != options.Serial {
		return false
	}
	if options.To != "" && !strings.EqualFold(event.To, options.To) {
		return false
	}
	if options.From != "" && !strings.EqualFold(event.From, options.From) {
		return false
	}
	return true
}
