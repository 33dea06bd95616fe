package feed

import (
	"strconv"
	"strings"
)

// EventKind names a gateway event stream.
type EventKind string

const (
	EventItemMinted      EventKind = "item-minted"
	EventItemTransferred EventKind = "item-transferred"
	EventItemBurned      EventKind = "item-burned"
)

// Event is one parsed collection event. Payload keeps the raw gateway
// fields for callers that need more than the common ones.
type Event struct {
	Kind          EventKind
	TopicID       string
	Serial        int64
	From          string
	To            string
	TokenURI      string
	TransactionID string
	Payload       map[string]any
}

// parseItemEvent lifts the common fields out of a gateway payload.
// Gateways emit the wire keys (t_id, sn, to, from, uri, tx_id); camel
// case fallbacks cover older deployments.
func parseItemEvent(kind EventKind, payload map[string]any) Event {
	return Event{
		Kind:          kind,
		TopicID:       firstNonEmptyString(payload, "t_id", "topicId", "topic_id"),
		Serial:        parseSerial(payload["sn"], payload["serial"], payload["serialNumber"]),
		From:          firstNonEmptyString(payload, "from"),
		To:            firstNonEmptyString(payload, "to"),
		TokenURI:      firstNonEmptyString(payload, "uri", "tokenUri", "token_uri"),
		TransactionID: firstNonEmptyString(payload, "tx_id", "transactionId"),
		Payload:       payload,
	}
}

// matchesCollection reports whether payload belongs to collectionTopicID.
// An empty collection matches every event.
func matchesCollection(collectionTopicID string, payload map[string]any) bool {
	if collectionTopicID == "" {
		return true
	}

	for _, key := range []string{"t_id", "topicId", "topic_id"} {
		value := strings.TrimSpace(parseString(payload[key]))
		if value == "" {
			continue
		}
		if value == collectionTopicID {
			return true
		}
	}
	return false
}

func parseString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

// parseSerial returns the first value that parses as a positive serial.
func parseSerial(values ...any) int64 {
	for _, value := range values {
		var serial int64
		switch typed := value.(type) {
		case float64:
			serial = int64(typed)
		case int64:
			serial = typed
		case int:
			serial = int64(typed)
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
			if err != nil {
				continue
			}
			serial = parsed
		default:
			continue
		}

		if serial > 0 {
			return serial
		}
	}
	return 0
}

func firstNonEmptyString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(parseString(payload[key])); value != "" {
			return value
		}
	}
	return ""
}
