package registry

import (
	"fmt"
	"regexp"
	"strings"
)

// maxEntryMemoLength caps the free-form memo field on registry entries.
const maxEntryMemoLength = 500

var (
	topicIDFormat  = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	protocolFormat = regexp.MustCompile(`^hcs-\d+$`)
)

// ValidateMessage checks a registry message against the HCS-2 wire rules
// before it is submitted or indexed.
func ValidateMessage(message Message) error {
	if !protocolFormat.MatchString(message.P) {
		return fmt.Errorf("protocol must be in format hcs-N")
	}

	switch message.Op {
	case OperationRegister:
		if !validEntryTopicID(message.TopicID) {
			return fmt.Errorf("register requires valid t_id")
		}
	case OperationUpdate:
		if strings.TrimSpace(message.UID) == "" {
			return fmt.Errorf("update requires uid")
		}
		if !validEntryTopicID(message.TopicID) {
			return fmt.Errorf("update requires valid t_id")
		}
	case OperationDelete:
		if strings.TrimSpace(message.UID) == "" {
			return fmt.Errorf("delete requires uid")
		}
	case OperationMigrate:
		if !validEntryTopicID(message.TopicID) {
			return fmt.Errorf("migrate requires valid t_id")
		}
	default:
		return fmt.Errorf("operation %q is not supported", message.Op)
	}

	if len(message.Memo) > maxEntryMemoLength {
		return fmt.Errorf("memo must not exceed %d characters", maxEntryMemoLength)
	}
	if message.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative")
	}

	return nil
}

func validEntryTopicID(raw string) bool {
	return topicIDFormat.MatchString(strings.TrimSpace(raw))
}
