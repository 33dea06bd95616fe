package inscribe

import (
	"fmt"
	"regexp"
	"strings"
)

var hrlPattern = regexp.MustCompile(`^hcs://721/(\d+\.\d+\.\d+)$`)

// BuildHRL returns the hcs://721/<topicId> locator for an inscribed
// content topic. The locator is what goes into a mint's token URI when
// metadata lives on-ledger.
func BuildHRL(topicID string) string {
	return "hcs://721/" + strings.TrimSpace(topicID)
}

// ParseHRL extracts the topic ID from an hcs://721 locator.
func ParseHRL(hrl string) (string, error) {
	matches := hrlPattern.FindStringSubmatch(strings.TrimSpace(hrl))
	if len(matches) != 2 {
		return "", fmt.Errorf("invalid content locator %q", hrl)
	}
	return matches[1], nil
}

// IsHRL reports whether value looks like an hcs://721 locator.
func IsHRL(value string) bool {
	return hrlPattern.MatchString(strings.TrimSpace(value))
}
