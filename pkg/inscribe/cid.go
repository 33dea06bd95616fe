package inscribe

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ContentID returns the CIDv1 (raw codec, sha2-256) of payload. The same
// bytes always hash to the same content ID, so a reader can check what it
// fetched without trusting the topic it fetched from.
func ContentID(payload []byte) (string, error) {
	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// VerifyContent checks that payload hashes to wantContentID.
func VerifyContent(payload []byte, wantContentID string) error {
	expected, err := cid.Decode(strings.TrimSpace(wantContentID))
	if err != nil {
		return fmt.Errorf("invalid content ID %q: %w", wantContentID, err)
	}

	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return fmt.Errorf("failed to hash content: %w", err)
	}

	actual := cid.NewCidV1(cid.Raw, sum)
	if !actual.Equals(expected) {
		return fmt.Errorf(
			"content ID mismatch: payload hashes to %s, expected %s",
			actual.String(), expected.String(),
		)
	}

	return nil
}
