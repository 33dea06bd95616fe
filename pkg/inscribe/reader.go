package inscribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/hashgraph-online/hcs721-go/pkg/mirror"
)

// Reader resolves hcs://721 locators back into metadata documents.
type Reader struct {
	mirrorClient *mirror.Client
}

// NewReader creates a new Reader.
func NewReader(config ReaderConfig) (*Reader, error) {
	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: config.Network,
		BaseURL: config.MirrorBaseURL,
	})
	if err != nil {
		return nil, err
	}

	return &Reader{mirrorClient: mirrorClient}, nil
}

// Fetch resolves an hcs://721 locator into the document it holds, along
// with the content ID of the fetched bytes.
func (r *Reader) Fetch(ctx context.Context, hrl string) (*Document, string, error) {
	payload, contentID, err := r.FetchBytes(ctx, hrl)
	if err != nil {
		return nil, "", err
	}

	var document Document
	if err := json.Unmarshal(payload, &document); err != nil {
		return nil, "", fmt.Errorf(
			"inscribed content at %s is not a metadata document: %w", hrl, err,
		)
	}

	return &document, contentID, nil
}

// FetchBytes resolves an hcs://721 locator and returns the decompressed
// canonical payload plus its content ID. When the content topic's memo
// pins a content ID, the payload is verified against it.
func (r *Reader) FetchBytes(ctx context.Context, hrl string) ([]byte, string, error) {
	topicID, err := ParseHRL(hrl)
	if err != nil {
		return nil, "", err
	}

	topicMessages, err := r.mirrorClient.GetTopicMessages(ctx, topicID, mirror.MessageQueryOptions{
		Order: "asc",
	})
	if err != nil {
		return nil, "", err
	}

	chunks := make(map[int]string, len(topicMessages))
	total := 0
	for _, topicMessage := range topicMessages {
		payload, decodeErr := mirror.DecodeMessageData(topicMessage)
		if decodeErr != nil {
			continue
		}

		var envelope chunkEnvelope
		if json.Unmarshal(payload, &envelope) != nil {
			continue
		}
		if envelope.Order <= 0 || envelope.Total <= 0 {
			continue
		}

		if total == 0 {
			total = envelope.Total
		}
		if envelope.Total != total {
			continue
		}
		// Consensus order wins on duplicate chunk orders.
		if _, exists := chunks[envelope.Order]; exists {
			continue
		}
		chunks[envelope.Order] = envelope.Content
	}

	if total == 0 {
		return nil, "", fmt.Errorf("no inscribed content found at %s", hrl)
	}
	if len(chunks) < total {
		return nil, "", fmt.Errorf(
			"inscribed content at %s incomplete: expected %d chunks, found %d",
			hrl, total, len(chunks),
		)
	}

	var encoded strings.Builder
	for order := 1; order <= total; order++ {
		chunk, ok := chunks[order]
		if !ok {
			return nil, "", fmt.Errorf(
				"inscribed content at %s missing chunk %d", hrl, order,
			)
		}
		encoded.WriteString(chunk)
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded.String())
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode inscribed content at %s: %w", hrl, err)
	}

	payload, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress inscribed content at %s: %w", hrl, err)
	}

	contentID, err := ContentID(payload)
	if err != nil {
		return nil, "", err
	}

	topicInfo, infoErr := r.mirrorClient.GetTopicInfo(ctx, topicID)
	if infoErr == nil {
		memo := strings.TrimSpace(topicInfo.Memo)
		if strings.HasPrefix(memo, contentTopicMemoPrefix) {
			pinned := strings.TrimPrefix(memo, contentTopicMemoPrefix)
			if err := VerifyContent(payload, pinned); err != nil {
				return nil, "", err
			}
		}
	}

	return payload, contentID, nil
}
