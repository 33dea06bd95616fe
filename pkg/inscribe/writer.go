package inscribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/hashgraph-online/hcs721-go/pkg/hcs721"
)

const (
	// maxChunkContentBytes caps the base64 text carried per chunk so the
	// whole JSON envelope stays inside the 1024-byte consensus message
	// limit with room for the order and total fields.
	maxChunkContentBytes = 960

	// contentTopicMemoPrefix starts the memo of every content topic the
	// writer creates; the content ID follows it so readers can verify
	// payloads against the topic itself.
	contentTopicMemoPrefix = "hcs-721:content:"
)

// Writer inscribes metadata documents onto content topics.
type Writer struct {
	submitter hcs721.MessageSubmitter
	payer     string
}

// NewWriter creates a new Writer.
func NewWriter(config WriterConfig) (*Writer, error) {
	if config.Submitter == nil {
		return nil, fmt.Errorf("message submitter is required")
	}

	return &Writer{
		submitter: config.Submitter,
		payer:     strings.TrimSpace(config.PayerAccountID),
	}, nil
}

// Inscribe canonicalizes document, compresses it, and submits it to a
// content topic as ordered chunk messages. When options.TopicID is empty
// a fresh topic is created with the content ID in its memo. The returned
// HRL is ready to use as a mint's token URI.
func (w *Writer) Inscribe(
	ctx context.Context,
	document Document,
	options InscribeOptions,
) (*InscriptionResult, error) {
	if strings.TrimSpace(document.Name) == "" {
		return nil, fmt.Errorf("metadata document requires a name")
	}

	canonical, err := CanonicalJSON(document)
	if err != nil {
		return nil, err
	}

	contentID, err := ContentID(canonical)
	if err != nil {
		return nil, err
	}

	compressed, err := compressContent(canonical)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(compressed)
	chunks := splitChunks(encoded, maxChunkContentBytes)

	topicID := strings.TrimSpace(options.TopicID)
	if topicID == "" {
		createResult, createErr := w.submitter.CreateTopic(ctx, hcs721.CreateTopicRequest{
			Memo: contentTopicMemoPrefix + contentID,
		})
		if createErr != nil {
			return nil, fmt.Errorf("failed to create content topic: %w", createErr)
		}
		topicID = createResult.TopicID
	}

	payer := strings.TrimSpace(options.PayerAccountID)
	if payer == "" {
		payer = w.payer
	}

	var lastTransactionID string
	for index, chunk := range chunks {
		payload, marshalErr := json.Marshal(chunkEnvelope{
			Order:   index + 1,
			Content: chunk,
			Total:   len(chunks),
		})
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to encode chunk %d: %w", index+1, marshalErr)
		}

		submitResult, submitErr := w.submitter.SubmitMessage(ctx, hcs721.SubmitMessageRequest{
			TopicID:         topicID,
			Payload:         payload,
			TransactionMemo: fmt.Sprintf("hcs-721:content:%d/%d", index+1, len(chunks)),
			PayerAccountID:  payer,
		})
		if submitErr != nil {
			return nil, fmt.Errorf(
				"failed to submit chunk %d of %d: %w",
				index+1, len(chunks), submitErr,
			)
		}
		lastTransactionID = submitResult.TransactionID
	}

	return &InscriptionResult{
		TopicID:         topicID,
		HRL:             BuildHRL(topicID),
		ContentID:       contentID,
		Chunks:          len(chunks),
		CanonicalBytes:  len(canonical),
		CompressedBytes: len(compressed),
		TransactionID:   lastTransactionID,
	}, nil
}

func compressContent(payload []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := brotli.NewWriter(&buffer)
	if _, err := writer.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to compress content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish content compression: %w", err)
	}
	return buffer.Bytes(), nil
}

// splitChunks slices base64 text into size-byte pieces. Base64 is ASCII,
// so byte slicing never splits a rune.
func splitChunks(encoded string, size int) []string {
	if encoded == "" {
		return []string{""}
	}

	chunks := make([]string, 0, (len(encoded)+size-1)/size)
	for start := 0; start < len(encoded); start += size {
		end := start + size
		if end > len(encoded) {
			end = len(encoded)
		}
		chunks = append(chunks, encoded[start:end])
	}

	return chunks
}
