package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashgraph-online/hcs721-go/pkg/shared"
)

const (
	mainnetMirrorURL = "https://mainnet-public.mirrornode.hedera.com"
	testnetMirrorURL = "https://testnet.mirrornode.hedera.com"
	localMirrorURL   = "http://localhost:5551"
)

// Config configures a mirror node REST client. When BaseURL is empty the
// client uses the public mirror of the configured network, or the REST port
// of the hedera local node mirror when the network is local.
type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

// Client reads topics, accounts, and transactions from a Hedera mirror node.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

// MessageQueryOptions narrows a topic message query. SequenceNumber takes a
// mirror node filter expression such as "gt:41" or "eq:7"; Order is "asc" or
// "desc". Zero values leave the corresponding query parameter unset.
type MessageQueryOptions struct {
	SequenceNumber string
	Limit          int
	Order          string
}

// NewClient builds a mirror node client for the given network, applying the
// network's default base URL when the config does not supply one.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	rawBaseURL := strings.TrimSpace(config.BaseURL)
	if rawBaseURL == "" {
		rawBaseURL = defaultBaseURL(network)
	}
	baseURL, err := normalizeBaseURL(rawBaseURL)
	if err != nil {
		return nil, err
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: config.HTTPClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    make(map[string]string, len(config.Headers)),
	}
	for key, value := range config.Headers {
		client.headers[key] = value
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return client, nil
}

func defaultBaseURL(network string) string {
	switch network {
	case shared.NetworkMainnet:
		return mainnetMirrorURL
	case shared.NetworkLocal:
		return localMirrorURL
	default:
		return testnetMirrorURL
	}
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(raw, "/")
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid mirror base URL %q: scheme must be http or https", trimmed)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("invalid mirror base URL %q: host is required", trimmed)
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// BaseURL returns the resolved mirror node base URL.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// GetTopicInfo fetches a topic's metadata, including its memo and keys.
func (client *Client) GetTopicInfo(ctx context.Context, topicID string) (TopicInfo, error) {
	var info TopicInfo
	if strings.TrimSpace(topicID) == "" {
		return info, fmt.Errorf("topic ID is required")
	}

	path := fmt.Sprintf("/api/v1/topics/%s", topicID)
	if err := client.getJSON(ctx, path, &info); err != nil {
		return info, err
	}
	return info, nil
}

// GetTopicMessages retrieves messages for a topic, following the mirror
// node's pagination links until every matching message has been collected.
func (client *Client) GetTopicMessages(
	ctx context.Context,
	topicID string,
	options MessageQueryOptions,
) ([]TopicMessage, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic ID is required")
	}

	messages := make([]TopicMessage, 0)
	next := messagesQueryPath(topicID, options)
	for next != "" {
		var page messagesPage
		if err := client.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page.Messages...)
		next = page.Links.Next
	}
	return messages, nil
}

func messagesQueryPath(topicID string, options MessageQueryOptions) string {
	query := url.Values{}
	if options.SequenceNumber != "" {
		query.Set("sequencenumber", options.SequenceNumber)
	}
	if options.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	if options.Order != "" {
		query.Set("order", options.Order)
	}

	path := fmt.Sprintf("/api/v1/topics/%s/messages", topicID)
	if encoded := query.Encode(); encoded != "" {
		path = path + "?" + encoded
	}
	return path
}

// GetTopicMessageBySequence fetches a single message by its sequence number.
// It returns nil without error when the sequence does not exist on the topic.
func (client *Client) GetTopicMessageBySequence(
	ctx context.Context,
	topicID string,
	sequence int64,
) (*TopicMessage, error) {
	if sequence <= 0 {
		return nil, fmt.Errorf("sequence must be positive")
	}

	query := MessageQueryOptions{
		Order:          "asc",
		Limit:          1,
		SequenceNumber: fmt.Sprintf("eq:%d", sequence),
	}
	messages, err := client.GetTopicMessages(ctx, topicID, query)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

// GetAccount fetches a ledger account record.
func (client *Client) GetAccount(ctx context.Context, accountID string) (AccountInfo, error) {
	var info AccountInfo
	normalized := strings.TrimSpace(accountID)
	if normalized == "" {
		return info, fmt.Errorf("account ID is required")
	}

	path := fmt.Sprintf("/api/v1/accounts/%s", normalized)
	if err := client.getJSON(ctx, path, &info); err != nil {
		return info, err
	}
	return info, nil
}

// GetAccountMemo fetches the memo string of an account.
func (client *Client) GetAccountMemo(ctx context.Context, accountID string) (string, error) {
	info, err := client.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return info.Memo, nil
}

// GetAccountBalance fetches an account's balance in tinybars. Accounts whose
// record carries no balance snapshot report zero.
func (client *Client) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	info, err := client.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if info.Balance == nil {
		return 0, nil
	}
	return info.Balance.Balance, nil
}

// GetTransaction looks up a transaction by its ID. It returns nil without
// error when the mirror node has no record of the transaction.
func (client *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	normalized := strings.TrimSpace(transactionID)
	if normalized == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	var page transactionsPage
	path := fmt.Sprintf("/api/v1/transactions/%s", normalized)
	if err := client.getJSON(ctx, path, &page); err != nil {
		return nil, err
	}
	if len(page.Transactions) == 0 {
		return nil, nil
	}
	return &page.Transactions[0], nil
}

// DecodeMessageData decodes the base64 payload of a topic message.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

// DecodeMessageJSON decodes the base64 payload of a topic message and
// unmarshals it into target.
func DecodeMessageJSON[T any](message TopicMessage, target *T) error {
	payload, err := DecodeMessageData(message)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("failed to decode topic message JSON: %w", err)
	}
	return nil
}

func (client *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	body, err := client.fetch(ctx, pathOrURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}
	return nil
}

func (client *Client) fetch(ctx context.Context, pathOrURL string) ([]byte, error) {
	requestURL := client.resolveURL(pathOrURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mirror node request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}
	for key, value := range client.headers {
		request.Header.Set(key, value)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror node response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"mirror node returned status %d for %s: %s",
			response.StatusCode,
			requestURL,
			strings.TrimSpace(string(body)),
		)
	}
	return body, nil
}

// resolveURL passes absolute http and https URLs through untouched so that
// pagination links returned by the mirror node resolve correctly.
func (client *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		return client.baseURL + "/" + pathOrURL
	}
	return client.baseURL + pathOrURL
}
