package localnet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

type ServerConfig struct {
	Node   *Node
	Logger *logrus.Logger
}

// Server exposes the node over the mirror node REST surface the SDK reads:
// topic info, paged topic messages with sequence filters, accounts, and
// transactions.
type Server struct {
	node       *Node
	log        *logrus.Logger
	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds the REST routes for a node.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Node == nil {
		return nil, fmt.Errorf("node is required")
	}

	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	server := &Server{
		node:   config.Node,
		log:    log,
		router: mux.NewRouter(),
	}

	server.router.HandleFunc("/api/v1/topics/{id}", server.handleTopic).Methods(http.MethodGet)
	server.router.HandleFunc("/api/v1/topics/{id}/messages", server.handleTopicMessages).Methods(http.MethodGet)
	server.router.HandleFunc("/api/v1/accounts/{id}", server.handleAccount).Methods(http.MethodGet)
	server.router.HandleFunc("/api/v1/transactions/{id}", server.handleTransactions).Methods(http.MethodGet)
	server.router.HandleFunc("/health", func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusOK)
		responseWriter.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	return server, nil
}

// Handler returns the router, which tests mount on httptest servers.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Start listens on addr and serves in the background. Use addr ":0" to pick
// a free port; BaseURL reports the bound address.
func (server *Server) Start(addr string) error {
	if server.listener != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server.listener = listener
	server.httpServer = &http.Server{Handler: server.router}

	go func() {
		if serveErr := server.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			server.log.WithError(serveErr).Error("localnet mirror server stopped")
		}
	}()

	server.log.WithFields(logrus.Fields{
		"addr":     listener.Addr().String(),
		"operator": server.node.OperatorAccountID(),
	}).Info("localnet mirror listening")

	return nil
}

// BaseURL returns the http base URL of a started server.
func (server *Server) BaseURL() string {
	if server.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", server.listener.Addr().String())
}

// Shutdown stops a started server.
func (server *Server) Shutdown(ctx context.Context) error {
	if server.httpServer == nil {
		return nil
	}
	return server.httpServer.Shutdown(ctx)
}

func (server *Server) handleTopic(responseWriter http.ResponseWriter, request *http.Request) {
	topicID := mux.Vars(request)["id"]
	record, exists := server.node.Topic(topicID)
	if !exists {
		writeMirrorError(responseWriter, http.StatusNotFound, fmt.Sprintf("No such topic id - %s", topicID))
		return
	}

	writeJSON(responseWriter, http.StatusOK, map[string]any{
		"admin_key":          keyJSON(record.AdminKey),
		"auto_renew_account": nil,
		"auto_renew_period":  7776000,
		"created_timestamp":  record.CreatedTimestamp,
		"deleted":            false,
		"memo":               record.Memo,
		"submit_key":         keyJSON(record.SubmitKey),
		"topic_id":           record.TopicID,
	})
}

func (server *Server) handleTopicMessages(responseWriter http.ResponseWriter, request *http.Request) {
	topicID := mux.Vars(request)["id"]
	messages, exists := server.node.TopicMessages(topicID)
	if !exists {
		writeMirrorError(responseWriter, http.StatusNotFound, fmt.Sprintf("No such topic id - %s", topicID))
		return
	}

	query := request.URL.Query()

	filtered, err := applySequenceFilter(messages, query.Get("sequencenumber"))
	if err != nil {
		writeMirrorError(responseWriter, http.StatusBadRequest, err.Error())
		return
	}

	order := strings.ToLower(strings.TrimSpace(query.Get("order")))
	if order == "" {
		order = "asc"
	}
	if order != "asc" && order != "desc" {
		writeMirrorError(responseWriter, http.StatusBadRequest, fmt.Sprintf("invalid order %q", order))
		return
	}
	sort.Slice(filtered, func(left, right int) bool {
		if order == "desc" {
			return filtered[left].SequenceNumber > filtered[right].SequenceNumber
		}
		return filtered[left].SequenceNumber < filtered[right].SequenceNumber
	})

	limit := defaultPageLimit
	if rawLimit := query.Get("limit"); rawLimit != "" {
		parsed, parseErr := strconv.Atoi(rawLimit)
		if parseErr != nil || parsed <= 0 {
			writeMirrorError(responseWriter, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", rawLimit))
			return
		}
		limit = parsed
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}

	page := filtered
	next := ""
	if len(filtered) > limit {
		page = filtered[:limit]
		lastSequence := page[len(page)-1].SequenceNumber

		nextValues := url.Values{}
		nextValues.Set("limit", strconv.Itoa(limit))
		nextValues.Set("order", order)
		if order == "desc" {
			nextValues.Set("sequencenumber", fmt.Sprintf("lt:%d", lastSequence))
		} else {
			nextValues.Set("sequencenumber", fmt.Sprintf("gt:%d", lastSequence))
		}
		next = fmt.Sprintf("/api/v1/topics/%s/messages?%s", topicID, nextValues.Encode())
	}

	encoded := make([]map[string]any, 0, len(page))
	for _, message := range page {
		encoded = append(encoded, map[string]any{
			"consensus_timestamp":  message.ConsensusTimestamp,
			"message":              base64.StdEncoding.EncodeToString(message.Payload),
			"payer_account_id":     message.PayerAccountID,
			"running_hash":         base64.StdEncoding.EncodeToString(message.RunningHash),
			"running_hash_version": message.RunningHashVersion,
			"sequence_number":      message.SequenceNumber,
			"topic_id":             message.TopicID,
		})
	}

	writeJSON(responseWriter, http.StatusOK, map[string]any{
		"messages": encoded,
		"links":    map[string]any{"next": next},
	})
}

func (server *Server) handleAccount(responseWriter http.ResponseWriter, request *http.Request) {
	accountID := mux.Vars(request)["id"]
	record, exists := server.node.Account(accountID)
	if !exists {
		writeMirrorError(responseWriter, http.StatusNotFound, "Not found")
		return
	}

	writeJSON(responseWriter, http.StatusOK, map[string]any{
		"account": record.AccountID,
		"balance": map[string]any{
			"balance":   record.Balance,
			"timestamp": record.CreatedTimestamp,
		},
		"evm_address": "",
		"key":         nil,
		"memo":        record.Memo,
	})
}

func (server *Server) handleTransactions(responseWriter http.ResponseWriter, request *http.Request) {
	transactionID := mux.Vars(request)["id"]
	records := server.node.TransactionsByID(transactionID)
	if len(records) == 0 {
		writeMirrorError(responseWriter, http.StatusNotFound, "Not found")
		return
	}

	encoded := make([]map[string]any, 0, len(records))
	for _, record := range records {
		encoded = append(encoded, map[string]any{
			"charged_tx_fee":      record.ChargedFee,
			"consensus_timestamp": record.ConsensusTimestamp,
			"entity_id":           record.EntityID,
			"max_fee":             "100000000",
			"memo_base64":         "",
			"name":                record.Name,
			"node":                "0.0.3",
			"result":              record.Result,
			"transaction_id":      record.TransactionID,
			"transfers":           []any{},
		})
	}

	writeJSON(responseWriter, http.StatusOK, map[string]any{
		"transactions": encoded,
		"links":        map[string]any{"next": ""},
	})
}

// applySequenceFilter narrows messages by a mirror sequencenumber query
// value: a bare number or one of eq:, gt:, gte:, lt:, lte:.
func applySequenceFilter(messages []MessageRecord, filter string) ([]MessageRecord, error) {
	trimmed := strings.TrimSpace(filter)
	if trimmed == "" {
		return messages, nil
	}

	operator := "eq"
	operand := trimmed
	if separator := strings.Index(trimmed, ":"); separator >= 0 {
		operator = strings.ToLower(trimmed[:separator])
		operand = trimmed[separator+1:]
	}

	threshold, err := strconv.ParseInt(operand, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sequencenumber %q", filter)
	}

	var matches func(int64) bool
	switch operator {
	case "eq":
		matches = func(sequence int64) bool { return sequence == threshold }
	case "gt":
		matches = func(sequence int64) bool { return sequence > threshold }
	case "gte":
		matches = func(sequence int64) bool { return sequence >= threshold }
	case "lt":
		matches = func(sequence int64) bool { return sequence < threshold }
	case "lte":
		matches = func(sequence int64) bool { return sequence <= threshold }
	default:
		return nil, fmt.Errorf("invalid sequencenumber %q", filter)
	}

	filtered := make([]MessageRecord, 0, len(messages))
	for _, message := range messages {
		if matches(message.SequenceNumber) {
			filtered = append(filtered, message)
		}
	}
	return filtered, nil
}

func keyJSON(key string) any {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return map[string]any{
		"_type": "ED25519",
		"key":   key,
	}
}

func writeJSON(responseWriter http.ResponseWriter, status int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}

func writeMirrorError(responseWriter http.ResponseWriter, status int, message string) {
	writeJSON(responseWriter, status, map[string]any{
		"_status": map[string]any{
			"messages": []map[string]any{{"message": message}},
		},
	})
}
