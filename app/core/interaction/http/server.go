package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"focusdesk/app/core/notify"
	"focusdesk/app/pkg/types"
)

const (
	defaultResponseTimeout = 60 * time.Second
	maxBodyBytes           = 8 << 20 // image turns carry base64 payloads
)

// HTTPChannel serves the browser frontend: a synchronous chat endpoint, a
// status endpoint and an NDJSON event stream carrying widget refresh and
// toast notifications.
type HTTPChannel struct {
	id              string
	port            int
	server          *http.Server
	handler         func(types.ChatRequest)
	statusProvider  func(context.Context) map[string]interface{}
	bus             *notify.Bus
	responseTimeout time.Duration
	shutdownTimeout time.Duration

	pendingMu   sync.Mutex
	pending     map[string]chan types.ChatReply
	counter     uint64
	startedUnix atomic.Int64
}

func NewHTTPChannel(port int, bus *notify.Bus) *HTTPChannel {
	return &HTTPChannel{
		id:              "http",
		port:            port,
		bus:             bus,
		pending:         map[string]chan types.ChatReply{},
		responseTimeout: defaultResponseTimeout,
		shutdownTimeout: 5 * time.Second,
	}
}

func (c *HTTPChannel) ID() string {
	return c.id
}

func (c *HTTPChannel) SetStatusProvider(provider func(context.Context) map[string]interface{}) {
	c.statusProvider = provider
}

func (c *HTTPChannel) SetResponseTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.responseTimeout = timeout
	}
}

func (c *HTTPChannel) Start(ctx context.Context, handler func(types.ChatRequest)) error {
	c.handler = handler
	c.startedUnix.Store(time.Now().Unix())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", c.handleChat)
	mux.HandleFunc("/api/status", c.handleStatus)
	mux.HandleFunc("/api/events", c.handleEvents)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	c.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", c.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
		defer cancel()
		if err := c.server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HTTP] Shutdown error: %v", err)
		}
	}()

	log.Printf("[HTTP] Listening on port %d...", c.port)
	if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (c *HTTPChannel) Send(_ context.Context, reply types.ChatReply) error {
	if strings.TrimSpace(reply.ID) == "" {
		log.Printf("[HTTP] Outgoing reply without request id: %s", reply.Message)
		return nil
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[reply.ID]
	c.pendingMu.Unlock()
	if !ok {
		log.Printf("[HTTP] Pending request not found: %s", reply.ID)
		return nil
	}

	select {
	case ch <- reply:
	default:
	}
	return nil
}

type chatRequestBody struct {
	Message             string                      `json:"message"`
	UserID              string                      `json:"user_id,omitempty"`
	ConversationID      string                      `json:"conversation_id,omitempty"`
	ConversationHistory []types.ConversationMessage `json:"conversation_history,omitempty"`
	Context             *types.WidgetContext        `json:"context,omitempty"`
	Image               *types.InlineImage          `json:"image,omitempty"`
}

type chatResponseBody struct {
	Message        string                `json:"message"`
	Actions        []types.ActionSummary `json:"actions"`
	ConversationID string                `json:"conversation_id,omitempty"`
}

type statusResponse struct {
	ChannelID       string                 `json:"channel_id"`
	PendingRequests int                    `json:"pending_requests"`
	StartedAt       string                 `json:"started_at,omitempty"`
	UptimeSec       int64                  `json:"uptime_sec"`
	Runtime         map[string]interface{} `json:"runtime,omitempty"`
}

func (c *HTTPChannel) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req chatRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.Image == nil {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if c.handler == nil {
		http.Error(w, "handler not ready", http.StatusServiceUnavailable)
		return
	}

	msg, respCh := c.prepareRequest(req)
	defer c.removePending(msg.ID)

	c.handler(msg)

	select {
	case reply := <-respCh:
		payload := chatResponseBody{
			Message:        reply.Message,
			Actions:        reply.Actions,
			ConversationID: reply.ConversationID,
		}
		if payload.Actions == nil {
			payload.Actions = []types.ActionSummary{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(payload)
	case <-time.After(c.responseTimeout):
		http.Error(w, "request timeout", http.StatusGatewayTimeout)
	case <-r.Context().Done():
	}
}

func (c *HTTPChannel) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{ChannelID: c.id}
	c.pendingMu.Lock()
	resp.PendingRequests = len(c.pending)
	c.pendingMu.Unlock()

	if started := c.startedUnix.Load(); started > 0 {
		startAt := time.Unix(started, 0).UTC()
		resp.StartedAt = startAt.Format(time.RFC3339)
		resp.UptimeSec = int64(time.Since(startAt).Seconds())
		if resp.UptimeSec < 0 {
			resp.UptimeSec = 0
		}
	}
	if c.statusProvider != nil {
		resp.Runtime = c.statusProvider(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleEvents streams bus events (widget refresh topics, toasts, timer
// ticks) as newline-delimited JSON until the client disconnects.
func (c *HTTPChannel) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if c.bus == nil {
		http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := c.bus.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	encoder := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := encoder.Encode(event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (c *HTTPChannel) prepareRequest(req chatRequestBody) (types.ChatRequest, chan types.ChatReply) {
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "local_user"
	}

	requestID := c.newID("req")
	respCh := make(chan types.ChatReply, 1)
	c.pendingMu.Lock()
	c.pending[requestID] = respCh
	c.pendingMu.Unlock()

	msg := types.ChatRequest{
		ID:             requestID,
		ChannelID:      c.id,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		History:        req.ConversationHistory,
		Context:        req.Context,
		Image:          req.Image,
	}
	return msg, respCh
}

func (c *HTTPChannel) removePending(requestID string) {
	c.pendingMu.Lock()
	delete(c.pending, requestID)
	c.pendingMu.Unlock()
}

func (c *HTTPChannel) newID(prefix string) string {
	seq := atomic.AddUint64(&c.counter, 1)
	return prefix + "-" + strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(seq, 10)
}
