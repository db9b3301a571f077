package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"focusdesk/app/core/notify"
	"focusdesk/app/pkg/types"
)

func TestChatRoundTrip(t *testing.T) {
	c := NewHTTPChannel(0, notify.NewBus())
	c.handler = func(req types.ChatRequest) {
		_ = c.Send(context.Background(), types.ChatReply{
			ID:             req.ID,
			ConversationID: "conv-1",
			Message:        "Tarefa criada!",
			Actions: []types.ActionSummary{
				{Type: "createTask", Fields: map[string]interface{}{"titulo": "Ler"}},
			},
		})
	}

	body := bytes.NewBufferString(`{"message":"cria uma tarefa para ler"}`)
	r := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	w := httptest.NewRecorder()
	c.handleChat(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Tarefa criada!" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if resp["conversation_id"] != "conv-1" {
		t.Fatalf("unexpected conversation id: %v", resp["conversation_id"])
	}
	actions, ok := resp["actions"].([]interface{})
	if !ok || len(actions) != 1 {
		t.Fatalf("unexpected actions: %v", resp["actions"])
	}
	first := actions[0].(map[string]interface{})
	if first["type"] != "createTask" || first["titulo"] != "Ler" {
		t.Fatalf("action not flattened: %v", first)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	c := NewHTTPChannel(0, nil)
	c.handler = func(types.ChatRequest) {}

	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	w := httptest.NewRecorder()
	c.handleChat(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatAllowsImageOnlyTurn(t *testing.T) {
	c := NewHTTPChannel(0, nil)
	var got types.ChatRequest
	c.handler = func(req types.ChatRequest) {
		got = req
		_ = c.Send(context.Background(), types.ChatReply{ID: req.ID, Message: "bonita foto!"})
	}

	body := strings.NewReader(`{"message":"","image":{"data":"aGk=","mime_type":"image/png"}}`)
	r := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	w := httptest.NewRecorder()
	c.handleChat(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if got.Image == nil || got.Image.MimeType != "image/png" {
		t.Fatalf("image not forwarded: %+v", got.Image)
	}
}

func TestChatTimesOutWithoutReply(t *testing.T) {
	c := NewHTTPChannel(0, nil)
	c.SetResponseTimeout(30 * time.Millisecond)
	c.handler = func(types.ChatRequest) {}

	r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"oi"}`))
	w := httptest.NewRecorder()
	c.handleChat(w, r)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
}

func TestSendWithoutPendingRequestIsDropped(t *testing.T) {
	c := NewHTTPChannel(0, nil)
	if err := c.Send(context.Background(), types.ChatReply{ID: "ghost", Message: "x"}); err != nil {
		t.Fatalf("expected silent drop, got %v", err)
	}
}

func TestStatusIncludesRuntime(t *testing.T) {
	c := NewHTTPChannel(0, nil)
	c.startedUnix.Store(time.Now().Add(-time.Minute).Unix())
	c.SetStatusProvider(func(context.Context) map[string]interface{} {
		return map[string]interface{}{"queue_depth": 3}
	})

	r := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	c.handleStatus(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ChannelID != "http" || resp.UptimeSec < 59 {
		t.Fatalf("unexpected status payload: %+v", resp)
	}
	if resp.Runtime["queue_depth"].(float64) != 3 {
		t.Fatalf("runtime provider missing: %+v", resp.Runtime)
	}
}

func TestEventsStreamDeliversBusEvents(t *testing.T) {
	bus := notify.NewBus()
	c := NewHTTPChannel(0, bus)

	server := httptest.NewServer(http.HandlerFunc(c.handleEvents))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				bus.Changed(notify.TopicTasks)
			}
		}
	}()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var event notify.Event
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		t.Fatalf("decode event %q: %v", line, err)
	}
	if event.Topic != notify.TopicTasks {
		t.Fatalf("unexpected event: %+v", event)
	}
}
