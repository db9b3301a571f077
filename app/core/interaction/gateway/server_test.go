package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"focusdesk/app/pkg/types"
)

type fakeAgent struct {
	reply types.ChatReply
	err   error
}

func (a *fakeAgent) Process(_ context.Context, req types.ChatRequest) (types.ChatReply, error) {
	if a.err != nil {
		return types.ChatReply{}, a.err
	}
	reply := a.reply
	reply.ID = req.ID
	return reply, nil
}

func (a *fakeAgent) Name() string { return "fake" }

// fakeChannel emits one scripted request and records what comes back.
type fakeChannel struct {
	id      string
	request types.ChatRequest

	mu      sync.Mutex
	replies []types.ChatReply
	got     chan struct{}
}

func newFakeChannel(id string, req types.ChatRequest) *fakeChannel {
	req.ChannelID = id
	return &fakeChannel{id: id, request: req, got: make(chan struct{}, 1)}
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Start(ctx context.Context, handler func(types.ChatRequest)) error {
	handler(c.request)
	<-ctx.Done()
	return nil
}

func (c *fakeChannel) Send(_ context.Context, reply types.ChatReply) error {
	c.mu.Lock()
	c.replies = append(c.replies, reply)
	c.mu.Unlock()
	select {
	case c.got <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeChannel) firstReply(t *testing.T) types.ChatReply {
	t.Helper()
	select {
	case <-c.got:
	case <-time.After(time.Second):
		t.Fatal("no reply delivered")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replies[0]
}

func startGateway(t *testing.T, g *DefaultGateway) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestGatewayRoutesReplyToOriginChannel(t *testing.T) {
	agent := &fakeAgent{reply: types.ChatReply{Message: "olá!"}}
	g := NewGateway(agent)

	ch := newFakeChannel("cli", types.ChatRequest{ID: "r-1", UserID: "u-1", Message: "oi"})
	g.RegisterChannel(ch)
	startGateway(t, g)

	reply := ch.firstReply(t)
	if reply.Message != "olá!" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.ID != "r-1" || reply.ChannelID != "cli" || reply.UserID != "u-1" {
		t.Fatalf("reply not normalized: %+v", reply)
	}
}

func TestGatewaySendsErrorReplyOnAgentFailure(t *testing.T) {
	agent := &fakeAgent{err: errors.New("model down")}
	g := NewGateway(agent)

	ch := newFakeChannel("cli", types.ChatRequest{ID: "r-2", UserID: "u-1", Message: "oi"})
	g.RegisterChannel(ch)
	startGateway(t, g)

	reply := ch.firstReply(t)
	if !strings.Contains(reply.Message, "erro técnico") {
		t.Fatalf("expected error reply, got %q", reply.Message)
	}

	status := g.HealthStatus()
	if status.FailedMessages != 1 || status.ProcessedMessages != 1 {
		t.Fatalf("unexpected counters: %+v", status)
	}
}

func TestHealthStatusReportsChannels(t *testing.T) {
	g := NewGateway(&fakeAgent{})
	g.RegisterChannel(newFakeChannel("http", types.ChatRequest{}))
	g.RegisterChannel(newFakeChannel("cli", types.ChatRequest{}))

	status := g.HealthStatus()
	if len(status.RegisteredChannels) != 2 || status.RegisteredChannels[0] != "cli" {
		t.Fatalf("unexpected channels: %v", status.RegisteredChannels)
	}
	if status.AgentName != "fake" {
		t.Fatalf("unexpected agent name: %q", status.AgentName)
	}
	if status.Started {
		t.Fatal("gateway should not report started before Start")
	}
}

func TestTraceRecorderWritesTurnLifecycle(t *testing.T) {
	dir := t.TempDir()
	tracer, err := NewTraceRecorder(dir)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	agent := &fakeAgent{reply: types.ChatReply{Message: "ok"}}
	g := NewGateway(agent)
	g.SetTraceRecorder(tracer)

	ch := newFakeChannel("cli", types.ChatRequest{ID: "r-3", UserID: "u-1", Message: "oi"})
	g.RegisterChannel(ch)
	startGateway(t, g)
	ch.firstReply(t)

	// The deliver_reply event is written after Send returns, poll briefly.
	day := time.Now().UTC().Format("2006-01-02")
	path := filepath.Join(dir, day, "gateway_events.jsonl")
	var content string
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil {
			content = string(data)
			if strings.Contains(content, "deliver_reply") {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	for _, event := range []string{"inbound_received", "deliver_reply"} {
		if !strings.Contains(content, event) {
			t.Fatalf("missing %s in trace:\n%s", event, content)
		}
	}
	if !strings.Contains(content, `"request_id":"r-3"`) {
		t.Fatalf("request id missing in trace:\n%s", content)
	}
}
