package gateway

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"focusdesk/app/pkg/types"
)

// DefaultGateway fans every registered channel into one agent and routes the
// reply back to the channel the request came from.
type DefaultGateway struct {
	agent    types.Agent
	channels map[string]types.Channel
	mu       sync.RWMutex
	tracer   TraceRecorder

	processedMessages uint64
	failedMessages    uint64
	lastMessageUnix   atomic.Int64
	startedUnix       atomic.Int64
}

type HealthStatus struct {
	Started            bool
	StartedAt          time.Time
	RegisteredChannels []string
	AgentName          string
	ProcessedMessages  uint64
	FailedMessages     uint64
	LastMessageAt      time.Time
}

func NewGateway(agent types.Agent) *DefaultGateway {
	return &DefaultGateway{
		agent:    agent,
		channels: make(map[string]types.Channel),
	}
}

func (g *DefaultGateway) SetTraceRecorder(tracer TraceRecorder) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracer = tracer
}

func (g *DefaultGateway) RegisterChannel(c types.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
	log.Printf("[Gateway] Registered channel: %s", c.ID())
}

// Start runs every channel until the context ends. Each inbound turn is
// processed on the calling goroutine of its channel; a failed turn is
// answered with an error reply so the surface never hangs waiting.
func (g *DefaultGateway) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	g.startedUnix.Store(time.Now().Unix())

	handler := func(req types.ChatRequest) {
		atomic.AddUint64(&g.processedMessages, 1)
		g.lastMessageUnix.Store(time.Now().Unix())
		log.Printf("[Gateway] Received message from channel=%s user=%s", req.ChannelID, req.UserID)
		g.trace(req, "inbound_received", "ok", "")

		if err := g.processAndReply(ctx, req); err != nil {
			atomic.AddUint64(&g.failedMessages, 1)
			log.Printf("[Gateway] Processing failed: %v", err)
			g.trace(req, "agent_process", "error", err.Error())
			g.sendErrorReply(ctx, req)
		}
	}

	g.mu.RLock()
	for _, c := range g.channels {
		wg.Add(1)
		go func(ch types.Channel) {
			defer wg.Done()
			if err := ch.Start(ctx, handler); err != nil {
				log.Printf("[Gateway] Channel %s error: %v", ch.ID(), err)
			}
		}(c)
	}
	g.mu.RUnlock()

	log.Println("[Gateway] Started all channels")
	wg.Wait()
	return nil
}

func (g *DefaultGateway) processAndReply(ctx context.Context, req types.ChatRequest) error {
	reply, err := g.agent.Process(ctx, req)
	if err != nil {
		return err
	}
	normalizeReply(&reply, req)

	channel, exists := g.channelByID(req.ChannelID)
	if !exists {
		log.Printf("[Gateway] Channel not found for reply: %s", req.ChannelID)
		g.trace(req, "deliver_reply", "error", "channel not found")
		return nil
	}
	if err := channel.Send(ctx, reply); err != nil {
		g.trace(req, "deliver_reply", "error", err.Error())
		return err
	}
	g.trace(req, "deliver_reply", "ok", "")
	return nil
}

func (g *DefaultGateway) trace(req types.ChatRequest, event, status, detail string) {
	g.mu.RLock()
	tracer := g.tracer
	g.mu.RUnlock()
	if tracer == nil {
		return
	}
	record := TraceEvent{
		RequestID:      req.ID,
		ChannelID:      req.ChannelID,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Event:          event,
		Status:         status,
		Detail:         detail,
	}
	if err := tracer.Record(record); err != nil {
		log.Printf("[Gateway] Trace write failed: %v", err)
	}
}

func (g *DefaultGateway) sendErrorReply(ctx context.Context, req types.ChatRequest) {
	channel, exists := g.channelByID(req.ChannelID)
	if !exists {
		return
	}
	reply := types.ChatReply{
		Message: "Desculpe, tive um pequeno erro técnico ao processar seu pedido. Tente novamente, por favor.",
	}
	normalizeReply(&reply, req)
	if err := channel.Send(ctx, reply); err != nil {
		log.Printf("[Gateway] Error reply delivery failed: %v", err)
	}
}

func normalizeReply(reply *types.ChatReply, req types.ChatRequest) {
	if reply.ID == "" {
		reply.ID = req.ID
	}
	if reply.ChannelID == "" {
		reply.ChannelID = req.ChannelID
	}
	if reply.UserID == "" {
		reply.UserID = req.UserID
	}
	if reply.ConversationID == "" {
		reply.ConversationID = req.ConversationID
	}
}

func (g *DefaultGateway) channelByID(channelID string) (types.Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	channel, exists := g.channels[channelID]
	return channel, exists
}

func (g *DefaultGateway) HealthStatus() HealthStatus {
	g.mu.RLock()
	channels := make([]string, 0, len(g.channels))
	for id := range g.channels {
		channels = append(channels, id)
	}
	agentName := ""
	if g.agent != nil {
		agentName = g.agent.Name()
	}
	g.mu.RUnlock()
	sort.Strings(channels)

	status := HealthStatus{
		RegisteredChannels: channels,
		AgentName:          agentName,
		ProcessedMessages:  atomic.LoadUint64(&g.processedMessages),
		FailedMessages:     atomic.LoadUint64(&g.failedMessages),
	}
	if started := g.startedUnix.Load(); started > 0 {
		status.Started = true
		status.StartedAt = time.Unix(started, 0).UTC()
	}
	if last := g.lastMessageUnix.Load(); last > 0 {
		status.LastMessageAt = time.Unix(last, 0).UTC()
	}
	return status
}
