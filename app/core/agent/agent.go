package agent

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"focusdesk/app/core/assistant"
	"focusdesk/app/core/conversation"
	"focusdesk/app/core/dispatch"
	"focusdesk/app/pkg/types"
)

type modelClient interface {
	Respond(ctx context.Context, req types.ChatRequest) (assistant.Reply, error)
}

// ContextSources provide the widget snapshot for turns that arrive without
// one. Nil sources are skipped; a failing source only logs, a chat turn never
// fails because a widget snapshot did.
type ContextSources struct {
	Tasks     func(ctx context.Context) ([]types.ContextTask, error)
	Kanban    func(ctx context.Context) ([]types.ContextCard, error)
	Schedules func(ctx context.Context) ([]types.ContextSchedule, error)
}

// Agent runs one chat turn end to end: resolve the conversation, gather
// context, call the model, execute the translated actions and persist both
// sides of the exchange.
type Agent struct {
	name     string
	model    modelClient
	store    *conversation.Store
	executor *dispatch.Executor
	sources  ContextSources
}

func New(name string, model modelClient, store *conversation.Store, executor *dispatch.Executor, sources ContextSources) *Agent {
	return &Agent{
		name:     name,
		model:    model,
		store:    store,
		executor: executor,
		sources:  sources,
	}
}

func (a *Agent) Name() string { return a.name }

func (a *Agent) Process(ctx context.Context, req types.ChatRequest) (types.ChatReply, error) {
	conv, err := a.resolveConversation(ctx, req)
	if err != nil {
		return types.ChatReply{}, fmt.Errorf("resolve conversation: %w", err)
	}

	if len(req.History) == 0 && a.store != nil {
		history, err := a.store.Transcript(ctx, conv.ID, 0)
		if err != nil {
			log.Printf("[Agent] transcript load failed, continuing without history: %v", err)
		} else {
			req.History = history
		}
	}

	if req.Context == nil {
		req.Context = a.snapshot(ctx)
	}

	reply, err := a.model.Respond(ctx, req)
	if err != nil {
		log.Printf("[Agent] model turn failed: %v", err)
		return types.ChatReply{}, fmt.Errorf("model turn: %w", err)
	}

	a.executor.Execute(ctx, reply.Actions)

	if a.store != nil {
		if err := a.store.AppendTurn(ctx, conv.ID, req.UserID, types.MessageRoleUser, req.Message); err != nil {
			log.Printf("[Agent] persist user turn failed: %v", err)
		}
		if err := a.store.AppendTurn(ctx, conv.ID, req.UserID, types.MessageRoleAssistant, reply.Message); err != nil {
			log.Printf("[Agent] persist assistant turn failed: %v", err)
		}
	}

	summaries := make([]types.ActionSummary, 0, len(reply.Actions))
	for _, act := range reply.Actions {
		summaries = append(summaries, act.Summary())
	}

	return types.ChatReply{
		ID:             req.ID,
		ChannelID:      req.ChannelID,
		UserID:         req.UserID,
		ConversationID: conv.ID,
		Message:        reply.Message,
		Actions:        summaries,
	}, nil
}

func (a *Agent) resolveConversation(ctx context.Context, req types.ChatRequest) (conversation.Conversation, error) {
	if a.store == nil {
		return conversation.Conversation{ID: req.ConversationID}, nil
	}
	if req.ConversationID != "" {
		conv, err := a.store.Get(ctx, req.ConversationID)
		if err == nil {
			return conv, nil
		}
		if err != sql.ErrNoRows {
			return conversation.Conversation{}, err
		}
		log.Printf("[Agent] conversation %s not found, falling back to active", req.ConversationID)
	}
	return a.store.ActiveConversation(ctx, req.UserID)
}

// snapshot gathers the three widget views concurrently.
func (a *Agent) snapshot(ctx context.Context) *types.WidgetContext {
	snap := &types.WidgetContext{}
	g, gctx := errgroup.WithContext(ctx)

	if a.sources.Tasks != nil {
		g.Go(func() error {
			tasks, err := a.sources.Tasks(gctx)
			if err != nil {
				log.Printf("[Agent] tasks snapshot failed: %v", err)
				return nil
			}
			snap.Tasks = tasks
			return nil
		})
	}
	if a.sources.Kanban != nil {
		g.Go(func() error {
			cards, err := a.sources.Kanban(gctx)
			if err != nil {
				log.Printf("[Agent] kanban snapshot failed: %v", err)
				return nil
			}
			snap.KanbanCards = cards
			return nil
		})
	}
	if a.sources.Schedules != nil {
		g.Go(func() error {
			schedules, err := a.sources.Schedules(gctx)
			if err != nil {
				log.Printf("[Agent] schedules snapshot failed: %v", err)
				return nil
			}
			snap.Schedules = schedules
			return nil
		})
	}

	_ = g.Wait()
	return snap
}
