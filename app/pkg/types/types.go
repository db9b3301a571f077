package types

import (
	"context"
	"encoding/json"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// InlineImage is a base64-encoded image attached to a user turn.
type InlineImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// ConversationMessage is one turn of the display-level transcript.
type ConversationMessage struct {
	Role    string       `json:"role"`
	Content string       `json:"content"`
	Image   *InlineImage `json:"image,omitempty"`
}

// WidgetContext is the snapshot of user data injected into the model prompt.
type WidgetContext struct {
	Tasks       []ContextTask     `json:"tasks"`
	Schedules   []ContextSchedule `json:"schedules"`
	KanbanCards []ContextCard     `json:"kanban_tasks"`
}

type ContextTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type ContextCard struct {
	Title  string `json:"title"`
	Column string `json:"column"`
}

type ContextSchedule struct {
	Title         string `json:"title"`
	ActivityCount int    `json:"activity_count"`
}

// ChatRequest represents one user turn arriving from a channel.
type ChatRequest struct {
	ID             string
	ChannelID      string
	UserID         string
	ConversationID string
	Message        string
	History        []ConversationMessage
	Context        *WidgetContext
	Image          *InlineImage
}

// ChatReply is the assistant's answer for one turn. Actions have already been
// dispatched by the time a reply reaches a channel; they are echoed for API
// consumers that mirror state client-side.
type ChatReply struct {
	ID             string
	ChannelID      string
	UserID         string
	ConversationID string
	Message        string
	Actions        []ActionSummary
}

// ActionSummary is the wire form of a dispatched action: its internal type
// tag plus the translated argument fields.
type ActionSummary struct {
	Type   string                 `json:"type"`
	Fields map[string]interface{} `json:"-"`
}

// Agent is the reasoning core: one chat turn in, one reply out.
type Agent interface {
	Process(ctx context.Context, req ChatRequest) (ChatReply, error)
	Name() string
}

// Channel is an input/output surface (CLI, HTTP).
type Channel interface {
	Start(ctx context.Context, handler func(ChatRequest)) error
	Send(ctx context.Context, reply ChatReply) error
	ID() string
}

// Gateway fans channels into the agent.
type Gateway interface {
	RegisterChannel(c Channel)
	Start(ctx context.Context) error
}

// MarshalJSON flattens an ActionSummary to the wire shape {type, ...fields}.
func (a ActionSummary) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(a.Fields)+1)
	for k, v := range a.Fields {
		m[k] = v
	}
	m["type"] = a.Type
	return json.Marshal(m)
}
