package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"focusdesk/app/core/action"
	"focusdesk/app/core/conversation"
	"focusdesk/app/pkg/types"
)

// Reply is one model turn: the user-facing text plus the typed actions
// translated from the model's tool calls, in call order.
type Reply struct {
	Message string
	Actions []action.Action
}

// Client drives the chat model with the tool vocabulary attached.
type Client struct {
	api     openai.Client
	model   string
	window  int
	timeout time.Duration
}

func NewClient(apiKey, baseURL, model string, historyWindow int, timeout time.Duration) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if historyWindow <= 0 {
		historyWindow = conversation.HistoryWindow
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   model,
		window:  historyWindow,
		timeout: timeout,
	}
}

// Respond sends one user turn with bounded history and the widget context
// and returns the sanitized reply plus translated actions.
func (c *Client) Respond(ctx context.Context, req types.ChatRequest) (Reply, error) {
	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(req.Context)),
	}
	for _, m := range conversation.BoundedHistory(req.History, c.window) {
		if m.Role == types.MessageRoleUser {
			messages = append(messages, openai.UserMessage(m.Content))
		} else {
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}
	messages = append(messages, userTurn(req))

	started := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
		Tools:    action.ModelTools(),
	})
	if err != nil {
		return Reply{Message: fallbackError}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Reply{Message: fallbackError}, fmt.Errorf("chat completion: empty choices")
	}

	msg := completion.Choices[0].Message
	var actions []action.Action
	for _, call := range msg.ToolCalls {
		actions = append(actions, action.Translate(call.Function.Name, call.Function.Arguments))
	}
	log.Printf("[Assistant] model=%s tools=%d elapsed=%v", c.model, len(actions), time.Since(started))

	return Reply{
		Message: sanitizeReply(msg.Content, len(actions) > 0),
		Actions: actions,
	}, nil
}

// userTurn builds the current user message, inlining an attached image as a
// data URL content part.
func userTurn(req types.ChatRequest) openai.ChatCompletionMessageParamUnion {
	if req.Image == nil || req.Image.Data == "" {
		return openai.UserMessage(req.Message)
	}
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Message),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:" + req.Image.MimeType + ";base64," + req.Image.Data,
		}),
	}
	return openai.UserMessage(parts)
}
