package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"focusdesk/app/pkg/types"
)

// CLIChannel is a stdin/stdout chat surface for local use.
type CLIChannel struct {
	id     string
	userID string
}

func NewCLIChannel(userID string) *CLIChannel {
	if strings.TrimSpace(userID) == "" {
		userID = "local_user"
	}
	return &CLIChannel{id: "cli", userID: userID}
}

func (c *CLIChannel) ID() string {
	return c.id
}

func (c *CLIChannel) Start(ctx context.Context, handler func(types.ChatRequest)) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(">> FocusDesk CLI started. Type 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			fmt.Print("> ")
			if !scanner.Scan() {
				return nil
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				fmt.Println("Exiting CLI loop...")
				return nil
			}

			handler(types.ChatRequest{
				ID:        fmt.Sprintf("cli-%d", time.Now().UnixNano()),
				ChannelID: c.id,
				UserID:    c.userID,
				Message:   text,
			})
		}
	}
}

func (c *CLIChannel) Send(_ context.Context, reply types.ChatReply) error {
	fmt.Printf("[FocusDesk]: %s\n", reply.Message)
	for _, act := range reply.Actions {
		fmt.Printf("  * ação: %s\n", act.Type)
	}
	return nil
}
