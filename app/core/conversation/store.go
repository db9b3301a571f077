package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"focusdesk/app/core/db"
	"focusdesk/app/pkg/types"
)

const (
	defaultTitle   = "Nova Conversa"
	titleRuneLimit = 30
)

// Conversation is one persisted chat thread.
type Conversation struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Store persists conversations and their transcripts. The title of a
// conversation always tracks the most recent user turn, truncated.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Create(ctx context.Context, userID string) (Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Conversation{}, fmt.Errorf("user_id is required")
	}
	now := time.Now().Unix()
	conv := Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.Conn().ExecContext(ctx, query, conv.ID, conv.UserID, conv.Title, now, now); err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

func (s *Store) Get(ctx context.Context, conversationID string) (Conversation, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ?`
	var c Conversation
	err := s.db.Conn().QueryRowContext(ctx, query, conversationID).Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Conversation{}, err
	}
	return c, nil
}

func (s *Store) List(ctx context.Context, userID string, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.Conn().QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Conversation, 0, limit)
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// AppendTurn records one transcript entry. User turns retitle the
// conversation and mark it as the user's active one.
func (s *Store) AppendTurn(ctx context.Context, conversationID, userID, role, content string) error {
	if strings.TrimSpace(conversationID) == "" {
		return fmt.Errorf("conversation_id is required")
	}
	now := time.Now().Unix()

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertMsg := `INSERT INTO messages (id, conversation_id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertMsg, uuid.NewString(), conversationID, userID, role, content, now); err != nil {
		return err
	}

	if role == types.MessageRoleUser {
		updateConv := `UPDATE conversations SET updated_at = ?, title = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, updateConv, now, titleFrom(content), conversationID); err != nil {
			return err
		}
		setActive := `
INSERT INTO user_state (user_id, active_conversation_id, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET active_conversation_id = excluded.active_conversation_id, updated_at = excluded.updated_at`
		if _, err := tx.ExecContext(ctx, setActive, userID, conversationID, now); err != nil {
			return err
		}
	} else {
		updateConv := `UPDATE conversations SET updated_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, updateConv, now, conversationID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Transcript returns the oldest-first message history of a conversation.
func (s *Store) Transcript(ctx context.Context, conversationID string, limit int) ([]types.ConversationMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC LIMIT ?`
	rows, err := s.db.Conn().QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.ConversationMessage, 0, limit)
	for rows.Next() {
		var m types.ConversationMessage
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// ActiveConversation resolves the conversation a returning user left off in,
// creating a fresh one when nothing usable is on record.
func (s *Store) ActiveConversation(ctx context.Context, userID string) (Conversation, error) {
	var activeID sql.NullString
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT active_conversation_id FROM user_state WHERE user_id = ?`, userID).Scan(&activeID)
	if err != nil && err != sql.ErrNoRows {
		return Conversation{}, err
	}
	if activeID.Valid && activeID.String != "" {
		conv, getErr := s.Get(ctx, activeID.String)
		if getErr == nil {
			return conv, nil
		}
		if getErr != sql.ErrNoRows {
			return Conversation{}, getErr
		}
	}
	return s.Create(ctx, userID)
}

// Delete removes a conversation and its transcript. If it was the user's
// active conversation, the pointer is cleared rather than reassigned.
func (s *Store) Delete(ctx context.Context, conversationID, userID string) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, conversationID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_state SET active_conversation_id = NULL, updated_at = ? WHERE user_id = ? AND active_conversation_id = ?`,
		time.Now().Unix(), userID, conversationID); err != nil {
		return err
	}
	return tx.Commit()
}

func titleFrom(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return defaultTitle
	}
	runes := []rune(content)
	if len(runes) > titleRuneLimit {
		return string(runes[:titleRuneLimit])
	}
	return content
}
