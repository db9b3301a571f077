package kanban

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"focusdesk/app/core/action"
	"focusdesk/app/core/dataproxy"
	"focusdesk/app/core/notify"
	"focusdesk/app/pkg/types"
)

// Card is one kanban entry.
type Card struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Column string `json:"column"`
}

type boardDoc struct {
	ID    string `json:"id,omitempty"`
	Tasks []Card `json:"tasks"`
}

// Service manages the kanban board. The whole board is one proxy document;
// every mutation is read-modify-write over the full card list, so the last
// writer wins. Mutations update the in-memory cache optimistically and a
// failed remote write reconciles the cache by re-fetching.
type Service struct {
	proxy *dataproxy.Client
	bus   *notify.Bus

	mu    sync.Mutex
	docID string
	cache []Card

	now func() time.Time
}

func NewService(proxy *dataproxy.Client, bus *notify.Bus) *Service {
	return &Service{proxy: proxy, bus: bus, now: time.Now}
}

// Create appends a card, defaulting to the todo column, and opens the
// kanban window.
func (s *Service) Create(ctx context.Context, title, column string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("card title is required")
	}
	if column == "" {
		column = action.ColumnTodo
	}

	cards, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("create kanban card: %w", err)
	}

	card := Card{
		ID:     strconv.FormatInt(s.now().UnixMilli(), 10),
		Title:  title,
		Column: column,
	}
	updated := append(append([]Card{}, cards...), card)

	s.commit(updated)
	s.bus.Publish(notify.Event{Topic: notify.TopicOpenPage, Detail: "kanban"})
	return s.writeBack(ctx, updated)
}

// Move rewrites the column of every card matching by exact id or
// case-insensitive title, then writes the full list back.
func (s *Service) Move(ctx context.Context, titleOrID, newColumn string) error {
	cards, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("move kanban card: %w", err)
	}

	updated := make([]Card, len(cards))
	copy(updated, cards)
	matched := false
	for i := range updated {
		if updated[i].ID == titleOrID || strings.EqualFold(updated[i].Title, titleOrID) {
			updated[i].Column = newColumn
			matched = true
		}
	}
	if !matched {
		log.Printf("[Kanban] no card matched %q, board unchanged", titleOrID)
	}

	s.commit(updated)
	s.bus.Publish(notify.Event{Topic: notify.TopicOpenPage, Detail: "kanban"})
	return s.writeBack(ctx, updated)
}

// Snapshot refreshes from the proxy and returns the board in model-context
// shape. A fetch failure falls back to the last known cache.
func (s *Service) Snapshot(ctx context.Context) ([]types.ContextCard, error) {
	cards, err := s.load(ctx)
	if err != nil {
		s.mu.Lock()
		cards = append([]Card{}, s.cache...)
		s.mu.Unlock()
		log.Printf("[Kanban] snapshot falling back to cache: %v", err)
	}

	out := make([]types.ContextCard, 0, len(cards))
	for _, card := range cards {
		out = append(out, types.ContextCard{Title: card.Title, Column: card.Column})
	}
	return out, nil
}

func (s *Service) load(ctx context.Context) ([]Card, error) {
	body, err := s.proxy.List(ctx, dataproxy.CollectionKanban)
	if err != nil {
		return nil, err
	}

	var docs []boardDoc
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decode kanban board: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	s.docID = docs[0].ID
	s.mu.Unlock()
	return docs[0].Tasks, nil
}

func (s *Service) commit(cards []Card) {
	s.mu.Lock()
	s.cache = cards
	s.mu.Unlock()
	s.bus.Changed(notify.TopicKanban)
}

func (s *Service) writeBack(ctx context.Context, cards []Card) error {
	s.mu.Lock()
	docID := s.docID
	s.mu.Unlock()

	doc, err := json.Marshal(boardDoc{ID: docID, Tasks: cards})
	if err != nil {
		return fmt.Errorf("encode kanban board: %w", err)
	}

	id, err := s.proxy.Upsert(ctx, dataproxy.CollectionKanban, doc)
	if err != nil {
		s.reconcile(ctx)
		return fmt.Errorf("persist kanban board: %w", err)
	}
	if id != "" {
		s.mu.Lock()
		s.docID = id
		s.mu.Unlock()
	}
	return nil
}

// reconcile re-fetches the board after a failed write so the cache reflects
// whatever the store actually holds.
func (s *Service) reconcile(ctx context.Context) {
	cards, err := s.load(ctx)
	if err != nil {
		log.Printf("[Kanban] reconcile fetch failed: %v", err)
		return
	}
	s.commit(cards)
}
