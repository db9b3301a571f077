package goals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"focusdesk/app/core/googleapi"
	"focusdesk/app/core/notify"
	"focusdesk/app/pkg/types"
)

// DefaultDueHour is the time-of-day stamped on a goal created with a bare
// date.
const DefaultDueHour = 9

type taskAPI interface {
	CreateTask(ctx context.Context, task googleapi.Task) (string, error)
	ListTasks(ctx context.Context) ([]googleapi.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	UpdateTask(ctx context.Context, taskID string, updates googleapi.TaskUpdate) error
}

// Service manages the user's goal list, which lives remotely in the task
// service. A missing Google token downgrades every mutation to a logged
// no-op so an unlinked account never breaks a chat turn.
type Service struct {
	api taskAPI
	bus *notify.Bus
}

func NewService(api taskAPI, bus *notify.Bus) *Service {
	return &Service{api: api, bus: bus}
}

// Create adds a goal with status "needsAction". A date (YYYY-MM-DD) becomes
// a due timestamp at 09:00 local time.
func (s *Service) Create(ctx context.Context, title, date string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("goal title is required")
	}

	task := googleapi.Task{Title: title, Status: googleapi.TaskStatusNeedsAction}
	if date != "" {
		due, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			log.Printf("[Goals] ignoring unparseable goal date %q: %v", date, err)
		} else {
			task.Due = time.Date(due.Year(), due.Month(), due.Day(), DefaultDueHour, 0, 0, 0, time.Local).Format(time.RFC3339)
		}
	}

	id, err := s.api.CreateTask(ctx, task)
	if errors.Is(err, googleapi.ErrNoAccessToken) {
		log.Printf("[Goals] no Google token, skipping remote create for %q", title)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create goal %q: %w", title, err)
	}

	log.Printf("[Goals] created %q (%s)", title, id)
	s.bus.Changed(notify.TopicTasks)
	return nil
}

// Delete resolves a goal by case-insensitive title or exact id against the
// live remote list and removes it. An unmatched reference logs "not found"
// and mutates nothing.
func (s *Service) Delete(ctx context.Context, titleOrID string) error {
	tasks, err := s.api.ListTasks(ctx)
	if errors.Is(err, googleapi.ErrNoAccessToken) {
		log.Printf("[Goals] no Google token, skipping remote delete for %q", titleOrID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve goal %q: %w", titleOrID, err)
	}

	target := ""
	for _, task := range tasks {
		if task.ID == titleOrID || strings.EqualFold(task.Title, titleOrID) {
			target = task.ID
			break
		}
	}
	if target == "" {
		log.Printf("[Goals] goal not found for deletion: %q", titleOrID)
		return nil
	}

	if err := s.api.DeleteTask(ctx, target); err != nil {
		return fmt.Errorf("delete goal %s: %w", target, err)
	}
	s.bus.Changed(notify.TopicTasks)
	return nil
}

// Update patches a goal resolved the same way Delete resolves one.
func (s *Service) Update(ctx context.Context, titleOrID string, updates googleapi.TaskUpdate) error {
	tasks, err := s.api.ListTasks(ctx)
	if errors.Is(err, googleapi.ErrNoAccessToken) {
		log.Printf("[Goals] no Google token, skipping remote update for %q", titleOrID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve goal %q: %w", titleOrID, err)
	}

	for _, task := range tasks {
		if task.ID == titleOrID || strings.EqualFold(task.Title, titleOrID) {
			if err := s.api.UpdateTask(ctx, task.ID, updates); err != nil {
				return fmt.Errorf("update goal %s: %w", task.ID, err)
			}
			s.bus.Changed(notify.TopicTasks)
			return nil
		}
	}

	log.Printf("[Goals] goal not found for update: %q", titleOrID)
	return nil
}

// Snapshot returns the goal list in the shape injected into the model
// context. Without a token it reports an empty list rather than erroring.
func (s *Service) Snapshot(ctx context.Context) ([]types.ContextTask, error) {
	tasks, err := s.api.ListTasks(ctx)
	if errors.Is(err, googleapi.ErrNoAccessToken) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	out := make([]types.ContextTask, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, types.ContextTask{
			Title:     task.Title,
			Completed: task.Status == googleapi.TaskStatusCompleted,
		})
	}
	return out, nil
}
