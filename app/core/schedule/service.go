package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"focusdesk/app/core/action"
	"focusdesk/app/core/dataproxy"
	"focusdesk/app/core/googleapi"
	"focusdesk/app/core/notify"
	"focusdesk/app/pkg/types"
)

// Activity is one weekly slot of a schedule as persisted.
type Activity struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	DayOfWeek      int      `json:"day_of_week"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	CompletedDates []string `json:"completed_dates"`
	Recurrence     string   `json:"recurrence,omitempty"`
	GoogleEventID  string   `json:"googleEventId,omitempty"`
}

// Schedule is one persisted weekly schedule document.
type Schedule struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
	CreatedAt   int64      `json:"created_at"`
}

type calendarAPI interface {
	DeleteEvent(ctx context.Context, eventID string) error
	CreateEventsBatch(ctx context.Context, events []googleapi.Event) ([]googleapi.CreatedEvent, error)
}

// SyncOptions shape the calendar date-range derivation.
type SyncOptions struct {
	RangeDays        int    // default range length when the model gives no end date
	DefaultStartTime string // HH:MM fallback for activities without times
	DefaultEndTime   string
}

// Service manages weekly schedules: proxy-backed persistence plus the
// asynchronous Google Calendar mirror. Calendar sync never blocks or
// reverts a schedule mutation; its outcome only surfaces as a toast.
type Service struct {
	proxy    *dataproxy.Client
	calendar calendarAPI
	bus      *notify.Bus
	opts     SyncOptions

	now func() time.Time
	// runAsync detaches the calendar sync from the mutating call.
	runAsync func(fn func())
}

func NewService(proxy *dataproxy.Client, calendar calendarAPI, bus *notify.Bus, opts SyncOptions) *Service {
	if opts.RangeDays <= 0 {
		opts.RangeDays = 7
	}
	if opts.DefaultStartTime == "" {
		opts.DefaultStartTime = "09:00"
	}
	if opts.DefaultEndTime == "" {
		opts.DefaultEndTime = "10:00"
	}
	return &Service{
		proxy:    proxy,
		calendar: calendar,
		bus:      bus,
		opts:     opts,
		now:      time.Now,
		runAsync: func(fn func()) { go fn() },
	}
}

// Create persists a new schedule with fresh ids everywhere, switches the UI
// to the schedule view and kicks off the calendar sync for the derived date
// range (explicit bounds from the model, else today .. today+RangeDays).
func (s *Service) Create(ctx context.Context, payload action.SchedulePayload, startDate, endDate string) error {
	sched := Schedule{
		ID:          uuid.NewString(),
		Title:       payload.Title,
		Description: payload.Description,
		Activities:  make([]Activity, 0, len(payload.Activities)),
		CreatedAt:   s.now().Unix(),
	}
	for _, a := range payload.Activities {
		sched.Activities = append(sched.Activities, newActivity(a))
	}

	if err := s.persist(ctx, sched); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	s.bus.Changed(notify.TopicSchedules)
	s.bus.Publish(notify.Event{Topic: notify.TopicOpenPage, Detail: "schedules"})

	start, end := s.dateRange(startDate, endDate)
	s.runAsync(func() {
		// Detached from the request context on purpose: the creating turn
		// may be done long before the sync finishes.
		if err := s.SyncToCalendar(context.Background(), sched, start, end); err != nil {
			log.Printf("[Schedule] calendar sync failed: %v", err)
			s.bus.Toast(notify.LevelWarning, "Cronograma criado, mas erro ao sincronizar com Google Agenda.")
			return
		}
		s.bus.Toast(notify.LevelSuccess, "Cronograma criado e sincronizado com Google Agenda!")
	})
	return nil
}

// AddActivities appends to the most recently created schedule. It never
// creates a schedule document of its own.
func (s *Service) AddActivities(ctx context.Context, activities []action.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	schedules, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("add activities: %w", err)
	}
	if len(schedules) == 0 {
		log.Printf("[Schedule] no schedule exists, dropping %d activities", len(activities))
		return nil
	}

	target := schedules[0]
	for _, candidate := range schedules[1:] {
		if candidate.CreatedAt > target.CreatedAt {
			target = candidate
		}
	}

	for _, a := range activities {
		target.Activities = append(target.Activities, newActivity(a))
	}
	if err := s.persist(ctx, target); err != nil {
		return fmt.Errorf("add activities: %w", err)
	}
	s.bus.Changed(notify.TopicSchedules)
	return nil
}

// List fetches every schedule document.
func (s *Service) List(ctx context.Context) ([]Schedule, error) {
	body, err := s.proxy.List(ctx, dataproxy.CollectionSchedules)
	if err != nil {
		return nil, err
	}
	var schedules []Schedule
	if err := json.Unmarshal(body, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return schedules, nil
}

// Snapshot returns schedules in model-context shape.
func (s *Service) Snapshot(ctx context.Context) ([]types.ContextSchedule, error) {
	schedules, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.ContextSchedule, 0, len(schedules))
	for _, sched := range schedules {
		out = append(out, types.ContextSchedule{
			Title:         sched.Title,
			ActivityCount: len(sched.Activities),
		})
	}
	return out, nil
}

func (s *Service) persist(ctx context.Context, sched Schedule) error {
	doc, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	_, err = s.proxy.Upsert(ctx, dataproxy.CollectionSchedules, doc)
	return err
}

func (s *Service) dateRange(startDate, endDate string) (string, string) {
	if startDate == "" {
		startDate = s.now().Format("2006-01-02")
	}
	if endDate == "" {
		start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
		if err != nil {
			start = s.now()
		}
		endDate = start.AddDate(0, 0, s.opts.RangeDays).Format("2006-01-02")
	}
	return startDate, endDate
}

func newActivity(a action.Activity) Activity {
	return Activity{
		ID:             uuid.NewString(),
		Title:          a.Title,
		Description:    a.Description,
		DayOfWeek:      a.DayOfWeek,
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		CompletedDates: []string{},
	}
}
