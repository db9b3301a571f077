package alarm

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"focusdesk/app/core/notify"
)

// ManualAlarm is a one-shot alarm. TriggerAt is unix milliseconds.
type ManualAlarm struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TriggerAt   int64  `json:"trigger_time"`
	IsTriggered bool   `json:"is_triggered"`
}

// WatchdogState is a snapshot of the inactivity alarm.
type WatchdogState struct {
	Enabled          bool  `json:"enabled"`
	TimeoutMinutes   int   `json:"timeout_minutes"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	Triggered        bool  `json:"triggered"`
}

// Service owns the inactivity watchdog and the manual alarm list. Both are
// driven by the 1 Hz Scan; each scan is an idempotent no-op while no trigger
// condition holds. Persistence of manual alarms is fire-and-forget through
// the injected hooks.
type Service struct {
	mu sync.Mutex

	now func() time.Time
	bus *notify.Bus

	persist func(ManualAlarm)
	remove  func(id string)

	enabled        bool
	timeoutMinutes int
	lastActivity   time.Time
	remaining      int64
	triggered      bool

	alarms []ManualAlarm
}

func NewService(bus *notify.Bus, persist func(ManualAlarm), remove func(id string)) *Service {
	return &Service{
		now:            time.Now,
		bus:            bus,
		persist:        persist,
		remove:         remove,
		timeoutMinutes: 5,
		lastActivity:   time.Now(),
	}
}

// SetWatchdog arms or disarms the inactivity alarm. Arming rearms the
// last-activity timestamp so the countdown starts from now.
func (s *Service) SetWatchdog(enabled bool, minutes int) {
	s.mu.Lock()
	if minutes > 0 {
		s.timeoutMinutes = minutes
	}
	s.enabled = enabled
	s.lastActivity = s.now()
	s.triggered = false
	if !enabled {
		s.remaining = 0
	}
	s.mu.Unlock()
	s.bus.Changed(notify.TopicAlarms)
}

// RecordActivity rearms the watchdog and clears a fired inactivity alarm.
func (s *Service) RecordActivity() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.triggered = false
	s.mu.Unlock()
}

// Watchdog returns the current inactivity-alarm snapshot.
func (s *Service) Watchdog() WatchdogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WatchdogState{
		Enabled:          s.enabled,
		TimeoutMinutes:   s.timeoutMinutes,
		RemainingSeconds: s.remaining,
		Triggered:        s.triggered,
	}
}

// CreateManual schedules a one-shot alarm minutes from now.
func (s *Service) CreateManual(title string, minutes int) ManualAlarm {
	alarm := ManualAlarm{
		ID:        uuid.NewString(),
		Title:     title,
		TriggerAt: s.now().Add(time.Duration(minutes) * time.Minute).UnixMilli(),
	}
	s.mu.Lock()
	s.alarms = append(s.alarms, alarm)
	s.mu.Unlock()

	if s.persist != nil {
		s.persist(alarm)
	}
	s.bus.Changed(notify.TopicAlarms)
	return alarm
}

// Dismiss drops one manual alarm, fired or not.
func (s *Service) Dismiss(id string) {
	s.mu.Lock()
	kept := s.alarms[:0]
	removed := false
	for _, alarm := range s.alarms {
		if alarm.ID == id {
			removed = true
			continue
		}
		kept = append(kept, alarm)
	}
	s.alarms = kept
	s.mu.Unlock()

	if removed {
		if s.remove != nil {
			s.remove(id)
		}
		s.bus.Changed(notify.TopicAlarms)
	}
}

// Manual returns a snapshot of the manual alarm list.
func (s *Service) Manual() []ManualAlarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ManualAlarm, len(s.alarms))
	copy(out, s.alarms)
	return out
}

// Scan is the per-second pass: it recomputes the watchdog countdown and
// fires any manual alarm whose trigger time has passed.
func (s *Service) Scan() {
	now := s.now()

	s.mu.Lock()
	var toasts []string
	watchdogFired := false

	if s.enabled {
		threshold := time.Duration(s.timeoutMinutes) * time.Minute
		inactive := now.Sub(s.lastActivity)
		remaining := int64((threshold - inactive) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
		s.remaining = remaining
		if remaining == 0 && !s.triggered {
			s.triggered = true
			watchdogFired = true
		}
	}

	for i := range s.alarms {
		if !s.alarms[i].IsTriggered && s.alarms[i].TriggerAt <= now.UnixMilli() {
			s.alarms[i].IsTriggered = true
			toasts = append(toasts, s.alarms[i].Title)
		}
	}
	s.mu.Unlock()

	if watchdogFired {
		s.bus.Toast(notify.LevelWarning, "Você está inativo há um tempo. Hora de voltar ao foco!")
		s.bus.Changed(notify.TopicAlarms)
	}
	for _, title := range toasts {
		s.bus.Toast(notify.LevelWarning, "⏰ "+title)
	}
	if len(toasts) > 0 {
		s.bus.Changed(notify.TopicAlarms)
	}
}
