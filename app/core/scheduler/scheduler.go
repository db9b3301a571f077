// Package scheduler drives the recurring widget work. The focus timer
// countdown, the inactivity watchdog and the manual-alarm scan are all
// 1-second loops over in-memory state, so a single shared beat replaces
// per-widget tickers whose lifecycles would otherwise drift apart.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrHookExists = errors.New("scheduler: hook already registered")
	ErrRunning    = errors.New("scheduler: already running")
)

// HookStatus is the observable state of one registered hook, exposed on the
// status endpoint.
type HookStatus struct {
	Name         string
	Beats        int64
	LastRunAt    time.Time
	LastDuration time.Duration
	LastError    string
}

type hook struct {
	name string
	run  func(context.Context) error
}

// Heartbeat runs the registered hooks sequentially on one goroutine at a
// fixed cadence. A failing hook is logged and recorded; the rest of the beat
// still runs.
type Heartbeat struct {
	interval time.Duration

	mu      sync.Mutex
	hooks   []hook
	status  map[string]HookStatus
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = time.Second
	}
	return &Heartbeat{
		interval: interval,
		status:   make(map[string]HookStatus),
	}
}

// Register adds a hook. Hooks run in registration order on every beat.
func (h *Heartbeat) Register(name string, run func(context.Context) error) error {
	if name == "" {
		return errors.New("scheduler: hook name is required")
	}
	if run == nil {
		return errors.New("scheduler: hook func is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.hooks {
		if existing.name == name {
			return fmt.Errorf("%w: %s", ErrHookExists, name)
		}
	}
	h.hooks = append(h.hooks, hook{name: name, run: run})
	h.status[name] = HookStatus{Name: name}
	return nil
}

func (h *Heartbeat) Start(parent context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(parent)
	h.running = true
	h.cancel = cancel
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.loop(ctx, done)
	return nil
}

func (h *Heartbeat) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	h.mu.Lock()
	hooks := make([]hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for _, hk := range hooks {
		start := time.Now()
		err := hk.run(ctx)
		h.record(hk.name, start, time.Since(start), err)
		if err != nil {
			log.Printf("[Scheduler] hook=%s failed: %v", hk.name, err)
		}
	}
}

func (h *Heartbeat) record(name string, at time.Time, duration time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.status[name]
	st.Name = name
	st.Beats++
	st.LastRunAt = at
	st.LastDuration = duration
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
	h.status[name] = st
}

// Stop cancels the beat and waits for the goroutine to drain, up to timeout.
// Stopping an idle heartbeat is a no-op.
func (h *Heartbeat) Stop(timeout time.Duration) error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	cancel, done := h.cancel, h.done
	h.running = false
	h.cancel = nil
	h.done = nil
	h.mu.Unlock()

	cancel()
	if timeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("scheduler: stop timeout after %s", timeout)
	}
}

// Snapshot returns per-hook status in registration order.
func (h *Heartbeat) Snapshot() []HookStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := make([]HookStatus, 0, len(h.hooks))
	for _, hk := range h.hooks {
		items = append(items, h.status[hk.name])
	}
	return items
}
