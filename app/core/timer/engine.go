package timer

import (
	"sync"

	"focusdesk/app/core/action"
	"focusdesk/app/core/notify"
)

// State is the full focus-timer snapshot. Durations are minutes.
type State struct {
	Mode              string `json:"mode"`
	Minutes           int    `json:"minutes"`
	Seconds           int    `json:"seconds"`
	IsRunning         bool   `json:"is_running"`
	SessionLength     int    `json:"session_length"`
	ShortBreak        int    `json:"short_break"`
	LongBreak         int    `json:"long_break"`
	CustomMinutes     int    `json:"custom_minutes"`
	SessionsCompleted int    `json:"sessions_completed"`
	IsBreak           bool   `json:"is_break"`
	LoopEnabled       bool   `json:"loop_enabled"`
}

// Defaults configures the initial session/break lengths.
type Defaults struct {
	SessionLength int
	ShortBreak    int
	LongBreak     int
	CustomMinutes int
}

// Engine owns the timer state machine. All transitions are pure functions of
// the previous state; the engine serializes them behind a mutex and emits a
// change notification after every mutation.
type Engine struct {
	mu    sync.Mutex
	state State
	bus   *notify.Bus
}

func NewEngine(defaults Defaults, bus *notify.Bus) *Engine {
	if defaults.SessionLength <= 0 {
		defaults.SessionLength = 25
	}
	if defaults.ShortBreak <= 0 {
		defaults.ShortBreak = 5
	}
	if defaults.LongBreak <= 0 {
		defaults.LongBreak = 45
	}
	if defaults.CustomMinutes <= 0 {
		defaults.CustomMinutes = 15
	}
	return &Engine{
		state: State{
			Mode:          action.ModePomodoro,
			Minutes:       defaults.SessionLength,
			Seconds:       0,
			SessionLength: defaults.SessionLength,
			ShortBreak:    defaults.ShortBreak,
			LongBreak:     defaults.LongBreak,
			CustomMinutes: defaults.CustomMinutes,
		},
		bus: bus,
	}
}

// State returns a snapshot copy.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) mutate(apply func(prev State) State) State {
	e.mu.Lock()
	e.state = apply(e.state)
	next := e.state
	e.mu.Unlock()
	e.bus.Changed(notify.TopicTimer)
	return next
}

func modeMinutes(s State, mode string) int {
	switch mode {
	case action.ModeShort:
		return s.ShortBreak
	case action.ModeLong:
		return s.LongBreak
	case action.ModeCustom:
		return s.CustomMinutes
	default:
		return s.SessionLength
	}
}

// Start begins or resumes the countdown. An explicit minutes value becomes
// the new session length; without one, a paused non-zero countdown resumes
// in place and anything else restarts at the mode default.
func (e *Engine) Start(minutes int) State {
	return e.mutate(func(prev State) State {
		if minutes > 0 {
			prev.Minutes = minutes
			prev.Seconds = 0
			prev.SessionLength = minutes
			prev.IsBreak = false
			prev.IsRunning = true
			return prev
		}
		if !prev.IsRunning && (prev.Minutes > 0 || prev.Seconds > 0) {
			prev.IsRunning = true
			return prev
		}
		prev.Minutes = modeMinutes(prev, prev.Mode)
		prev.Seconds = 0
		prev.IsRunning = true
		return prev
	})
}

// Pause freezes the countdown in place.
func (e *Engine) Pause() State {
	return e.mutate(func(prev State) State {
		prev.IsRunning = false
		return prev
	})
}

// Stop resets to the current mode's full duration, not running, work phase.
func (e *Engine) Stop() State {
	return e.mutate(func(prev State) State {
		prev.Minutes = modeMinutes(prev, prev.Mode)
		prev.Seconds = 0
		prev.IsRunning = false
		prev.IsBreak = false
		return prev
	})
}

// SetMode switches mode with a full reset; start controls whether the new
// countdown begins immediately. A mode switch already implies stop+reset, so
// composed requests ("pause X and start Y") need only this call.
func (e *Engine) SetMode(mode string, start bool) State {
	switch mode {
	case action.ModePomodoro, action.ModeShort, action.ModeLong, action.ModeCustom:
	default:
		mode = action.ModePomodoro
	}
	return e.mutate(func(prev State) State {
		prev.Mode = mode
		prev.Minutes = modeMinutes(prev, mode)
		prev.Seconds = 0
		prev.IsRunning = start
		prev.IsBreak = false
		return prev
	})
}

// ToggleLoop sets whether a finished phase auto-starts the next one.
func (e *Engine) ToggleLoop(enabled bool) State {
	return e.mutate(func(prev State) State {
		prev.LoopEnabled = enabled
		return prev
	})
}

// Tick advances the countdown by one second. Reaching zero flips the phase:
// a finished work session starts a break (the long one after every 4th
// completed pomodoro), a finished break re-arms a work session. The new
// phase only auto-runs when looping is enabled. Ticking a stopped timer is a
// no-op.
func (e *Engine) Tick() State {
	return e.mutate(func(prev State) State {
		if !prev.IsRunning {
			return prev
		}
		seconds := prev.Seconds - 1
		if seconds >= 0 {
			prev.Seconds = seconds
			return prev
		}
		if prev.Minutes > 0 {
			prev.Minutes--
			prev.Seconds = 59
			return prev
		}

		if prev.IsBreak {
			prev.Minutes = prev.SessionLength
			prev.Seconds = 0
			prev.IsBreak = false
			prev.IsRunning = prev.LoopEnabled
			return prev
		}
		count := prev.SessionsCompleted
		if prev.Mode == action.ModePomodoro {
			count++
		}
		breakLength := prev.ShortBreak
		if count%4 == 0 {
			breakLength = prev.LongBreak
		}
		prev.Minutes = breakLength
		prev.Seconds = 0
		prev.SessionsCompleted = count
		prev.IsBreak = true
		prev.IsRunning = prev.LoopEnabled
		return prev
	})
}
