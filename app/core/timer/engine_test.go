package timer

import (
	"testing"

	"focusdesk/app/core/notify"
)

func newTestEngine() *Engine {
	return NewEngine(Defaults{SessionLength: 25, ShortBreak: 5, LongBreak: 45, CustomMinutes: 15}, notify.NewBus())
}

func TestInitialState(t *testing.T) {
	s := newTestEngine().State()
	if s.Mode != "pomodoro" || s.Minutes != 25 || s.Seconds != 0 {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.IsRunning || s.IsBreak || s.LoopEnabled {
		t.Fatalf("expected idle start: %+v", s)
	}
}

func TestStartWithExplicitMinutesBecomesSessionLength(t *testing.T) {
	e := newTestEngine()
	s := e.Start(50)
	if s.Minutes != 50 || s.Seconds != 0 || !s.IsRunning {
		t.Fatalf("unexpected state: %+v", s)
	}
	if s.SessionLength != 50 {
		t.Fatalf("explicit minutes must become session length, got %d", s.SessionLength)
	}
}

func TestStartResumesPausedCountdown(t *testing.T) {
	e := newTestEngine()
	e.Start(10)
	e.Tick()
	paused := e.Pause()
	if paused.IsRunning {
		t.Fatal("expected paused")
	}

	resumed := e.Start(0)
	if !resumed.IsRunning {
		t.Fatal("expected resume")
	}
	if resumed.Minutes != paused.Minutes || resumed.Seconds != paused.Seconds {
		t.Fatalf("resume must not reset countdown: %+v vs %+v", resumed, paused)
	}
}

func TestStartAfterStopUsesModeDefault(t *testing.T) {
	e := newTestEngine()
	e.SetMode("short", false)
	s := e.Start(0)
	if s.Minutes != 5 || !s.IsRunning {
		t.Fatalf("expected short-break default 5, got %+v", s)
	}
}

func TestTickCountsDown(t *testing.T) {
	e := newTestEngine()
	e.Start(2)
	s := e.Tick()
	if s.Minutes != 1 || s.Seconds != 59 {
		t.Fatalf("unexpected state after first tick: %+v", s)
	}
	s = e.Tick()
	if s.Minutes != 1 || s.Seconds != 58 {
		t.Fatalf("unexpected state after second tick: %+v", s)
	}
}

func TestTickWhileStoppedIsNoOp(t *testing.T) {
	e := newTestEngine()
	before := e.State()
	after := e.Tick()
	if before != after {
		t.Fatalf("tick on idle timer mutated state: %+v -> %+v", before, after)
	}
}

func drainToZero(e *Engine) State {
	s := e.State()
	for s.IsRunning && (s.Minutes > 0 || s.Seconds > 0) {
		s = e.Tick()
	}
	return s
}

func TestWorkCompletionStartsShortBreakPaused(t *testing.T) {
	e := newTestEngine()
	e.Start(1)
	drainToZero(e)

	// One more tick at 0:00 completes the session.
	s := e.Tick()
	if !s.IsBreak {
		t.Fatalf("expected break phase: %+v", s)
	}
	if s.Minutes != 5 || s.Seconds != 0 {
		t.Fatalf("expected short break armed, got %d:%02d", s.Minutes, s.Seconds)
	}
	if s.IsRunning {
		t.Fatal("without loop the break must wait for an explicit start")
	}
	if s.SessionsCompleted != 1 {
		t.Fatalf("expected 1 completed session, got %d", s.SessionsCompleted)
	}
}

func TestLoopKeepsPhasesRunning(t *testing.T) {
	e := newTestEngine()
	e.ToggleLoop(true)
	e.Start(1)
	drainToZero(e)

	s := e.Tick()
	if !s.IsBreak || !s.IsRunning {
		t.Fatalf("expected running break with loop: %+v", s)
	}

	drainToZero(e)
	s = e.Tick()
	if s.IsBreak || !s.IsRunning {
		t.Fatalf("expected running work session after break: %+v", s)
	}
	if s.Minutes != s.SessionLength {
		t.Fatalf("work session must re-arm to session length: %+v", s)
	}
}

func TestEveryFourthPomodoroGetsLongBreak(t *testing.T) {
	e := newTestEngine()
	e.ToggleLoop(true)

	finishWork := func() State {
		e.mutate(func(prev State) State {
			prev.Minutes = 0
			prev.Seconds = 0
			prev.IsBreak = false
			prev.IsRunning = true
			return prev
		})
		return e.Tick()
	}

	for i := 1; i <= 4; i++ {
		s := finishWork()
		if s.SessionsCompleted != i {
			t.Fatalf("expected %d sessions, got %d", i, s.SessionsCompleted)
		}
		wantBreak := 5
		if i == 4 {
			wantBreak = 45
		}
		if s.Minutes != wantBreak {
			t.Fatalf("session %d: expected %d-minute break, got %d", i, wantBreak, s.Minutes)
		}
	}
}

func TestNonPomodoroModeDoesNotCountSessions(t *testing.T) {
	e := newTestEngine()
	e.SetMode("custom", true)
	e.mutate(func(prev State) State {
		prev.Minutes = 0
		prev.Seconds = 0
		return prev
	})

	s := e.Tick()
	if s.SessionsCompleted != 0 {
		t.Fatalf("custom mode must not count pomodoros, got %d", s.SessionsCompleted)
	}
	if !s.IsBreak {
		t.Fatalf("expected break phase: %+v", s)
	}
}

func TestSetModeResetsAndOptionallyStarts(t *testing.T) {
	e := newTestEngine()
	e.Start(1)
	e.Tick()

	s := e.SetMode("short", true)
	if s.Mode != "short" || s.Minutes != 5 || s.Seconds != 0 {
		t.Fatalf("unexpected state: %+v", s)
	}
	if !s.IsRunning || s.IsBreak {
		t.Fatalf("expected immediate clean start: %+v", s)
	}

	s = e.SetMode("long", false)
	if s.IsRunning || s.Minutes != 45 {
		t.Fatalf("expected armed long break not running: %+v", s)
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	e := newTestEngine()
	s := e.SetMode("ultradian", false)
	if s.Mode != "pomodoro" {
		t.Fatalf("unknown mode must fall back to pomodoro, got %q", s.Mode)
	}
}

func TestStopResetsToModeDefault(t *testing.T) {
	e := newTestEngine()
	e.SetMode("custom", true)
	e.Tick()
	s := e.Stop()
	if s.Minutes != 15 || s.Seconds != 0 || s.IsRunning || s.IsBreak {
		t.Fatalf("unexpected state after stop: %+v", s)
	}
}
