package dispatch

import (
	"context"
	"log"

	"focusdesk/app/core/action"
)

// HandlerTable binds each action type to a handler. Handlers are plain
// function values injected at wiring time; a nil field means the action is
// skipped. Handlers signal failure only through their error return, which is
// logged and never interrupts the rest of the batch.
type HandlerTable struct {
	OpenPage                func(ctx context.Context, page string) error
	CreateTask              func(ctx context.Context, title, date string) error
	DeleteTask              func(ctx context.Context, titleOrID string) error
	CreateKanbanItem        func(ctx context.Context, title, column string) error
	MoveKanbanItem          func(ctx context.Context, titleOrID, newColumn string) error
	CreateSchedule          func(ctx context.Context, payload action.SchedulePayload, startDate, endDate string) error
	AddActivitiesToSchedule func(ctx context.Context, activities []action.Activity) error
	SetAlarm                func(ctx context.Context, enabled bool, minutes int) error
	CreateManualAlarm       func(ctx context.Context, title string, minutes int) error
	StartTimer              func(ctx context.Context, minutes int) error
	PauseTimer              func(ctx context.Context) error
	StopTimer               func(ctx context.Context) error
	SetTimerMode            func(ctx context.Context, mode string, start bool) error
	ToggleTimerLoop         func(ctx context.Context, enabled bool) error
	LoadYouTubeVideo        func(ctx context.Context, url string) error
}

// Executor applies a batch of actions against a handler table.
type Executor struct {
	handlers *HandlerTable
}

func NewExecutor(handlers *HandlerTable) *Executor {
	return &Executor{handlers: handlers}
}

// Execute runs actions strictly in batch order, each at most once. There is
// no rollback: a failed or panicking handler is logged and the batch moves
// on, earlier side effects stay committed. With no handler table at all the
// whole batch is skipped.
func (e *Executor) Execute(ctx context.Context, actions []action.Action) {
	if e == nil || e.handlers == nil {
		if len(actions) > 0 {
			log.Printf("[Dispatch] no handler table bound, skipping %d action(s)", len(actions))
		}
		return
	}
	for _, act := range actions {
		e.dispatch(ctx, act)
	}
}

func (e *Executor) dispatch(ctx context.Context, act action.Action) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Dispatch] handler for %s panicked: %v", act.Kind(), r)
		}
	}()

	h := e.handlers
	var err error
	handled := true

	switch a := act.(type) {
	case action.OpenPage:
		if h.OpenPage != nil {
			err = h.OpenPage(ctx, a.Page)
		} else {
			handled = false
		}
	case action.CreateTask:
		if h.CreateTask != nil {
			err = h.CreateTask(ctx, a.Title, a.Date)
		} else {
			handled = false
		}
	case action.DeleteTask:
		if h.DeleteTask != nil {
			err = h.DeleteTask(ctx, a.TitleOrID)
		} else {
			handled = false
		}
	case action.CreateKanbanItem:
		if h.CreateKanbanItem != nil {
			err = h.CreateKanbanItem(ctx, a.Title, a.Column)
		} else {
			handled = false
		}
	case action.MoveKanbanItem:
		if h.MoveKanbanItem != nil {
			err = h.MoveKanbanItem(ctx, a.TitleOrID, a.NewColumn)
		} else {
			handled = false
		}
	case action.CreateSchedule:
		if h.CreateSchedule != nil {
			err = h.CreateSchedule(ctx, a.Schedule, a.StartDate, a.EndDate)
		} else {
			handled = false
		}
	case action.AddActivitiesToSchedule:
		if h.AddActivitiesToSchedule != nil {
			err = h.AddActivitiesToSchedule(ctx, a.Activities)
		} else {
			handled = false
		}
	case action.SetAlarm:
		if h.SetAlarm != nil {
			err = h.SetAlarm(ctx, a.Enabled, a.Minutes)
		} else {
			handled = false
		}
	case action.CreateManualAlarm:
		if h.CreateManualAlarm != nil {
			err = h.CreateManualAlarm(ctx, a.Title, a.Minutes)
		} else {
			handled = false
		}
	case action.StartTimer:
		if h.StartTimer != nil {
			err = h.StartTimer(ctx, a.Minutes)
		} else {
			handled = false
		}
	case action.PauseTimer:
		if h.PauseTimer != nil {
			err = h.PauseTimer(ctx)
		} else {
			handled = false
		}
	case action.StopTimer:
		if h.StopTimer != nil {
			err = h.StopTimer(ctx)
		} else {
			handled = false
		}
	case action.SetTimerMode:
		if h.SetTimerMode != nil {
			err = h.SetTimerMode(ctx, a.Mode, a.Start)
		} else {
			handled = false
		}
	case action.ToggleTimerLoop:
		if h.ToggleTimerLoop != nil {
			err = h.ToggleTimerLoop(ctx, a.Enabled)
		} else {
			handled = false
		}
	case action.LoadYouTubeVideo:
		if h.LoadYouTubeVideo != nil {
			err = h.LoadYouTubeVideo(ctx, a.URL)
		} else {
			handled = false
		}
	case action.PlaySound:
		// Recognized but intentionally inert.
	case action.Unrecognized:
		log.Printf("[Dispatch] unrecognized tool call %q skipped", a.Name)
	default:
		handled = false
	}

	if !handled {
		log.Printf("[Dispatch] no handler bound for %s, skipping", act.Kind())
	}
	if err != nil {
		log.Printf("[Dispatch] %s failed: %v", act.Kind(), err)
	}
}
