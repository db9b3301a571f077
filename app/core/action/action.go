package action

import "focusdesk/app/pkg/types"

// Kanban columns accepted from the model.
const (
	ColumnTodo       = "todo"
	ColumnInProgress = "in-progress"
	ColumnDone       = "done"
)

// Timer modes.
const (
	ModePomodoro = "pomodoro"
	ModeShort    = "short"
	ModeLong     = "long"
	ModeCustom   = "custom"
)

// Activity is a sanitized weekly-schedule entry as produced by translation.
// Defaults are applied before an Activity ever leaves this package.
type Activity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// SchedulePayload is the schedule body carried by a CreateSchedule action.
type SchedulePayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
}

// Action is one typed command decoded from a model tool call. Variants are
// closed: everything the dispatcher can ever see is declared in this file,
// with Unrecognized absorbing tool names this build does not know.
type Action interface {
	Kind() string
	Summary() types.ActionSummary
}

type OpenPage struct {
	Page string
}

type CreateTask struct {
	Title string
	Date  string // YYYY-MM-DD, optional
}

type DeleteTask struct {
	TitleOrID string
}

type CreateKanbanItem struct {
	Title  string
	Column string
}

type MoveKanbanItem struct {
	TitleOrID string
	NewColumn string
}

type CreateSchedule struct {
	Schedule  SchedulePayload
	StartDate string // YYYY-MM-DD, optional
	EndDate   string // YYYY-MM-DD, optional
}

type AddActivitiesToSchedule struct {
	Activities []Activity
}

type SetAlarm struct {
	Enabled bool
	Minutes int
}

type CreateManualAlarm struct {
	Title   string
	Minutes int
}

type StartTimer struct {
	Minutes int // 0 means resume / mode default
}

type PauseTimer struct{}

type StopTimer struct{}

type SetTimerMode struct {
	Mode  string
	Start bool
}

type ToggleTimerLoop struct {
	Enabled bool
}

type LoadYouTubeVideo struct {
	URL string
}

type PlaySound struct {
	Sound string
}

// Unrecognized keeps the original tool name so the dispatcher can log the
// skip instead of dropping the call on the floor during translation.
type Unrecognized struct {
	Name string
}

func (OpenPage) Kind() string                { return "openPage" }
func (CreateTask) Kind() string              { return "createTask" }
func (DeleteTask) Kind() string              { return "deleteTask" }
func (CreateKanbanItem) Kind() string        { return "createKanbanItem" }
func (MoveKanbanItem) Kind() string          { return "moveKanbanItem" }
func (CreateSchedule) Kind() string          { return "createSchedule" }
func (AddActivitiesToSchedule) Kind() string { return "addActivitiesToSchedule" }
func (SetAlarm) Kind() string                { return "setAlarm" }
func (CreateManualAlarm) Kind() string       { return "createManualAlarm" }
func (StartTimer) Kind() string              { return "startTimer" }
func (PauseTimer) Kind() string              { return "pauseTimer" }
func (StopTimer) Kind() string               { return "stopTimer" }
func (SetTimerMode) Kind() string            { return "setTimerMode" }
func (ToggleTimerLoop) Kind() string         { return "toggleTimerLoop" }
func (LoadYouTubeVideo) Kind() string        { return "loadYouTubeVideo" }
func (PlaySound) Kind() string               { return "playSound" }
func (Unrecognized) Kind() string            { return "unrecognized" }

func summary(kind string, fields map[string]interface{}) types.ActionSummary {
	return types.ActionSummary{Type: kind, Fields: fields}
}

func (a OpenPage) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"page": a.Page})
}

func (a CreateTask) Summary() types.ActionSummary {
	fields := map[string]interface{}{"title": a.Title}
	if a.Date != "" {
		fields["data"] = a.Date
	}
	return summary(a.Kind(), fields)
}

func (a DeleteTask) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"titleOrId": a.TitleOrID})
}

func (a CreateKanbanItem) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"title": a.Title, "column": a.Column})
}

func (a MoveKanbanItem) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"titleOrId": a.TitleOrID, "newColumn": a.NewColumn})
}

func (a CreateSchedule) Summary() types.ActionSummary {
	fields := map[string]interface{}{"schedule": a.Schedule}
	if a.StartDate != "" {
		fields["data_inicio"] = a.StartDate
	}
	if a.EndDate != "" {
		fields["data_fim"] = a.EndDate
	}
	return summary(a.Kind(), fields)
}

func (a AddActivitiesToSchedule) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"activities": a.Activities})
}

func (a SetAlarm) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"enabled": a.Enabled, "minutes": a.Minutes})
}

func (a CreateManualAlarm) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"title": a.Title, "minutes": a.Minutes})
}

func (a StartTimer) Summary() types.ActionSummary {
	fields := map[string]interface{}{}
	if a.Minutes > 0 {
		fields["minutes"] = a.Minutes
	}
	return summary(a.Kind(), fields)
}

func (a PauseTimer) Summary() types.ActionSummary { return summary(a.Kind(), nil) }

func (a StopTimer) Summary() types.ActionSummary { return summary(a.Kind(), nil) }

func (a SetTimerMode) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"mode": a.Mode, "start": a.Start})
}

func (a ToggleTimerLoop) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"enabled": a.Enabled})
}

func (a LoadYouTubeVideo) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"url": a.URL})
}

func (a PlaySound) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"sound": a.Sound})
}

func (a Unrecognized) Summary() types.ActionSummary {
	return summary(a.Kind(), map[string]interface{}{"name": a.Name})
}
