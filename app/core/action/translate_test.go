package action

import (
	"encoding/json"
	"testing"
)

func TestTranslateCreateScheduleSanitizesActivities(t *testing.T) {
	args := `{"titulo":"Estudos","atividades":[{"titulo":"Ler","dia_da_semana":1}]}`

	act := Translate("criar_cronograma", args)
	cs, ok := act.(CreateSchedule)
	if !ok {
		t.Fatalf("expected CreateSchedule, got %T", act)
	}
	if cs.Schedule.Title != "Estudos" {
		t.Fatalf("unexpected schedule title: %q", cs.Schedule.Title)
	}
	if len(cs.Schedule.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(cs.Schedule.Activities))
	}
	a := cs.Schedule.Activities[0]
	if a.Title != "Ler" {
		t.Fatalf("unexpected activity title: %q", a.Title)
	}
	if a.DayOfWeek != 1 {
		t.Fatalf("unexpected day_of_week: %d", a.DayOfWeek)
	}
	if a.StartTime != "09:00" || a.EndTime != "10:00" {
		t.Fatalf("expected default times 09:00/10:00, got %q/%q", a.StartTime, a.EndTime)
	}
	if a.Description != "" {
		t.Fatalf("expected empty description, got %q", a.Description)
	}
}

func TestTranslateCreateSchedulePrefersLocalizedActivityFields(t *testing.T) {
	args := `{"titulo":"Treino","atividades":[{"titulo":"Correr","title":"Run","hora_inicio":"06:30","start_time":"07:00","dia_da_semana":3}]}`

	cs := Translate("criar_cronograma", args).(CreateSchedule)
	a := cs.Schedule.Activities[0]
	if a.Title != "Correr" {
		t.Fatalf("expected localized title to win, got %q", a.Title)
	}
	if a.StartTime != "06:30" {
		t.Fatalf("expected localized start time to win, got %q", a.StartTime)
	}
}

func TestTranslateCreateScheduleAcceptsEnglishFallbackFields(t *testing.T) {
	args := `{"titulo":"Leitura","atividades":[{"title":"Ler","day_of_week":2,"start_time":"20:00","end_time":"21:00"}]}`

	cs := Translate("criar_cronograma", args).(CreateSchedule)
	a := cs.Schedule.Activities[0]
	if a.Title != "Ler" {
		t.Fatalf("expected english fallback title, got %q", a.Title)
	}
	if a.StartTime != "20:00" || a.EndTime != "21:00" {
		t.Fatalf("unexpected times: %q/%q", a.StartTime, a.EndTime)
	}
	// day_of_week has no english fallback in the tool schema; a missing
	// dia_da_semana lands on Sunday.
	if a.DayOfWeek != 0 {
		t.Fatalf("expected day_of_week 0, got %d", a.DayOfWeek)
	}
}

func TestTranslateCreateScheduleAppliesPlaceholders(t *testing.T) {
	args := `{"atividades":[{"dia_da_semana":"terça"}]}`

	cs := Translate("criar_cronograma", args).(CreateSchedule)
	if cs.Schedule.Title != "Novo Cronograma" {
		t.Fatalf("expected placeholder schedule title, got %q", cs.Schedule.Title)
	}
	a := cs.Schedule.Activities[0]
	if a.Title != "Atividade sem título" {
		t.Fatalf("expected placeholder activity title, got %q", a.Title)
	}
	if a.DayOfWeek != 0 {
		t.Fatalf("non-numeric day_of_week should default to 0, got %d", a.DayOfWeek)
	}
}

func TestTranslateCreateScheduleResetsOutOfRangeDay(t *testing.T) {
	args := `{"titulo":"Semana","atividades":[{"titulo":"Ler","dia_da_semana":9},{"titulo":"Correr","dia_da_semana":-1},{"titulo":"Nadar","dia_da_semana":6}]}`

	cs := Translate("criar_cronograma", args).(CreateSchedule)
	if len(cs.Schedule.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(cs.Schedule.Activities))
	}
	if d := cs.Schedule.Activities[0].DayOfWeek; d != 0 {
		t.Fatalf("day 9 not reset to 0, got %d", d)
	}
	if d := cs.Schedule.Activities[1].DayOfWeek; d != 0 {
		t.Fatalf("day -1 not reset to 0, got %d", d)
	}
	if d := cs.Schedule.Activities[2].DayOfWeek; d != 6 {
		t.Fatalf("day 6 mangled, got %d", d)
	}
}

func TestTranslateCreateScheduleCarriesDateRange(t *testing.T) {
	args := `{"titulo":"Provas","data_inicio":"2026-09-01","data_fim":"2026-09-30","atividades":[]}`

	cs := Translate("criar_cronograma", args).(CreateSchedule)
	if cs.StartDate != "2026-09-01" || cs.EndDate != "2026-09-30" {
		t.Fatalf("unexpected date range: %q..%q", cs.StartDate, cs.EndDate)
	}
	if len(cs.Schedule.Activities) != 0 {
		t.Fatalf("expected no activities, got %d", len(cs.Schedule.Activities))
	}
}

func TestTranslateAddActivities(t *testing.T) {
	args := `{"atividades":[{"titulo":"Revisar","dia_da_semana":5,"hora_inicio":"14:00","hora_fim":"15:30"}]}`

	act := Translate("adicionar_atividades_cronograma", args)
	aa, ok := act.(AddActivitiesToSchedule)
	if !ok {
		t.Fatalf("expected AddActivitiesToSchedule, got %T", act)
	}
	if len(aa.Activities) != 1 || aa.Activities[0].EndTime != "15:30" {
		t.Fatalf("unexpected activities: %+v", aa.Activities)
	}
}

func TestTranslateTaskAndKanbanCalls(t *testing.T) {
	if a := Translate("criar_tarefa", `{"titulo":"Estudar Go","data":"2026-09-02"}`); a != (CreateTask{Title: "Estudar Go", Date: "2026-09-02"}) {
		t.Fatalf("unexpected createTask: %+v", a)
	}
	if a := Translate("excluir_tarefa", `{"titulo_ou_id":"Estudar Go"}`); a != (DeleteTask{TitleOrID: "Estudar Go"}) {
		t.Fatalf("unexpected deleteTask: %+v", a)
	}
	if a := Translate("criar_item_kanban", `{"titulo":"Refatorar","coluna":"in-progress"}`); a != (CreateKanbanItem{Title: "Refatorar", Column: "in-progress"}) {
		t.Fatalf("unexpected createKanbanItem: %+v", a)
	}
	if a := Translate("mover_item_kanban", `{"titulo_ou_id":"Refatorar","nova_coluna":"done"}`); a != (MoveKanbanItem{TitleOrID: "Refatorar", NewColumn: "done"}) {
		t.Fatalf("unexpected moveKanbanItem: %+v", a)
	}
	if a := Translate("navegar_para_pagina", `{"pagina":"kanban"}`); a != (OpenPage{Page: "kanban"}) {
		t.Fatalf("unexpected openPage: %+v", a)
	}
}

func TestTranslateTimerAndAlarmCalls(t *testing.T) {
	if a := Translate("iniciar_timer", `{"minutos":50}`); a != (StartTimer{Minutes: 50}) {
		t.Fatalf("unexpected startTimer: %+v", a)
	}
	if a := Translate("iniciar_timer", `{}`); a != (StartTimer{}) {
		t.Fatalf("expected zero minutes for bare start, got %+v", a)
	}
	if a := Translate("pausar_timer", `{}`); a != (PauseTimer{}) {
		t.Fatalf("unexpected pauseTimer: %+v", a)
	}
	if a := Translate("parar_timer", `{}`); a != (StopTimer{}) {
		t.Fatalf("unexpected stopTimer: %+v", a)
	}
	if a := Translate("definir_modo_timer", `{"modo":"short","iniciar":true}`); a != (SetTimerMode{Mode: "short", Start: true}) {
		t.Fatalf("unexpected setTimerMode: %+v", a)
	}
	if a := Translate("alternar_loop_timer", `{"ativado":true}`); a != (ToggleTimerLoop{Enabled: true}) {
		t.Fatalf("unexpected toggleTimerLoop: %+v", a)
	}
	if a := Translate("configurar_alarme_procrastinacao", `{"ativado":true,"tempo":15}`); a != (SetAlarm{Enabled: true, Minutes: 15}) {
		t.Fatalf("unexpected setAlarm: %+v", a)
	}
	if a := Translate("criar_alarme_manual", `{"titulo":"Café","tempo":10}`); a != (CreateManualAlarm{Title: "Café", Minutes: 10}) {
		t.Fatalf("unexpected createManualAlarm: %+v", a)
	}
}

func TestTranslateUnknownToolName(t *testing.T) {
	act := Translate("listar_metas", `{}`)
	u, ok := act.(Unrecognized)
	if !ok {
		t.Fatalf("expected Unrecognized, got %T", act)
	}
	if u.Name != "listar_metas" {
		t.Fatalf("unexpected name: %q", u.Name)
	}
}

func TestTranslateMalformedArguments(t *testing.T) {
	// A truncated argument payload must still yield a usable action.
	act := Translate("criar_tarefa", `{"titulo": "Est`)
	ct, ok := act.(CreateTask)
	if !ok {
		t.Fatalf("expected CreateTask, got %T", act)
	}
	if ct.Date != "" {
		t.Fatalf("expected empty date, got %q", ct.Date)
	}
}

func TestSummaryWireShape(t *testing.T) {
	data, err := json.Marshal(CreateKanbanItem{Title: "Ler specs", Column: "todo"}.Summary())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "createKanbanItem" || decoded["title"] != "Ler specs" || decoded["column"] != "todo" {
		t.Fatalf("unexpected wire shape: %s", data)
	}
}

func TestModelToolsDeclareFullVocabulary(t *testing.T) {
	tools := ModelTools()
	if len(tools) != 14 {
		t.Fatalf("expected 14 tool declarations, got %d", len(tools))
	}
	seen := map[string]bool{}
	for _, tl := range tools {
		if tl.OfFunction == nil {
			t.Fatal("expected function tool")
		}
		seen[tl.OfFunction.Function.Name] = true
	}
	for _, name := range []string{"criar_tarefa", "definir_modo_timer", "criar_cronograma", "configurar_alarme_procrastinacao"} {
		if !seen[name] {
			t.Fatalf("missing tool declaration %q", name)
		}
	}
}
