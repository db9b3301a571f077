package action

import "github.com/tidwall/gjson"

// Tool names declared to the model. The vocabulary the model sees is
// Brazilian Portuguese; Translate maps it onto the internal action types.
const (
	toolOpenPage        = "navegar_para_pagina"
	toolCreateTask      = "criar_tarefa"
	toolDeleteTask      = "excluir_tarefa"
	toolCreateKanban    = "criar_item_kanban"
	toolMoveKanban      = "mover_item_kanban"
	toolCreateSchedule  = "criar_cronograma"
	toolAddActivities   = "adicionar_atividades_cronograma"
	toolSetAlarm        = "configurar_alarme_procrastinacao"
	toolManualAlarm     = "criar_alarme_manual"
	toolStartTimer      = "iniciar_timer"
	toolPauseTimer      = "pausar_timer"
	toolStopTimer       = "parar_timer"
	toolSetTimerMode    = "definir_modo_timer"
	toolToggleTimerLoop = "alternar_loop_timer"
)

// Placeholder values applied when the model omits or mangles a field.
const (
	defaultActivityTitle = "Atividade sem título"
	defaultScheduleTitle = "Novo Cronograma"
	defaultStartTime     = "09:00"
	defaultEndTime       = "10:00"
)

// Translate decodes one tool call into a typed action. args is the raw JSON
// argument string from the model; malformed or missing fields fall back to
// zero values or the documented placeholders rather than failing, so a batch
// of tool calls always yields the same number of actions. Unknown tool names
// come back as Unrecognized.
func Translate(name, args string) Action {
	switch name {
	case toolOpenPage:
		return OpenPage{Page: gjson.Get(args, "pagina").String()}
	case toolCreateTask:
		return CreateTask{
			Title: gjson.Get(args, "titulo").String(),
			Date:  gjson.Get(args, "data").String(),
		}
	case toolDeleteTask:
		return DeleteTask{TitleOrID: gjson.Get(args, "titulo_ou_id").String()}
	case toolCreateKanban:
		return CreateKanbanItem{
			Title:  gjson.Get(args, "titulo").String(),
			Column: gjson.Get(args, "coluna").String(),
		}
	case toolMoveKanban:
		return MoveKanbanItem{
			TitleOrID: gjson.Get(args, "titulo_ou_id").String(),
			NewColumn: gjson.Get(args, "nova_coluna").String(),
		}
	case toolCreateSchedule:
		title := gjson.Get(args, "titulo").String()
		if title == "" {
			title = defaultScheduleTitle
		}
		return CreateSchedule{
			Schedule: SchedulePayload{
				Title:       title,
				Description: gjson.Get(args, "descricao").String(),
				Activities:  translateActivities(gjson.Get(args, "atividades")),
			},
			StartDate: gjson.Get(args, "data_inicio").String(),
			EndDate:   gjson.Get(args, "data_fim").String(),
		}
	case toolAddActivities:
		return AddActivitiesToSchedule{
			Activities: translateActivities(gjson.Get(args, "atividades")),
		}
	case toolSetAlarm:
		return SetAlarm{
			Enabled: gjson.Get(args, "ativado").Bool(),
			Minutes: int(gjson.Get(args, "tempo").Int()),
		}
	case toolManualAlarm:
		return CreateManualAlarm{
			Title:   gjson.Get(args, "titulo").String(),
			Minutes: int(gjson.Get(args, "tempo").Int()),
		}
	case toolStartTimer:
		return StartTimer{Minutes: int(gjson.Get(args, "minutos").Int())}
	case toolPauseTimer:
		return PauseTimer{}
	case toolStopTimer:
		return StopTimer{}
	case toolSetTimerMode:
		return SetTimerMode{
			Mode:  gjson.Get(args, "modo").String(),
			Start: gjson.Get(args, "iniciar").Bool(),
		}
	case toolToggleTimerLoop:
		return ToggleTimerLoop{Enabled: gjson.Get(args, "ativado").Bool()}
	}
	return Unrecognized{Name: name}
}

// translateActivities sanitizes the activity list of a schedule tool call.
// The model sometimes answers with the English field names it saw in the
// user context, so each field reads the localized name first and the English
// one second before falling back to the placeholder.
func translateActivities(list gjson.Result) []Activity {
	activities := make([]Activity, 0, int(list.Get("#").Int()))
	list.ForEach(func(_, raw gjson.Result) bool {
		activities = append(activities, sanitizeActivity(raw))
		return true
	})
	return activities
}

func sanitizeActivity(raw gjson.Result) Activity {
	a := Activity{
		Title:       firstString(raw, "titulo", "title"),
		Description: firstString(raw, "descricao", "description"),
		StartTime:   firstString(raw, "hora_inicio", "start_time"),
		EndTime:     firstString(raw, "hora_fim", "end_time"),
	}
	if a.Title == "" {
		a.Title = defaultActivityTitle
	}
	if a.StartTime == "" {
		a.StartTime = defaultStartTime
	}
	if a.EndTime == "" {
		a.EndTime = defaultEndTime
	}
	if day := raw.Get("dia_da_semana"); day.Type == gjson.Number {
		// Out-of-range days are treated like a missing field.
		if d := int(day.Int()); d >= 0 && d <= 6 {
			a.DayOfWeek = d
		}
	}
	return a
}

func firstString(raw gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := raw.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
