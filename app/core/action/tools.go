package action

import "github.com/openai/openai-go/v3"

// ModelTools returns the function declarations advertised to the model.
// Names, descriptions and parameter fields stay in pt-BR on purpose: the
// assistant speaks Brazilian Portuguese and the model binds arguments far
// more reliably when the tool vocabulary matches the conversation language.
func ModelTools() []openai.ChatCompletionToolUnionParam {
	activityItems := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"titulo":        prop("string", "Nome da atividade"),
			"descricao":     prop("string", "Descrição da atividade"),
			"dia_da_semana": prop("number", "Dia da semana (0=Domingo, 1=Segunda, 2=Terça, 3=Quarta, 4=Quinta, 5=Sexta, 6=Sábado)"),
			"hora_inicio":   prop("string", "Horário de início (formato HH:MM)"),
			"hora_fim":      prop("string", "Horário de término (formato HH:MM)"),
		},
		"required": []string{"titulo", "dia_da_semana"},
	}

	return []openai.ChatCompletionToolUnionParam{
		tool(toolOpenPage, "Navega para uma página específica do aplicativo de produtividade",
			map[string]interface{}{
				"pagina": enumProp("Nome da página para navegar", "tasks", "kanban", "schedules", "focus-timer", "notes", "youtube-player"),
			}, "pagina"),
		tool(toolCreateTask, "Cria uma nova meta na lista de metas do usuário",
			map[string]interface{}{
				"titulo": prop("string", "Título da meta"),
				"data":   prop("string", "Data da meta (formato YYYY-MM-DD)"),
			}, "titulo"),
		tool(toolDeleteTask, "Exclui/remove uma meta específica da lista de metas do usuário",
			map[string]interface{}{
				"titulo_ou_id": prop("string", "Título ou ID da meta a ser excluída"),
			}, "titulo_ou_id"),
		tool(toolCreateKanban, "Adiciona um novo card/item no quadro Kanban",
			map[string]interface{}{
				"titulo": prop("string", "Título do card Kanban"),
				"coluna": enumProp("Coluna onde o card deve ser adicionado", ColumnTodo, ColumnInProgress, ColumnDone),
			}, "titulo", "coluna"),
		tool(toolMoveKanban, "Move um card do Kanban de uma coluna para outra",
			map[string]interface{}{
				"titulo_ou_id": prop("string", "Título ou ID do card a ser movido"),
				"nova_coluna":  enumProp("Coluna de destino", ColumnTodo, ColumnInProgress, ColumnDone),
			}, "titulo_ou_id", "nova_coluna"),
		tool(toolCreateSchedule, "Cria um novo cronograma semanal com atividades organizadas por dia da semana",
			map[string]interface{}{
				"titulo":      prop("string", "Título do cronograma"),
				"descricao":   prop("string", "Descrição opcional do cronograma"),
				"data_inicio": prop("string", "Data de início do cronograma (formato YYYY-MM-DD)"),
				"data_fim":    prop("string", "Data de término do cronograma (formato YYYY-MM-DD)"),
				"atividades": map[string]interface{}{
					"type":        "array",
					"description": "Lista de atividades do cronograma",
					"items":       activityItems,
				},
			}, "titulo", "atividades"),
		tool(toolAddActivities, "Adiciona novas atividades ao cronograma mais recente existente",
			map[string]interface{}{
				"atividades": map[string]interface{}{
					"type":        "array",
					"description": "Lista de atividades a serem adicionadas",
					"items":       activityItems,
				},
			}, "atividades"),
		tool(toolSetAlarm, "Configura o alarme de procrastinação",
			map[string]interface{}{
				"ativado": prop("boolean", "Se o alarme deve estar ativado ou não"),
				"tempo":   prop("number", "Quantidade de tempo de inatividade em minutos"),
			}, "ativado", "tempo"),
		tool(toolManualAlarm, "Cria um alarme manual",
			map[string]interface{}{
				"titulo": prop("string", "Título do alarme"),
				"tempo":  prop("number", "Tempo em minutos até o alarme tocar"),
			}, "titulo", "tempo"),
		tool(toolStartTimer, "Inicia o timer de foco",
			map[string]interface{}{
				"minutos": prop("number", "Tempo em minutos"),
			}),
		tool(toolPauseTimer, "Pausa o timer de foco", map[string]interface{}{}),
		tool(toolStopTimer, "Para o timer de foco", map[string]interface{}{}),
		tool(toolSetTimerMode, "Define o modo do timer",
			map[string]interface{}{
				"modo":    enumProp("Modo do timer", ModePomodoro, ModeShort, ModeLong, ModeCustom),
				"iniciar": prop("boolean", "Se deve iniciar imediatamente"),
			}, "modo"),
		tool(toolToggleTimerLoop, "Liga ou desliga o loop do timer",
			map[string]interface{}{
				"ativado": prop("boolean", "Se o loop deve ser ativado"),
			}, "ativado"),
	}
}

func tool(name, description string, properties map[string]interface{}, required ...string) openai.ChatCompletionToolUnionParam {
	if required == nil {
		required = []string{}
	}
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        name,
		Description: openai.String(description),
		Parameters: openai.FunctionParameters{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	})
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values, "description": description}
}
