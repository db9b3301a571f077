package assistant

import (
	"fmt"
	"strings"

	"focusdesk/app/pkg/types"
)

const systemInstruction = `Você é um assistente de produtividade integrado a um aplicativo de organização pessoal.
O aplicativo tem páginas de metas, kanban, cronogramas, timer pomodoro e alarmes.

Suas responsabilidades:
- Conversar naturalmente em português brasileiro, de forma amigável e direta.
- Quando o usuário pedir uma ação (criar tarefa, mover item, montar cronograma,
  controlar o timer, configurar alarmes ou navegar entre páginas), use as
  ferramentas disponíveis em vez de apenas descrever a ação.
- Ao criar cronogramas, distribua as atividades pelos dias da semana
  (0 = domingo .. 6 = sábado) com horários de início e fim no formato HH:MM.
- Datas sempre no formato AAAA-MM-DD.
- Nunca mostre nomes de ferramentas, chamadas de função ou código ao usuário.
- Depois de executar ferramentas, confirme em uma frase curta o que foi feito.

Use o contexto abaixo para responder perguntas sobre o estado atual do usuário.`

// contextBlock renders the widget snapshot the way the model expects it:
// three labelled sections, each with an explicit "none" line when empty.
func contextBlock(ctx *types.WidgetContext) string {
	if ctx == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nMETAS ATUAIS:\n")
	if len(ctx.Tasks) == 0 {
		b.WriteString("Nenhuma meta cadastrada.\n")
	}
	for _, task := range ctx.Tasks {
		status := "pendente"
		if task.Completed {
			status = "concluída"
		}
		fmt.Fprintf(&b, "- %s (%s)\n", task.Title, status)
	}

	b.WriteString("\nITENS NO KANBAN:\n")
	if len(ctx.KanbanCards) == 0 {
		b.WriteString("Nenhum item no kanban.\n")
	}
	for _, card := range ctx.KanbanCards {
		fmt.Fprintf(&b, "- %s [%s]\n", card.Title, card.Column)
	}

	b.WriteString("\nCRONOGRAMAS ATUAIS:\n")
	if len(ctx.Schedules) == 0 {
		b.WriteString("Nenhum cronograma criado.\n")
	}
	for _, sched := range ctx.Schedules {
		fmt.Fprintf(&b, "- %s (%d atividades)\n", sched.Title, sched.ActivityCount)
	}
	return b.String()
}

func systemPrompt(ctx *types.WidgetContext) string {
	return systemInstruction + contextBlock(ctx)
}
