package assistant

import "strings"

const (
	fallbackError   = "Desculpe, tive um pequeno erro técnico ao processar seu pedido. Tente novamente, por favor."
	fallbackActions = "✅ Ação realizada com sucesso!"
	fallbackEmpty   = "Desculpe, não entendi. Poderia repetir?"
)

// sanitizeReply strips tool-call syntax the model sometimes leaks into its
// prose and substitutes a fallback when nothing presentable remains.
func sanitizeReply(text string, hadActions bool) string {
	leaked := false
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "tool_code") || strings.Contains(line, "default_api.") {
			leaked = true
			continue
		}
		kept = append(kept, line)
	}
	cleaned := strings.TrimSpace(strings.Join(kept, "\n"))

	if cleaned != "" {
		return cleaned
	}
	if leaked && !hadActions {
		return fallbackError
	}
	if hadActions {
		return fallbackActions
	}
	return fallbackEmpty
}
