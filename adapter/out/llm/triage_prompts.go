package llm

import (
	"fmt"

	"triage_server/core/domain"
)

const classificationSystemPrompt = `
Você é um especialista em classificação de emails. Analise o texto do email a seguir e classifique-o em uma das duas categorias:

**Produtivo**: Emails que requerem ação, resposta ou acompanhamento
- Exemplos: perguntas, solicitações, pedidos de informação, problemas técnicos, agendamentos

**Improdutivo**: Emails apenas informativos ou de cortesia que não requerem ação
- Exemplos: agradecimentos, felicitações, confirmações simples, mensagens de cortesia

IMPORTANTE: Responda EXATAMENTE no formato:
CATEGORIA: [Produtivo ou Improdutivo]
CONFIANÇA: [número de 0 a 1]
JUSTIFICATIVA: [breve explicação]
`

const replySystemPrompt = `
Você é um assistente especializado em gerar respostas para emails.

Para emails PRODUTIVOS: Gere uma resposta que reconheça a solicitação e indique próximos passos.
Para emails IMPRODUTIVOS: Gere uma resposta educada de agradecimento sem criar expectativas de ação.

Mantenha as respostas curtas (2-4 frases) e profissionais.
`

const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 150
	replyTemperature    = 0.7
	replyMaxTokens      = 200
)

func classificationUserPrompt(text string) string {
	return "Email para classificar:\n\n" + text
}

func replyUserPrompt(category domain.Category, text string) string {
	return fmt.Sprintf("Categoria do email: %s\nTexto do email:\n\n%s\n\nGere uma resposta apropriada em 2-4 frases.", category, text)
}
