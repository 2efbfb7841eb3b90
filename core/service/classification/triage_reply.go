package classification

import "triage_server/core/domain"

var replyTemplates = map[domain.Category]string{
	domain.CategoryProdutivo:   "Olá! Recebi sua mensagem e vou analisar sua solicitação. Retornarei em breve com mais informações.",
	domain.CategoryImprodutivo: "Olá! Muito obrigado pela sua mensagem. Fico feliz em saber disso!",
}

// FallbackReply returns the fixed reply for category; unknown categories
// get the Produtivo reply.
func FallbackReply(category domain.Category) string {
	if r, ok := replyTemplates[category]; ok {
		return r
	}
	return replyTemplates[domain.CategoryProdutivo]
}
