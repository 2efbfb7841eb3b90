// Package classification implements the Produtivo / Improdutivo email triage.
//
// Two paths produce a ClassificationResult:
//
//	Heuristic: keyword lexicon + structural signals → Scores → Decide
//	Remote:    language model reply → ParseClassificationReply
//
// The Classifier facade prefers the remote path when configured and falls
// back to the heuristic silently on any remote failure.
package classification

// Lexicon lists are matched as substrings of the lowercased text. Entries
// that appear twice score twice.
var (
	improdutivoIndicators = []string{
		// agradecimentos
		"obrigado", "obrigada", "agradecimento", "agradeço", "grato", "grata",
		"valeu", "thanks", "thank you", "gracias",

		// felicitações
		"parabéns", "felicitações", "congratulações", "meus parabéns", "parabenizo",
		"congratulations", "felicito",

		// elogios
		"ótimo", "excelente", "perfeito", "maravilhoso", "bom trabalho", "incrível",
		"fantástico", "espetacular", "sensacional", "excepcional", "admirável",
		"impressionante", "notável", "extraordinário",

		// saudações e despedidas
		"tenha um", "bom dia", "boa tarde", "boa noite", "abraços", "abraço",
		"atenciosamente", "cordialmente", "saudações", "até mais", "até logo",
		"até breve", "até a próxima", "até amanhã",

		// confirmações simples
		"recebi", "recebido", "confirmado", "ciente", "entendido", "compreendido",
		"ok", "beleza", "combinado", "fechado", "perfeito", "tudo bem",

		// cortesia
		"gentileza", "atenção", "disponibilidade", "presteza", "cordialidade",
	}

	produtivoIndicators = []string{
		// necessidade / urgência
		"preciso", "necessito", "necessário", "urgente", "importante", "crucial",
		"essencial", "fundamental", "imprescindível", "prioritário",

		// perguntas
		"quando", "como", "onde", "por que", "qual", "quais", "quem", "quanto",
		"quantos", "quantas", "aonde", "o que", "será que", "poderia me informar",

		// solicitações
		"por favor", "poderia", "gostaria", "solicito", "pedido", "requisição",
		"favor", "peço", "requeiro", "demando", "exijo", "solicito", "requisito",

		// problemas
		"problema", "erro", "falha", "bug", "defeito", "dificuldade", "obstáculo",
		"empecilho", "complicação", "transtorno", "inconveniente", "impasse",

		// ajuda
		"ajuda", "suporte", "auxílio", "assistência", "apoio", "socorro", "amparo",

		// ações futuras
		"precisa ser feito", "deve ser realizado", "necessita ser", "aguardo",
		"espero", "aguardando", "esperando", "pendente", "em aberto",

		// verbos no imperativo ou futuro
		"faça", "envie", "prepare", "organize", "desenvolva", "crie", "elabore",
		"analise", "verifique", "confira", "avalie", "examine", "investigue",
		"será", "faremos", "vamos", "iremos", "precisamos", "devemos",
	}

	improdutivoPhrases = []string{
		"muito obrigado", "agradeço sua atenção", "grato pela atenção",
		"só para confirmar", "apenas confirmando", "só para avisar",
		"só para informar", "apenas para informar", "só queria agradecer",
		"só isso mesmo", "era só isso", "sem mais para o momento",
		"tenha um bom dia", "tenha uma boa semana", "bom final de semana",
		"recebi sua mensagem", "mensagem recebida", "email recebido",
		"entendi perfeitamente", "compreendi completamente",
	}

	produtivoPhrases = []string{
		"preciso de sua ajuda", "gostaria de solicitar", "poderia me ajudar",
		"quando podemos", "como faço para", "por favor verifique",
		"aguardo retorno", "aguardo resposta", "espero seu feedback",
		"preciso que você", "necessito que seja", "é necessário que",
		"por gentileza", "favor verificar", "favor analisar",
		"estou com problema", "estou com dificuldade", "não consigo",
		"você poderia", "seria possível", "é possível",
		"o que acha de", "o que você pensa sobre", "qual sua opinião",
	}

	// imperativeVerbs add 1.5 each on top of their indicator point.
	imperativeVerbs = []string{"faça", "envie", "prepare", "organize", "desenvolva", "será", "faremos"}

	// listMarkers are matched case-sensitively against the raw text.
	listMarkers = []string{"1.", "2.", "•", "-", "*", "primeiro", "segundo", "terceiro"}
)

// Lexicon exposes read-only copies of the keyword lists.
type Lexicon struct{}

func (Lexicon) ImprodutivoIndicators() []string { return clone(improdutivoIndicators) }
func (Lexicon) ProdutivoIndicators() []string   { return clone(produtivoIndicators) }
func (Lexicon) ImprodutivoPhrases() []string    { return clone(improdutivoPhrases) }
func (Lexicon) ProdutivoPhrases() []string      { return clone(produtivoPhrases) }
func (Lexicon) ImperativeVerbs() []string       { return clone(imperativeVerbs) }
func (Lexicon) ListMarkers() []string           { return clone(listMarkers) }

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
