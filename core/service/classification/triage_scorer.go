package classification

import (
	"strings"

	"triage_server/core/domain"
)

const (
	indicatorWeight  = 1.0
	phraseWeight     = 2.0
	questionWeight   = 3.0
	imperativeWeight = 1.5
	shortTextBonus   = 2.0
	longTextBonus    = 1.0
	sentenceBonus    = 1.0
	listMarkerBonus  = 2.0

	shortTextWords       = 15
	longTextProdutivoMin = 3.0
	multiSentencePieces  = 3
)

// Signal names recorded alongside the scores.
const (
	SignalQuestionMark     = "question-mark"
	SignalShortCourtesy    = "short-text-courtesy"
	SignalShortQuestion    = "short-question"
	SignalLongActionable   = "long-text-actionable"
	SignalMultiSentence    = "multi-sentence"
	SignalListMarker       = "list-marker"
	signalWordPrefix       = "word:"
	signalPhrasePrefix     = "phrase:"
	signalImperativePrefix = "imperative:"
)

// ScoreResult is the output of Score.
type ScoreResult struct {
	Scores  domain.Scores
	Signals []string
}

// accumulator collects weighted evidence for both categories.
type accumulator struct {
	improdutivo float64
	produtivo   float64
	signals     []string
}

func (a *accumulator) addImprodutivo(w float64, signal string) {
	a.improdutivo += w
	a.signals = append(a.signals, signal)
}

func (a *accumulator) addProdutivo(w float64, signal string) {
	a.produtivo += w
	a.signals = append(a.signals, signal)
}

// Score computes the heuristic improdutivo/produtivo totals of text.
// Every step runs; there is no early exit.
func Score(text string) ScoreResult {
	lower := strings.ToLower(text)
	acc := &accumulator{}

	for _, w := range improdutivoIndicators {
		if strings.Contains(lower, w) {
			acc.addImprodutivo(indicatorWeight, signalWordPrefix+w)
		}
	}
	for _, w := range produtivoIndicators {
		if strings.Contains(lower, w) {
			acc.addProdutivo(indicatorWeight, signalWordPrefix+w)
		}
	}

	for _, p := range improdutivoPhrases {
		if strings.Contains(lower, p) {
			acc.addImprodutivo(phraseWeight, signalPhrasePrefix+p)
		}
	}
	for _, p := range produtivoPhrases {
		if strings.Contains(lower, p) {
			acc.addProdutivo(phraseWeight, signalPhrasePrefix+p)
		}
	}

	hasQuestion := strings.Contains(text, "?")
	if hasQuestion {
		acc.addProdutivo(questionWeight, SignalQuestionMark)
	}

	for _, v := range imperativeVerbs {
		if strings.Contains(lower, v) {
			acc.addProdutivo(imperativeWeight, signalImperativePrefix+v)
		}
	}

	if len(strings.Fields(lower)) < shortTextWords {
		if acc.improdutivo > 0 {
			acc.addImprodutivo(shortTextBonus, SignalShortCourtesy)
		}
		if hasQuestion {
			acc.addProdutivo(shortTextBonus, SignalShortQuestion)
		}
	} else if acc.produtivo > longTextProdutivoMin {
		acc.addProdutivo(longTextBonus, SignalLongActionable)
	}

	if len(strings.Split(text, ".")) >= multiSentencePieces {
		acc.addProdutivo(sentenceBonus, SignalMultiSentence)
	}

	for _, m := range listMarkers {
		if strings.Contains(text, m) {
			acc.addProdutivo(listMarkerBonus, SignalListMarker)
			break
		}
	}

	return ScoreResult{
		Scores: domain.Scores{
			Improdutivo: acc.improdutivo,
			Produtivo:   acc.produtivo,
		},
		Signals: acc.signals,
	}
}
