package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"stopwords and punctuation", "Muito obrigado pelo suporte!", "obrigado suporte"},
		{"collapses whitespace", "Preciso   do\n\nrelatório\tfinal", "preciso relatório final"},
		{"drops one-character tokens", "a b c reunião x", "reunião"},
		{"keeps digits", "Pedido 42 atrasado", "pedido 42 atrasado"},
		{"keeps accents", "Atenção: SOLICITAÇÃO urgente", "atenção solicitação urgente"},
		{"splits on punctuation", "sexta-feira, 10/05", "sexta feira 10 05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeComposesAccents(t *testing.T) {
	n := New()
	// "reunião" written with a combining tilde
	decomposed := "reunia\u0303o"
	assert.Equal(t, "reunião", n.Normalize(decomposed))
}

func TestNormalizerOptions(t *testing.T) {
	extra := New(WithExtraStopwords("Suporte"))
	assert.Equal(t, "obrigado", extra.Normalize("obrigado pelo suporte"))
	assert.True(t, extra.IsStopword("suporte"))

	none := New(WithoutStopwords())
	assert.Equal(t, "muito obrigado pelo suporte", none.Normalize("Muito obrigado pelo suporte"))
	assert.False(t, none.IsStopword("de"))
}
