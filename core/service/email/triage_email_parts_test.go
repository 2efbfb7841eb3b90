package mail

import (
	"testing"

	"triage_server/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmailParts(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSubject string
		wantContent string
		wantProcess string
	}{
		{
			name: "printed gmail page",
			raw: "M Gmail\n" +
				"(sem assunto)\n" +
				"1 mensagem\n" +
				"De: joao@empresa.com\n" +
				"Para: maria@empresa.com\n" +
				"12/03/2024 10:15\n" +
				"Obrigado pelo suporte!\n" +
				"https://mail.google.com/mail/u/0 1/1 \n",
			wantSubject: "(sem assunto)",
			wantContent: "Obrigado pelo suporte!",
			wantProcess: "Obrigado pelo suporte!",
		},
		{
			name:        "no-break spaces from pdf text",
			raw:         "Preciso\u00a0do\u202frelatório\u00a0\u00a0hoje https://x.io/a\u00a0fim",
			wantSubject: domain.SubjectNotDetected,
			wantContent: "Preciso do relatório hoje fim",
			wantProcess: "Preciso do relatório hoje fim",
		},
		{
			name:        "plain text without markers",
			raw:         "Preciso do relatório\n\nate sexta.",
			wantSubject: domain.SubjectNotDetected,
			wantContent: "Preciso do relatório ate sexta.",
			wantProcess: "Preciso do relatório ate sexta.",
		},
		{
			name:        "only the subject marker",
			raw:         "(SEM ASSUNTO)",
			wantSubject: "(SEM ASSUNTO)",
			wantContent: "",
			wantProcess: "(SEM ASSUNTO)",
		},
		{
			name:        "empty input",
			raw:         "",
			wantSubject: domain.SubjectNotDetected,
			wantContent: "",
			wantProcess: domain.SubjectNotDetected,
		},
		{
			name:        "time removes the rest of the line",
			raw:         "Reunião confirmada\n14:30 (há 2 horas)\nAté logo",
			wantSubject: domain.SubjectNotDetected,
			wantContent: "Reunião confirmada Até logo",
			wantProcess: "Reunião confirmada Até logo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEmailParts(tt.raw)
			assert.Equal(t, tt.wantSubject, got.Subject)
			assert.Equal(t, tt.wantContent, got.Content)
			assert.Equal(t, tt.wantProcess, got.TextToProcess)
		})
	}
}
