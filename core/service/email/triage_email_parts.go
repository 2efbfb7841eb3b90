package mail

import (
	"regexp"
	"strings"

	"triage_server/core/domain"
)

var (
	subjectMarkerRe = regexp.MustCompile(`(?i)\(sem assunto\)`)

	// dates and times take the rest of their line; URLs and "1/2" page markers are removed alone.
	// Digit and space classes are Unicode-wide so PDF text with NBSP behaves like plain spaces.
	datesAndLinksRe = regexp.MustCompile(`\p{Nd}{1,2}[/-]\p{Nd}{1,2}[/-]\p{Nd}{4}.*|\p{Nd}{1,2}:\p{Nd}{2}.*|https?://[^\s\p{Zs}]+|[\s\p{Zs}]\p{Nd}/\p{Nd}[\s\p{Zs}]`)
	addressLinesRe  = regexp.MustCompile(`(?i)[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+.*|Para:.*|De:.*`)
	mailUIResidueRe = regexp.MustCompile(`(?i)M Gmail|Gmail \(sem assunto\)|1 mensagem|\(sem assunto\)`)
	spacesRe        = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// ExtractEmailParts splits raw email text (typically a printed webmail page)
// into a subject marker and a cleaned body.
func ExtractEmailParts(raw string) domain.EmailParts {
	subject := domain.SubjectNotDetected
	if m := subjectMarkerRe.FindString(raw); m != "" {
		subject = strings.TrimSpace(m)
	}

	content := datesAndLinksRe.ReplaceAllString(raw, "")
	content = addressLinesRe.ReplaceAllString(content, "")
	content = mailUIResidueRe.ReplaceAllString(content, "")

	if subject != domain.SubjectNotDetected {
		subjectRe := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(subject))
		content = strings.TrimSpace(subjectRe.ReplaceAllString(content, ""))
	}

	content = strings.TrimSpace(spacesRe.ReplaceAllString(content, " "))

	toProcess := content
	if toProcess == "" {
		toProcess = subject
	}
	return domain.EmailParts{
		Subject:       subject,
		Content:       content,
		TextToProcess: toProcess,
	}
}
