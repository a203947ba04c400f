// Package report turns a finished session into human-readable feedback: the
// summary text shown at session end and the pre-filled email draft handed to
// the participant's mail client.
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/oscelab/osce-review/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultParticipant is used in greetings when no name is on record.
	DefaultParticipant = "Student"

	closingLine = "Suggestions: Practice the identified areas; follow checklist steps clearly during the examination."
	signature   = "Best regards,\nThe AI Clinical Examiner"
)

var titleCaser = cases.Title(language.English)

// GenerateSummary composes the deterministic feedback summary for a session.
// Sections with nothing to say are omitted entirely, leaving no blank-line
// artifacts between the remaining ones.
func GenerateSummary(participant string, transcript []domain.TranscriptEntry, rubric []domain.RubricItem) string {
	if participant == "" {
		participant = DefaultParticipant
	}

	var strengths, needs []string
	for _, item := range rubric {
		switch item.Status {
		case domain.StatusMet:
			strengths = append(strengths, item.Skill)
		case domain.StatusNotMet:
			needs = append(needs, item.Skill)
		}
	}

	var studentLines []string
	for _, e := range transcript {
		if e.Speaker == domain.SpeakerUser {
			studentLines = append(studentLines, e.Text)
		}
	}
	if len(studentLines) > 3 {
		studentLines = studentLines[len(studentLines)-3:]
	}

	lines := []string{fmt.Sprintf("Dear %s,", participant)}
	if len(strengths) > 0 {
		lines = append(lines, "Strengths: "+strings.Join(strengths, ", ")+".")
	}
	if len(needs) > 0 {
		lines = append(lines, "Areas for improvement: "+strings.Join(needs, ", ")+".")
	}
	if len(studentLines) > 0 {
		lines = append(lines, "Notes from the session: "+strings.Join(studentLines, " / "))
	}
	lines = append(lines, closingLine)

	return strings.Join(lines, "\n\n")
}

// FormatRubric renders the checklist one line per item, in rubric order.
func FormatRubric(rubric []domain.RubricItem) string {
	lines := make([]string, 0, len(rubric))
	for _, item := range rubric {
		lines = append(lines, fmt.Sprintf("- %s: %s", item.Skill, statusLabel(item.Status)))
	}
	return strings.Join(lines, "\n")
}

// FormatTranscript renders the conversation as one paragraph per entry,
// excluding system entries, in insertion order.
func FormatTranscript(transcript []domain.TranscriptEntry) string {
	var paragraphs []string
	for _, e := range transcript {
		switch e.Speaker {
		case domain.SpeakerUser:
			paragraphs = append(paragraphs, "Student: "+e.Text)
		case domain.SpeakerAI:
			paragraphs = append(paragraphs, "Examiner: "+e.Text)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// Email is a pre-filled draft for an external mail-composition mechanism.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BuildEmail assembles the report email for an ended session: summary,
// rubric checklist, participant details, and the full transcript, under
// fixed section headers.
func BuildEmail(s domain.Session) Email {
	details := domain.UserDetails{Name: DefaultParticipant}
	if s.UserDetails != nil {
		details = *s.UserDetails
	}
	summary := ""
	if s.Summary != nil {
		summary = *s.Summary
	}

	body := fmt.Sprintf(`Dear %s,

--- FEEDBACK SUMMARY ---
%s

--- FINAL RUBRIC CHECKLIST ---
%s

--- SESSION DETAILS ---
Name: %s
Phone: %s
Designation: %s

--- FULL TRANSCRIPT ---
%s

%s
`,
		details.Name,
		summary,
		FormatRubric(s.Rubric),
		details.Name,
		details.Phone,
		details.Designation,
		FormatTranscript(s.Transcript),
		signature,
	)

	return Email{
		Subject: fmt.Sprintf("OSCE Skill Review Report for %s", details.Name),
		Body:    body,
	}
}

// Mailto renders the draft as a mailto URL for the given recipient.
func (e Email) Mailto(recipient string) string {
	return "mailto:" + recipient +
		"?subject=" + escapeQuery(e.Subject) +
		"&body=" + escapeQuery(e.Body)
}

// escapeQuery percent-encodes spaces instead of using '+', which some mail
// clients do not decode in mailto links.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func statusLabel(s domain.RubricStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}
