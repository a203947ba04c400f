// Package codec serializes session state to and from the JSON document used
// for save/resume. The document carries user details, transcript, rubric,
// and the summary; session status and timing are deliberately not persisted.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/oscelab/osce-review/internal/domain"
)

// Document is the persisted session shape.
type Document struct {
	UserDetails *domain.UserDetails      `json:"user_details"`
	Transcript  []domain.TranscriptEntry `json:"transcript"`
	Rubric      []domain.RubricItem      `json:"rubric"`
	Summary     *string                  `json:"summary"`
}

// Encode renders a session as an indented UTF-8 JSON document. Key order
// follows the struct definition, so repeated encodes of the same state are
// byte-identical and diff cleanly.
func Encode(s domain.Session) ([]byte, error) {
	doc := Document{
		UserDetails: s.UserDetails,
		Transcript:  s.Transcript,
		Rubric:      s.Rubric,
		Summary:     s.Summary,
	}
	if doc.Transcript == nil {
		doc.Transcript = []domain.TranscriptEntry{}
	}
	if doc.Rubric == nil {
		doc.Rubric = []domain.RubricItem{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// Raw shapes use pointer fields so that a missing key is distinguishable
// from a zero value. A partial entry must fail decoding rather than become a
// record with empty-string defaults masking data loss.
type rawDocument struct {
	UserDetails *rawUserDetails `json:"user_details"`
	Transcript  []rawEntry      `json:"transcript"`
	Rubric      []rawItem       `json:"rubric"`
	Summary     *string         `json:"summary"`
}

type rawUserDetails struct {
	Name        *string `json:"name"`
	Phone       string  `json:"phone"`
	Designation string  `json:"designation"`
}

type rawEntry struct {
	Speaker *string  `json:"speaker"`
	Text    *string  `json:"text"`
	Ts      *float64 `json:"ts"`
}

type rawItem struct {
	ID     *string `json:"id"`
	Skill  *string `json:"skill"`
	Status *string `json:"status"`
}

// Decode parses a persisted session document. It returns a
// *domain.DecodeError if the payload is not valid JSON or if required fields
// are missing or malformed.
func Decode(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.DecodeError{Message: "invalid JSON", Err: err}
	}

	doc := &Document{
		Transcript: make([]domain.TranscriptEntry, 0, len(raw.Transcript)),
		Rubric:     make([]domain.RubricItem, 0, len(raw.Rubric)),
		Summary:    raw.Summary,
	}

	for i, e := range raw.Transcript {
		if e.Speaker == nil || e.Text == nil || e.Ts == nil {
			return nil, &domain.DecodeError{
				Message: fmt.Sprintf("transcript entry %d is missing speaker, text, or ts", i),
			}
		}
		speaker := domain.Speaker(*e.Speaker)
		if !speaker.Valid() {
			return nil, &domain.DecodeError{
				Message: fmt.Sprintf("transcript entry %d has unknown speaker %q", i, *e.Speaker),
			}
		}
		doc.Transcript = append(doc.Transcript, domain.TranscriptEntry{
			Speaker: speaker,
			Text:    *e.Text,
			Ts:      *e.Ts,
		})
	}

	seen := make(map[string]bool, len(raw.Rubric))
	for i, r := range raw.Rubric {
		if r.ID == nil || r.Skill == nil {
			return nil, &domain.DecodeError{
				Message: fmt.Sprintf("rubric item %d is missing id or skill", i),
			}
		}
		if seen[*r.ID] {
			return nil, &domain.DecodeError{
				Message: fmt.Sprintf("duplicate rubric item id %q", *r.ID),
			}
		}
		seen[*r.ID] = true

		status := domain.StatusPending
		if r.Status != nil {
			status = domain.RubricStatus(*r.Status)
			if !status.Valid() {
				return nil, &domain.DecodeError{
					Message: fmt.Sprintf("rubric item %q has unknown status %q", *r.ID, *r.Status),
				}
			}
		}
		doc.Rubric = append(doc.Rubric, domain.RubricItem{
			ID:     *r.ID,
			Skill:  *r.Skill,
			Status: status,
		})
	}

	if raw.UserDetails != nil {
		if raw.UserDetails.Name == nil || *raw.UserDetails.Name == "" {
			return nil, &domain.DecodeError{Message: "user_details is missing name"}
		}
		doc.UserDetails = &domain.UserDetails{
			Name:        *raw.UserDetails.Name,
			Phone:       raw.UserDetails.Phone,
			Designation: raw.UserDetails.Designation,
		}
	}

	return doc, nil
}
