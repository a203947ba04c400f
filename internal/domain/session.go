package domain

import "time"

// SessionStatus is the lifecycle state of an examination session
type SessionStatus string

const (
	SessionIdle  SessionStatus = "idle"
	SessionLive  SessionStatus = "live"
	SessionEnded SessionStatus = "ended"
)

// UserDetails identifies the examination participant. Details are set once
// before any session activity and stay fixed for the session's duration.
type UserDetails struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
}

// Suggestion is a proposed rubric status change awaiting human accept/reject.
// At most one suggestion is pending at a time.
type Suggestion struct {
	SkillID   string       `json:"skill_id"`
	Status    RubricStatus `json:"status"`
	Reasoning string       `json:"reasoning"`
}

// Session is the aggregate for one complete examination attempt. It
// exclusively owns its rubric items and transcript entries; nothing is
// shared across sessions.
type Session struct {
	Status          SessionStatus     `json:"status"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	DurationSeconds int               `json:"duration_seconds,omitempty"`
	UserDetails     *UserDetails      `json:"user_details,omitempty"`
	Rubric          []RubricItem      `json:"rubric"`
	Transcript      []TranscriptEntry `json:"transcript"`
	Suggestion      *Suggestion       `json:"pending_suggestion,omitempty"`
	Summary         *string           `json:"summary,omitempty"`
}

// Clone returns a deep copy of the session so callers can read state without
// aliasing the store's slices.
func (s Session) Clone() Session {
	out := s
	out.Rubric = CloneRubric(s.Rubric)
	out.Transcript = make([]TranscriptEntry, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	if s.UserDetails != nil {
		d := *s.UserDetails
		out.UserDetails = &d
	}
	if s.Suggestion != nil {
		sg := *s.Suggestion
		out.Suggestion = &sg
	}
	if s.Summary != nil {
		sm := *s.Summary
		out.Summary = &sm
	}
	return out
}
