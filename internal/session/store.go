// Package session holds the in-memory state for one examination session and
// the named commands the serving layer invokes on it. State lives for the
// process lifetime and is discarded on restart unless exported via the codec.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/report"
)

// Duration bounds for a session, in minutes.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 180
)

// Store owns the current session aggregate. Every command completes before
// the next begins; the mutex enforces that when commands arrive over HTTP.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	template []domain.RubricItem
	state    domain.Session
}

// NewStore creates a store seeded with a fresh copy of the rubric template.
// A nil clock means time.Now.
func NewStore(template []domain.RubricItem, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		now:      clock,
		template: domain.CloneRubric(template),
		state: domain.Session{
			Status:     domain.SessionIdle,
			Rubric:     domain.CloneRubric(template),
			Transcript: []domain.TranscriptEntry{},
		},
	}
}

// State returns a deep copy of the current session for rendering.
func (s *Store) State() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ElapsedSeconds reports the whole seconds since the session started, or
// zero when it has not.
func (s *Store) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.StartTime == nil {
		return 0
	}
	return int(s.now().Sub(*s.state.StartTime).Seconds())
}

// HasUserDetails reports whether the participant has been identified yet.
func (s *Store) HasUserDetails() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserDetails != nil
}

// SetUserDetails records the participant and the planned session duration.
// Details stay fixed while a session is live.
func (s *Store) SetUserDetails(details domain.UserDetails, durationMinutes int) error {
	if details.Name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return domain.NewValidationError("duration_minutes",
			fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == domain.SessionLive {
		return domain.NewValidationError("user_details", "cannot change participant during a live session")
	}
	s.state.UserDetails = &details
	s.state.DurationSeconds = durationMinutes * 60
	return nil
}

// StartSession begins a fresh session: empty transcript, a fresh copy of the
// rubric template, no pending suggestion, no summary. Any previous session's
// in-memory data is discarded.
func (s *Store) StartSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.now()
	s.state.Transcript = []domain.TranscriptEntry{}
	s.state.Rubric = domain.CloneRubric(s.template)
	s.state.Suggestion = nil
	s.state.Summary = nil
	s.state.StartTime = &start
	s.state.Status = domain.SessionLive
}

// EndSession transitions a live session to ended and computes the feedback
// summary exactly once. Ending an already-ended session is a no-op; the
// summary is not regenerated.
func (s *Store) EndSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.Status {
	case domain.SessionEnded:
		return nil
	case domain.SessionIdle:
		return domain.ErrSessionNotStarted
	}

	s.state.Status = domain.SessionEnded
	participant := ""
	if s.state.UserDetails != nil {
		participant = s.state.UserDetails.Name
	}
	summary := report.GenerateSummary(participant, s.state.Transcript, s.state.Rubric)
	s.state.Summary = &summary
	return nil
}

// AppendEntry appends a transcript entry. Text is trimmed of surrounding
// whitespace and must be non-empty. A zero ts is stamped with the store's
// clock.
func (s *Store) AppendEntry(speaker domain.Speaker, text string, ts float64) error {
	if !speaker.Valid() {
		return domain.NewValidationError("speaker", fmt.Sprintf("unknown speaker %q", speaker))
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.NewValidationError("text", "text must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ts == 0 {
		ts = epochSeconds(s.now())
	}
	s.state.Transcript = append(s.state.Transcript, domain.TranscriptEntry{
		Speaker: speaker,
		Text:    trimmed,
		Ts:      ts,
	})
	return nil
}

// SetRubricStatus overwrites one item's status. Unknown ids fail and leave
// the rubric unchanged.
func (s *Store) SetRubricStatus(itemID string, status domain.RubricStatus) error {
	if !status.Valid() {
		return domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Rubric {
		if s.state.Rubric[i].ID == itemID {
			s.state.Rubric[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownRubricItem, itemID)
}

// ProposeSuggestion stages a rubric status change for human confirmation.
// Proposing a new suggestion silently discards an unresolved prior one.
func (s *Store) ProposeSuggestion(skillID string, status domain.RubricStatus, reasoning string) error {
	if status != domain.StatusMet && status != domain.StatusNotMet {
		return domain.NewValidationError("status", "suggested status must be met or not_met")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rubricHas(skillID) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownRubricItem, skillID)
	}
	s.state.Suggestion = &domain.Suggestion{
		SkillID:   skillID,
		Status:    status,
		Reasoning: reasoning,
	}
	return nil
}

// AcceptSuggestion applies the pending suggestion to its rubric item,
// records the action in the transcript, and clears the suggestion.
func (s *Store) AcceptSuggestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	su := s.state.Suggestion
	if su == nil {
		return domain.ErrNoPendingSuggestion
	}
	for i := range s.state.Rubric {
		if s.state.Rubric[i].ID == su.SkillID {
			s.state.Rubric[i].Status = su.Status
		}
	}
	s.appendSystemEntry(fmt.Sprintf("Suggestion accepted for %s", su.SkillID))
	s.state.Suggestion = nil
	return nil
}

// RejectSuggestion discards the pending suggestion, recording the decision
// in the transcript.
func (s *Store) RejectSuggestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	su := s.state.Suggestion
	if su == nil {
		return domain.ErrNoPendingSuggestion
	}
	s.appendSystemEntry(fmt.Sprintf("Suggestion rejected for %s", su.SkillID))
	s.state.Suggestion = nil
	return nil
}

// ClearSessionData resets transcript and rubric to the initial template and
// clears the summary, without touching session status or start time.
func (s *Store) ClearSessionData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Transcript = []domain.TranscriptEntry{}
	s.state.Rubric = domain.CloneRubric(s.template)
	s.state.Summary = nil
}

// BulkResolvePending marks every still-pending rubric item as not met and
// returns how many items changed. Items already met or not met are
// untouched.
func (s *Store) BulkResolvePending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.state.Rubric {
		if s.state.Rubric[i].Status == domain.StatusPending {
			s.state.Rubric[i].Status = domain.StatusNotMet
			changed++
		}
	}
	return changed
}

// Restore replaces session data with the contents of a decoded save
// document. The restored session is marked ended; start time and duration
// are not part of the persisted document and are not restored.
func (s *Store) Restore(details *domain.UserDetails, rubric []domain.RubricItem, transcript []domain.TranscriptEntry, summary *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserDetails = details
	s.state.Rubric = domain.CloneRubric(rubric)
	s.state.Transcript = make([]domain.TranscriptEntry, len(transcript))
	copy(s.state.Transcript, transcript)
	s.state.Summary = summary
	s.state.Suggestion = nil
	s.state.StartTime = nil
	s.state.Status = domain.SessionEnded
}

// appendSystemEntry records a system action in the transcript. Callers must
// hold the mutex.
func (s *Store) appendSystemEntry(text string) {
	s.state.Transcript = append(s.state.Transcript, domain.TranscriptEntry{
		Speaker: domain.SpeakerSystem,
		Text:    text,
		Ts:      epochSeconds(s.now()),
	})
}

// rubricHas reports whether an item with the given id exists. Callers must
// hold the mutex.
func (s *Store) rubricHas(id string) bool {
	for i := range s.state.Rubric {
		if s.state.Rubric[i].ID == id {
			return true
		}
	}
	return false
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
