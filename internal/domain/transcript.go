package domain

// Speaker identifies who produced a transcript entry
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerAI     Speaker = "ai"
	SpeakerSystem Speaker = "system"
)

// Valid reports whether s is one of the known speakers
func (s Speaker) Valid() bool {
	switch s {
	case SpeakerUser, SpeakerAI, SpeakerSystem:
		return true
	}
	return false
}

// TranscriptEntry is one line of the session conversation log. Entries are
// append-only during a live session; insertion order is chronological order.
type TranscriptEntry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Ts      float64 `json:"ts"` // seconds since epoch
}
