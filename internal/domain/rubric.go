package domain

// RubricStatus is the evaluation state of a single rubric item
type RubricStatus string

const (
	StatusPending RubricStatus = "pending"
	StatusMet     RubricStatus = "met"
	StatusNotMet  RubricStatus = "not_met"
)

// Valid reports whether s is one of the three known statuses
func (s RubricStatus) Valid() bool {
	switch s {
	case StatusPending, StatusMet, StatusNotMet:
		return true
	}
	return false
}

// RubricItem represents one skill on the examination checklist
type RubricItem struct {
	ID     string       `json:"id"`
	Skill  string       `json:"skill"`
	Status RubricStatus `json:"status"`
}

// DefaultRubric returns the built-in checklist template. Every item starts
// out pending.
func DefaultRubric() []RubricItem {
	return []RubricItem{
		{ID: "hand_hygiene", Skill: "Hand hygiene", Status: StatusPending},
		{ID: "introduce_self", Skill: "Introduces self to patient", Status: StatusPending},
		{ID: "explain_procedure", Skill: "Explains procedure", Status: StatusPending},
		{ID: "obtain_consent", Skill: "Obtains consent", Status: StatusPending},
		{ID: "maintain_privacy", Skill: "Maintains privacy and dignity", Status: StatusPending},
	}
}

// CloneRubric deep-copies a rubric so that mutating one session's checklist
// never affects the template or another session.
func CloneRubric(items []RubricItem) []RubricItem {
	out := make([]RubricItem, len(items))
	copy(out, items)
	return out
}
