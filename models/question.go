package models

const (
	// OptionCount is the fixed number of answer options per question.
	OptionCount = 4

	// DefaultTimeLimit is the per-question countdown in seconds when
	// none is given.
	DefaultTimeLimit = 20
)

// Question is immutable once its game has started. CorrectAnswer is a
// 1-based index into Options.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	TimeLimit     int      `json:"timeLimit"`
}

// Clone returns a copy with its own options slice.
func (q Question) Clone() Question {
	clone := q
	clone.Options = make([]string, len(q.Options))
	copy(clone.Options, q.Options)
	return clone
}
