package models

// QuestionsPerModule is the fixed size of a module's positional slice.
const QuestionsPerModule = 10

type Question struct {
	ID       int64  `json:"id" db:"id" yaml:"-"`
	Chapter  int    `json:"chapter" db:"chapter" yaml:"chapter"`
	Question string `json:"question" db:"question" yaml:"question"`
	A        string `json:"A" db:"option_a" yaml:"A"`
	B        string `json:"B" db:"option_b" yaml:"B"`
	C        string `json:"C" db:"option_c" yaml:"C"`
	D        string `json:"D" db:"option_d" yaml:"D"`
	Answer   string `json:"answer" db:"answer" yaml:"answer"`
}

// Options returns the four option values in label order.
func (q Question) Options() []string {
	return []string{q.A, q.B, q.C, q.D}
}

// CorrectLabel returns the label whose value equals Answer, or "" when no
// option matches.
func (q Question) CorrectLabel() string {
	for i, opt := range q.Options() {
		if opt == q.Answer {
			return string(rune('A' + i))
		}
	}
	return ""
}

// IsCorrect reports whether the chosen option value is the answer.
func (q Question) IsCorrect(choice string) bool {
	return choice == q.Answer
}

type ChaptersResponse struct {
	Chapters []int `json:"chapters"`
}

type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}
