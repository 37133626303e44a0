package mcq

// ExpectedOptions is the number of choices a well-formed question carries.
const ExpectedOptions = 4

// Question is one parsed multiple-choice question.
// Options map positionally to letters: index 0 is "a", index 1 is "b" and so on.
type Question struct {
	Text           string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	HasAnswer      bool     `json:"has_answer"`
	Explanation    string   `json:"explanation,omitempty"`
	HasExplanation bool     `json:"has_explanation"`
}

// Letter returns the option letter for index i ("a" for 0).
func Letter(i int) string {
	return string(rune('a' + i))
}

// LetterIndex returns the option index for a letter, or -1 when the
// letter is not a single lowercase ASCII letter.
func LetterIndex(letter string) int {
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return -1
	}
	return int(letter[0] - 'a')
}

// CorrectIndex returns the index into Options named by CorrectAnswer.
// ok is false when no answer was supplied or the letter is out of range.
func (q Question) CorrectIndex() (int, bool) {
	if !q.HasAnswer {
		return -1, false
	}
	i := LetterIndex(q.CorrectAnswer)
	if i < 0 || i >= len(q.Options) {
		return -1, false
	}
	return i, true
}

// Incomplete reports whether the source text left this question unusable
// as-is: no answer, fewer than ExpectedOptions options, or an answer
// letter that does not point at an option.
func (q Question) Incomplete() bool {
	if len(q.Options) < ExpectedOptions {
		return true
	}
	_, ok := q.CorrectIndex()
	return !ok
}

// Redacted returns a copy without the answer and explanation, safe to hand
// to a learner before they submit.
func (q Question) Redacted() Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return Question{Text: q.Text, Options: opts}
}
