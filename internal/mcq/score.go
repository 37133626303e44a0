package mcq

import "errors"

// ErrNoQuestions is returned where a non-empty question set is required.
var ErrNoQuestions = errors.New("no questions")

// Band is a coarse grade for a percentage score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
)

// Result is the outcome of scoring one assessment.
type Result struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Empty reports whether there was nothing to score.
func (r Result) Empty() bool { return r.Total == 0 }

// Incorrect counts unanswered questions as incorrect.
func (r Result) Incorrect() int { return r.Total - r.Correct }

// Band grades the result: 90 and above is excellent, 70 and above fair.
func (r Result) Band() Band {
	switch {
	case r.Percent >= 90:
		return BandExcellent
	case r.Percent >= 70:
		return BandFair
	default:
		return BandPoor
	}
}

// Score compares each recorded answer with the question's correct letter.
// A question without an answer key can never be answered correctly, and
// an empty question list scores 0.
func Score(questions []Question, answers map[int]string) Result {
	r := Result{Total: len(questions)}
	if r.Total == 0 {
		return r
	}
	for i, q := range questions {
		if isCorrect(q, answers[i]) {
			r.Correct++
		}
	}
	r.Percent = 100 * float64(r.Correct) / float64(r.Total)
	return r
}

func isCorrect(q Question, answer string) bool {
	return q.HasAnswer && answer != "" && answer == q.CorrectAnswer
}

// OptionReview describes one option on the results page.
type OptionReview struct {
	Letter   string `json:"letter"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	Correct  bool   `json:"correct"`
}

// QuestionReview pairs a question with what the learner chose.
type QuestionReview struct {
	Index       int            `json:"index"`
	Question    string         `json:"question"`
	Selected    string         `json:"selected,omitempty"`
	Answer      string         `json:"answer,omitempty"`
	IsCorrect   bool           `json:"is_correct"`
	Options     []OptionReview `json:"options"`
	Explanation string         `json:"explanation,omitempty"`
}

// Review builds per-question feedback in question order.
func Review(questions []Question, answers map[int]string) []QuestionReview {
	out := make([]QuestionReview, 0, len(questions))
	for i, q := range questions {
		sel := answers[i]
		qr := QuestionReview{
			Index:       i,
			Question:    q.Text,
			Selected:    sel,
			Answer:      q.CorrectAnswer,
			IsCorrect:   isCorrect(q, sel),
			Options:     make([]OptionReview, len(q.Options)),
			Explanation: q.Explanation,
		}
		for j, text := range q.Options {
			l := Letter(j)
			qr.Options[j] = OptionReview{
				Letter:   l,
				Text:     text,
				Selected: l == sel,
				Correct:  q.HasAnswer && l == q.CorrectAnswer,
			}
		}
		out = append(out, qr)
	}
	return out
}
