// Package session holds the per-learner assessment state. State is an
// immutable value; every user action is a transition that returns a new
// State or ErrInvalidTransition.
package session

import (
	"errors"
	"fmt"

	"learnassess/internal/mcq"
	"learnassess/internal/prompt"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrNoAssessment      = errors.New("no assessment in progress")
)

// Page is the screen the learner is on.
type Page string

const (
	PageUpload                 Page = "upload"
	PageMenu                   Page = "menu"
	PageMCQConfig              Page = "mcq_config"
	PageMCQAssessment          Page = "mcq_assessment"
	PageMCQResults             Page = "mcq_results"
	PageFreeResponseConfig     Page = "free_response_config"
	PageFreeResponseAssessment Page = "free_response_assessment"
)

// Move is what the learner does after choosing an answer.
type Move string

const (
	MoveNext     Move = "next"
	MovePrevious Move = "previous"
	MoveSubmit   Move = "submit"
)

// navigation lists the pages reachable through Navigate.
var navigation = map[Page][]Page{
	PageMenu:                   {PageMCQConfig, PageFreeResponseConfig, PageUpload},
	PageMCQConfig:              {PageMenu},
	PageFreeResponseConfig:     {PageMenu},
	PageMCQResults:             {PageMenu, PageUpload},
	PageFreeResponseAssessment: {PageMenu},
}

// State is one learner's position in the flow. The zero value is not
// useful; start from New.
type State struct {
	page         Page
	difficulty   prompt.Difficulty
	numQuestions int
	documents    []string

	questions []mcq.Question
	answers   map[int]string
	current   int
	result    mcq.Result

	freeResponse []string
	evaluations  map[int]Evaluation
}

// Evaluation is the model's feedback on one free-response answer.
type Evaluation struct {
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// New returns the state of a fresh session on the upload page.
func New() State {
	return State{page: PageUpload, difficulty: prompt.DefaultDifficulty}
}

func (s State) Page() Page                    { return s.page }
func (s State) Difficulty() prompt.Difficulty { return s.difficulty }
func (s State) Current() int                  { return s.current }
func (s State) Result() mcq.Result            { return s.result }

// NumQuestions is the configured count, or the page default when unset.
func (s State) NumQuestions() int {
	if s.page == PageFreeResponseConfig || s.page == PageFreeResponseAssessment {
		return prompt.FreeResponseBounds.Clamp(s.numQuestions)
	}
	return prompt.MCQBounds.Clamp(s.numQuestions)
}

func (s State) Documents() []string { return cloneSlice(s.documents) }

func (s State) Questions() []mcq.Question { return cloneSlice(s.questions) }

func (s State) Answers() map[int]string { return cloneMap(s.answers) }

func (s State) FreeResponse() []string { return cloneSlice(s.freeResponse) }

func (s State) Evaluations() map[int]Evaluation { return cloneMap(s.evaluations) }

// CurrentQuestion returns the question being answered.
func (s State) CurrentQuestion() (mcq.Question, error) {
	if s.page != PageMCQAssessment || len(s.questions) == 0 {
		return mcq.Question{}, ErrNoAssessment
	}
	return s.questions[s.current], nil
}

// DocumentsReady records processed material and opens the menu.
func (s State) DocumentsReady(names []string) (State, error) {
	if s.page != PageUpload {
		return s, s.invalid("documents ready")
	}
	next := s.cleared()
	next.documents = cloneSlice(names)
	next.page = PageMenu
	return next, nil
}

// Navigate moves between pages. Leaving an assessment discards it.
func (s State) Navigate(to Page) (State, error) {
	for _, p := range navigation[s.page] {
		if p != to {
			continue
		}
		next := s
		if to == PageMenu || to == PageUpload {
			next = s.cleared()
		}
		if to == PageMCQConfig || to == PageFreeResponseConfig {
			next.numQuestions = 0
		}
		next.page = to
		return next, nil
	}
	return s, s.invalid("navigate to " + string(to))
}

// TryAnother leaves the results page for the menu.
func (s State) TryAnother() (State, error) {
	if s.page != PageMCQResults {
		return s, s.invalid("try another")
	}
	return s.Navigate(PageMenu)
}

// ReviewMaterials leaves the results page for the upload page.
func (s State) ReviewMaterials() (State, error) {
	if s.page != PageMCQResults {
		return s, s.invalid("review materials")
	}
	return s.Navigate(PageUpload)
}

// Configure sets question count and difficulty on a config page. The count
// is clamped to the page's bounds; zero keeps the default.
func (s State) Configure(numQuestions int, d prompt.Difficulty) (State, error) {
	var b prompt.Bounds
	switch s.page {
	case PageMCQConfig:
		b = prompt.MCQBounds
	case PageFreeResponseConfig:
		b = prompt.FreeResponseBounds
	default:
		return s, s.invalid("configure")
	}
	next := s
	next.numQuestions = b.Clamp(numQuestions)
	if d != "" {
		next.difficulty = d
	}
	return next, nil
}

// StartMCQ begins an assessment over the given questions.
func (s State) StartMCQ(questions []mcq.Question) (State, error) {
	if s.page != PageMCQConfig {
		return s, s.invalid("start mcq")
	}
	if len(questions) == 0 {
		return s, mcq.ErrNoQuestions
	}
	next := s
	next.questions = cloneSlice(questions)
	next.answers = map[int]string{}
	next.current = 0
	next.result = mcq.Result{}
	next.page = PageMCQAssessment
	return next, nil
}

// Answer records letter for the current question, then applies move.
// Previous does not record the answer. Submit scores the assessment.
func (s State) Answer(letter string, move Move) (State, error) {
	if s.page != PageMCQAssessment {
		return s, s.invalid("answer")
	}
	last := len(s.questions) - 1
	next := s
	switch move {
	case MovePrevious:
		if s.current == 0 {
			return s, s.invalid("previous on first question")
		}
		next.current--
		return next, nil
	case MoveNext:
		if s.current >= last {
			return s, s.invalid("next on last question")
		}
	case MoveSubmit:
		if s.current != last {
			return s, s.invalid("submit before last question")
		}
	default:
		return s, fmt.Errorf("%w: unknown move %q", ErrInvalidTransition, move)
	}

	q := s.questions[s.current]
	i := mcq.LetterIndex(letter)
	if i < 0 || i >= max(len(q.Options), mcq.ExpectedOptions) {
		return s, fmt.Errorf("%w: %q", ErrInvalidAnswer, letter)
	}
	next.answers = cloneMap(s.answers)
	next.answers[s.current] = letter

	if move == MoveNext {
		next.current++
		return next, nil
	}
	next.result = mcq.Score(next.questions, next.answers)
	next.page = PageMCQResults
	return next, nil
}

// StartFreeResponse begins a free-response assessment over the question blocks.
func (s State) StartFreeResponse(blocks []string) (State, error) {
	if s.page != PageFreeResponseConfig {
		return s, s.invalid("start free response")
	}
	if len(blocks) == 0 {
		return s, mcq.ErrNoQuestions
	}
	next := s
	next.freeResponse = cloneSlice(blocks)
	next.evaluations = map[int]Evaluation{}
	next.page = PageFreeResponseAssessment
	return next, nil
}

// RecordEvaluation stores the feedback for free-response question i.
func (s State) RecordEvaluation(i int, e Evaluation) (State, error) {
	if s.page != PageFreeResponseAssessment {
		return s, s.invalid("record evaluation")
	}
	if i < 0 || i >= len(s.freeResponse) {
		return s, fmt.Errorf("%w: question %d out of range", ErrInvalidAnswer, i)
	}
	next := s
	next.evaluations = cloneMap(s.evaluations)
	next.evaluations[i] = e
	return next, nil
}

// FinishFreeResponse returns to the menu.
func (s State) FinishFreeResponse() (State, error) {
	if s.page != PageFreeResponseAssessment {
		return s, s.invalid("finish free response")
	}
	return s.Navigate(PageMenu)
}

// cleared drops any assessment but keeps documents and preferences.
func (s State) cleared() State {
	return State{
		page:       s.page,
		difficulty: s.difficulty,
		documents:  s.documents,
	}
}

func (s State) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, s.page)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap[V any](in map[int]V) map[int]V {
	out := make(map[int]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
