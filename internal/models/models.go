// Package models holds the JSON request and response bodies of the HTTP API.
package models

import (
	"learnassess/internal/db"
	"learnassess/internal/ingest"
	"learnassess/internal/mcq"
	"learnassess/internal/session"
)

// SessionView is the learner's current position in the flow.
type SessionView struct {
	ID                string                     `json:"id"`
	Page              session.Page               `json:"page"`
	Difficulty        string                     `json:"difficulty"`
	NumQuestions      int                        `json:"num_questions"`
	Documents         []string                   `json:"documents"`
	CurrentQuestion   int                        `json:"current_question"`
	TotalQuestions    int                        `json:"total_questions"`
	Answers           map[int]string             `json:"answers,omitempty"`
	Result            *mcq.Result                `json:"result,omitempty"`
	FreeResponseCount int                        `json:"free_response_count,omitempty"`
	Evaluations       map[int]session.Evaluation `json:"evaluations,omitempty"`
}

// NewSessionView renders s for the client.
func NewSessionView(id string, s session.State) SessionView {
	v := SessionView{
		ID:                id,
		Page:              s.Page(),
		Difficulty:        string(s.Difficulty()),
		NumQuestions:      s.NumQuestions(),
		Documents:         s.Documents(),
		CurrentQuestion:   s.Current(),
		TotalQuestions:    len(s.Questions()),
		FreeResponseCount: len(s.FreeResponse()),
	}
	if v.Documents == nil {
		v.Documents = []string{}
	}
	if v.TotalQuestions > 0 {
		v.Answers = s.Answers()
	}
	if s.Page() == session.PageMCQResults {
		r := s.Result()
		v.Result = &r
	}
	if v.FreeResponseCount > 0 {
		v.Evaluations = s.Evaluations()
	}
	return v
}

// DocumentsResponse reports what was indexed from an upload.
type DocumentsResponse struct {
	Summary ingest.Summary `json:"summary"`
	Session SessionView    `json:"session"`
}

type NavigateRequest struct {
	Page session.Page `json:"page" binding:"required"`
}

type ConfigRequest struct {
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}

// QuestionResponse is the question being answered, without its key.
type QuestionResponse struct {
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Question mcq.Question `json:"question"`
	Selected string       `json:"selected,omitempty"`
	IsLast   bool         `json:"is_last"`
}

type AnswerRequest struct {
	Answer string       `json:"answer" binding:"required"`
	Move   session.Move `json:"move" binding:"required"`
}

// ResultsResponse is the score with per-question feedback.
type ResultsResponse struct {
	Correct   int                  `json:"correct"`
	Incorrect int                  `json:"incorrect"`
	Total     int                  `json:"total"`
	Percent   float64              `json:"percent"`
	Band      mcq.Band             `json:"band"`
	Review    []mcq.QuestionReview `json:"review"`
}

// FreeResponseQuestion is one open-ended question block.
type FreeResponseQuestion struct {
	Index      int                 `json:"index"`
	Text       string              `json:"text"`
	Evaluation *session.Evaluation `json:"evaluation,omitempty"`
}

type FreeResponseResponse struct {
	Questions []FreeResponseQuestion `json:"questions"`
}

type EvaluateRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type HistoryResponse struct {
	Results []db.Result `json:"results"`
}

// ParseRequest runs the question parser over raw model output.
type ParseRequest struct {
	Text  string `json:"text" binding:"required"`
	Split string `json:"split"`
}

// ParsedQuestion is a parsed question with its completeness flag.
type ParsedQuestion struct {
	mcq.Question
	Incomplete bool `json:"incomplete"`
}

type ParseResponse struct {
	Questions []ParsedQuestion `json:"questions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
