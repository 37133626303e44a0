package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnassess/internal/db"
	"learnassess/internal/mcq"
	"learnassess/internal/models"
	"learnassess/internal/prompt"
	"learnassess/internal/session"
)

var errNoMaterial = errors.New("no processed material for this session")

// HandleConfigure sets question count and difficulty. The session must be
// on page, so each config route only touches its own assessment.
func (h *Handler) HandleConfigure(page session.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			h.handleErrorAndNotify(c, http.StatusInternalServerError, "Configure", errors.New("session ID missing from context"))
			return
		}
		var req models.ConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Config Request", err)
			return
		}
		var d prompt.Difficulty
		if req.Difficulty != "" {
			var err error
			if d, err = prompt.ParseDifficulty(req.Difficulty); err != nil {
				h.handleErrorAndNotify(c, http.StatusBadRequest, "Validate Config Request", err)
				return
			}
		}

		s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
			if s.Page() != page {
				return s, session.ErrInvalidTransition
			}
			return s.Configure(req.NumQuestions, d)
		})
		if err != nil {
			h.fail(c, "Configure", err)
			return
		}
		c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
	}
}

// HandleStartMCQ generates questions from the session's material and opens
// the assessment.
func (h *Handler) HandleStartMCQ(c *gin.Context) {
	id, ws, ok := h.workspace(c, "Start MCQ")
	if !ok {
		return
	}
	cur := h.Sessions.Get(id)
	if cur.Page() != session.PageMCQConfig {
		h.fail(c, "Start MCQ", session.ErrInvalidTransition)
		return
	}

	questions, err := h.Assessor.GenerateMCQ(c.Request.Context(), ws.Engine, cur.NumQuestions(), cur.Difficulty())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.handleErrorAndNotify(c, status, "Generate Questions", err)
		return
	}

	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		return s.StartMCQ(questions)
	})
	if err != nil {
		h.fail(c, "Start MCQ", err)
		return
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
}

// HandleGetQuestion returns the current question without its answer key.
func (h *Handler) HandleGetQuestion(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Get Question", errors.New("session ID missing from context"))
		return
	}
	s := h.Sessions.Get(id)
	q, err := s.CurrentQuestion()
	if err != nil {
		h.fail(c, "Get Question", err)
		return
	}
	total := len(s.Questions())
	c.JSON(http.StatusOK, models.QuestionResponse{
		Index:    s.Current(),
		Total:    total,
		Question: q.Redacted(),
		Selected: s.Answers()[s.Current()],
		IsLast:   s.Current() == total-1,
	})
}

// HandleAnswer records an answer and moves next, previous or submits.
func (h *Handler) HandleAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Answer", errors.New("session ID missing from context"))
		return
	}
	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Answer Request", err)
		return
	}

	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		return s.Answer(req.Answer, req.Move)
	})
	if err != nil {
		h.fail(c, "Answer", err)
		return
	}
	if req.Move == session.MoveSubmit {
		h.recordCompletion(c.Request.Context(), id, s)
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
}

// recordCompletion saves a scored assessment and announces it. Failures are
// logged; the learner still gets their results.
func (h *Handler) recordCompletion(ctx context.Context, id uuid.UUID, s session.State) {
	r := s.Result()
	_, err := h.Results.SaveResult(ctx, db.Result{
		SessionID:  id,
		Kind:       db.KindMCQ,
		Difficulty: string(s.Difficulty()),
		Correct:    r.Correct,
		Total:      r.Total,
		Percent:    r.Percent,
		Sources:    s.Documents(),
	})
	if err != nil && !errors.Is(err, db.ErrDisabled) {
		h.Logger.Error("saving result failed", zap.String("session", id.String()), zap.Error(err))
	}
	if h.Notifier != nil {
		h.Notifier.AssessmentCompleted(id.String(), r.Correct, r.Total, r.Percent, string(s.Difficulty()))
	}
	h.Logger.Info("assessment completed",
		zap.String("session", id.String()),
		zap.Int("correct", r.Correct),
		zap.Int("total", r.Total),
		zap.Float64("percent", r.Percent))
}

// HandleResults returns the score and per-question review.
func (h *Handler) HandleResults(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Get Results", errors.New("session ID missing from context"))
		return
	}
	s := h.Sessions.Get(id)
	if s.Page() != session.PageMCQResults {
		h.fail(c, "Get Results", session.ErrNoAssessment)
		return
	}
	r := s.Result()
	c.JSON(http.StatusOK, models.ResultsResponse{
		Correct:   r.Correct,
		Incorrect: r.Incorrect(),
		Total:     r.Total,
		Percent:   r.Percent,
		Band:      r.Band(),
		Review:    mcq.Review(s.Questions(), s.Answers()),
	})
}

// workspace resolves the session and its processed material, aborting the
// request when either is missing.
func (h *Handler) workspace(c *gin.Context, action string) (uuid.UUID, *Workspace, bool) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, action, errors.New("session ID missing from context"))
		return uuid.Nil, nil, false
	}
	ws, ok := h.Sessions.Workspace(id)
	if !ok || ws == nil {
		h.handleErrorAndNotify(c, http.StatusConflict, action, errNoMaterial)
		return uuid.Nil, nil, false
	}
	return id, ws, true
}
