package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnassess/internal/db"
	"learnassess/internal/models"
	"learnassess/internal/session"
)

// HandleStartFreeResponse generates open-ended questions and opens the
// free-response assessment.
func (h *Handler) HandleStartFreeResponse(c *gin.Context) {
	id, ws, ok := h.workspace(c, "Start Free Response")
	if !ok {
		return
	}
	cur := h.Sessions.Get(id)
	if cur.Page() != session.PageFreeResponseConfig {
		h.fail(c, "Start Free Response", session.ErrInvalidTransition)
		return
	}

	blocks, err := h.Assessor.GenerateFreeResponse(c.Request.Context(), ws.Engine, cur.NumQuestions(), cur.Difficulty())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.handleErrorAndNotify(c, status, "Generate Free Response", err)
		return
	}

	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		return s.StartFreeResponse(blocks)
	})
	if err != nil {
		h.fail(c, "Start Free Response", err)
		return
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
}

// HandleGetFreeResponse lists the question blocks with any feedback so far.
func (h *Handler) HandleGetFreeResponse(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Get Free Response", errors.New("session ID missing from context"))
		return
	}
	s := h.Sessions.Get(id)
	if s.Page() != session.PageFreeResponseAssessment {
		h.fail(c, "Get Free Response", session.ErrNoAssessment)
		return
	}
	evals := s.Evaluations()
	resp := models.FreeResponseResponse{Questions: []models.FreeResponseQuestion{}}
	for i, block := range s.FreeResponse() {
		q := models.FreeResponseQuestion{Index: i, Text: block}
		if e, ok := evals[i]; ok {
			q.Evaluation = &e
		}
		resp.Questions = append(resp.Questions, q)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleEvaluate grades one free-response answer.
func (h *Handler) HandleEvaluate(c *gin.Context) {
	id, ws, ok := h.workspace(c, "Evaluate Answer")
	if !ok {
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Evaluate Answer", fmt.Errorf("invalid question index %q", c.Param("index")))
		return
	}
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Evaluate Request", err)
		return
	}

	s := h.Sessions.Get(id)
	if s.Page() != session.PageFreeResponseAssessment {
		h.fail(c, "Evaluate Answer", session.ErrNoAssessment)
		return
	}
	blocks := s.FreeResponse()
	if i < 0 || i >= len(blocks) {
		h.fail(c, "Evaluate Answer", fmt.Errorf("%w: question %d out of range", session.ErrInvalidAnswer, i))
		return
	}

	feedback, err := h.Assessor.EvaluateFreeResponse(c.Request.Context(), ws.Engine, blocks[i], req.Answer)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.handleErrorAndNotify(c, status, "Evaluate Answer", err)
		return
	}

	eval := session.Evaluation{Answer: req.Answer, Feedback: feedback}
	if _, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		return s.RecordEvaluation(i, eval)
	}); err != nil {
		h.fail(c, "Evaluate Answer", err)
		return
	}
	c.JSON(http.StatusOK, models.FreeResponseQuestion{Index: i, Text: blocks[i], Evaluation: &eval})
}

// HandleFinishFreeResponse saves progress and returns to the menu.
func (h *Handler) HandleFinishFreeResponse(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Finish Free Response", errors.New("session ID missing from context"))
		return
	}
	var finished session.State
	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		finished = s
		return s.FinishFreeResponse()
	})
	if err != nil {
		h.fail(c, "Finish Free Response", err)
		return
	}

	total := len(finished.FreeResponse())
	answered := len(finished.Evaluations())
	_, err = h.Results.SaveResult(c.Request.Context(), db.Result{
		SessionID:  id,
		Kind:       db.KindFreeResponse,
		Difficulty: string(finished.Difficulty()),
		Correct:    answered,
		Total:      total,
		Percent:    100 * float64(answered) / float64(total),
		Sources:    finished.Documents(),
	})
	if err != nil && !errors.Is(err, db.ErrDisabled) {
		h.Logger.Error("saving free-response progress failed", zap.String("session", id.String()), zap.Error(err))
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
}

// HandleHistory lists this session's saved results, newest first.
func (h *Handler) HandleHistory(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "List Results", errors.New("session ID missing from context"))
		return
	}
	results, err := h.Results.ListResults(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "List Results", err)
		return
	}
	c.JSON(http.StatusOK, models.HistoryResponse{Results: results})
}
