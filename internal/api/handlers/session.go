package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnassess/internal/models"
	"learnassess/internal/session"
)

// HandleGetSession returns the learner's current page and progress.
func (h *Handler) HandleGetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Get Session", errors.New("session ID missing from context"))
		return
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), h.Sessions.Get(id)))
}

// HandleNavigate moves the learner to another page. Leaving the results page
// goes through the results actions so the assessment is discarded.
func (h *Handler) HandleNavigate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Navigate", errors.New("session ID missing from context"))
		return
	}
	var req models.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Navigate Request", err)
		return
	}

	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		if s.Page() == session.PageMCQResults {
			switch req.Page {
			case session.PageMenu:
				return s.TryAnother()
			case session.PageUpload:
				return s.ReviewMaterials()
			}
		}
		return s.Navigate(req.Page)
	})
	if err != nil {
		h.fail(c, "Navigate", err)
		return
	}
	c.JSON(http.StatusOK, models.NewSessionView(id.String(), s))
}
