package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnassess/internal/mcq"
	"learnassess/internal/models"
)

// HandleParse runs the question parser over pasted model output. Answers
// are included, so this is for authoring and debugging, not for learners.
func (h *Handler) HandleParse(c *gin.Context) {
	var req models.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Parse Request", err)
		return
	}
	var split mcq.SplitStrategy
	switch req.Split {
	case "", "marker":
		split = mcq.SplitAfterMarker
	case "first_dot":
		split = mcq.SplitAtFirstDot
	default:
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Validate Parse Request", fmt.Errorf("unknown split %q (want marker or first_dot)", req.Split))
		return
	}

	questions := mcq.ParseWith(req.Text, mcq.Options{Split: split})
	resp := models.ParseResponse{Questions: make([]models.ParsedQuestion, len(questions))}
	for i, q := range questions {
		resp.Questions[i] = models.ParsedQuestion{Question: q, Incomplete: q.Incomplete()}
	}
	c.JSON(http.StatusOK, resp)
}
