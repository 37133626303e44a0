package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnassess/internal/assessment"
	"learnassess/internal/db"
	"learnassess/internal/documents"
	"learnassess/internal/index"
	"learnassess/internal/ingest"
	"learnassess/internal/mcq"
	"learnassess/internal/prompt"
	"learnassess/internal/session"
)

// Session keys - keep these consistent with the middleware.
const (
	SessionIDKey     = "sid"
	SessionIDContext = "sessionID"
)

// Workspace is the material a session's assessments are generated from.
type Workspace struct {
	Engine  assessment.Querier
	Sources []string
	Chunks  int
}

type Ingestor interface {
	Build(ctx context.Context, sessionID uuid.UUID, uploads []ingest.Upload, videoURLs []string) (*index.Flat, ingest.Summary, error)
}

type Assessor interface {
	GenerateMCQ(ctx context.Context, q assessment.Querier, n int, d prompt.Difficulty) ([]mcq.Question, error)
	GenerateFreeResponse(ctx context.Context, q assessment.Querier, n int, d prompt.Difficulty) ([]string, error)
	EvaluateFreeResponse(ctx context.Context, q assessment.Querier, block, answer string) (string, error)
}

type Notifier interface {
	AssessmentCompleted(session string, correct, total int, percent float64, difficulty string)
	Error(action, path string, status int, err error)
}

// Handler contains the API handlers dependencies
type Handler struct {
	Sessions       *session.Store[*Workspace]
	Ingestor       Ingestor
	Assessor       Assessor
	NewEngine      func(*index.Flat) assessment.Querier
	Results        db.ResultStore
	Notifier       Notifier
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// sessionID returns the ID the session middleware put on the context.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(SessionIDContext)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrNoAssessment):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidAnswer), errors.Is(err, assessment.ErrEmptyAnswer):
		return http.StatusBadRequest
	case errors.Is(err, documents.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingest.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mcq.ErrNoQuestions):
		return http.StatusBadGateway
	case errors.Is(err, db.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// handleErrorAndNotify logs an error, reports server-side failures to the
// notifier and aborts the request.
func (h *Handler) handleErrorAndNotify(c *gin.Context, statusCode int, action string, err error) {
	id, _ := sessionID(c)
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("session", id.String()),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", statusCode),
		zap.Error(err),
	}
	if statusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed", fields...)
		if h.Notifier != nil {
			h.Notifier.Error(action, c.Request.URL.Path, statusCode, err)
		}
	} else {
		h.Logger.Info("request rejected", fields...)
	}
	c.AbortWithStatusJSON(statusCode, gin.H{"error": fmt.Sprintf("%s: %v", action, err)})
}

// fail is handleErrorAndNotify with the status derived from err.
func (h *Handler) fail(c *gin.Context, action string, err error) {
	h.handleErrorAndNotify(c, statusFor(err), action, err)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.Sessions.Len()})
}
