package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnassess/internal/documents"
	"learnassess/internal/ingest"
	"learnassess/internal/models"
	"learnassess/internal/session"
)

// HandleUploadDocuments indexes uploaded files and video links for the
// session and opens the menu. Form fields: "files" (repeated) and "videos"
// (repeated YouTube URLs).
func (h *Handler) HandleUploadDocuments(c *gin.Context) {
	startTime := time.Now()
	id, ok := sessionID(c)
	if !ok {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Upload Documents", errors.New("session ID missing from context"))
		return
	}
	if p := h.Sessions.Get(id).Page(); p != session.PageUpload {
		h.fail(c, "Upload Documents", fmt.Errorf("%w: upload from %s", session.ErrInvalidTransition, p))
		return
	}

	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	var uploads []ingest.Upload
	for _, fh := range c.Request.MultipartForm.File["files"] {
		if !documents.Supported(fh.Filename) {
			h.handleErrorAndNotify(c, http.StatusUnsupportedMediaType, "Validate Upload",
				fmt.Errorf("%w: %s (allowed: pdf, docx, txt, md)", documents.ErrUnsupportedType, fh.Filename))
			return
		}
		data, err := readUpload(fh)
		if err != nil {
			h.handleErrorAndNotify(c, http.StatusBadRequest, "Read Upload", err)
			return
		}
		uploads = append(uploads, ingest.Upload{Name: fh.Filename, Data: data})
	}
	var videos []string
	for _, v := range c.Request.MultipartForm.Value["videos"] {
		if v = strings.TrimSpace(v); v != "" {
			videos = append(videos, v)
		}
	}
	if len(uploads) == 0 && len(videos) == 0 {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Upload Documents", errors.New("no files or videos provided"))
		return
	}

	idx, summary, err := h.Ingestor.Build(c.Request.Context(), id, uploads, videos)
	if err != nil {
		h.fail(c, "Process Documents", err)
		return
	}

	s, err := h.Sessions.Update(id, func(s session.State) (session.State, error) {
		return s.DocumentsReady(summary.Sources)
	})
	if err != nil {
		h.fail(c, "Process Documents", err)
		return
	}
	h.Sessions.SetWorkspace(id, &Workspace{Engine: h.NewEngine(idx), Sources: summary.Sources, Chunks: summary.Chunks})

	h.Logger.Info("documents processed",
		zap.String("session", id.String()),
		zap.Int("files", len(uploads)),
		zap.Int("videos", len(videos)),
		zap.Int("chunks", summary.Chunks),
		zap.Duration("took", time.Since(startTime)))
	c.JSON(http.StatusOK, models.DocumentsResponse{Summary: summary, Session: models.NewSessionView(id.String(), s)})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}
