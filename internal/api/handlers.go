package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SandhanuDulmeth/Health-Triage/internal/capture"
	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
	"github.com/SandhanuDulmeth/Health-Triage/internal/service"
)

func (s *Server) handleCreateSession(c *gin.Context) {
	session := s.sessions.Create(c.Request.Context())
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

type submitRequest struct {
	Text        string                   `json:"text"`
	Attachments []domain.MediaAttachment `json:"attachments"`
	PainLevel   *int                     `json:"painLevel"`
	Location    *domain.LocationHint     `json:"location"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	session, err := s.sessions.Submit(c.Request.Context(), c.Param("id"), service.SubmitInput{
		Text:        req.Text,
		Attachments: req.Attachments,
		PainLevel:   req.PainLevel,
		Location:    req.Location,
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, session)
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptySubmission):
		// Validation no-op: nothing changed, nothing to report loudly.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPainLevel), errors.Is(err, domain.ErrAttachmentTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMessageLimit):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		// The session itself is in ERROR with history retained; the
		// client shows the generic message and may retry.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   domain.ErrAnalysisUnavailable.Error(),
			"session": session,
		})
	}
}

func (s *Server) handleReset(c *gin.Context) {
	session, err := s.sessions.Reset(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleSelectFile turns a user-picked image file into an attachment,
// independent of any recording state.
func (s *Server) handleSelectFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, config.MaxAttachmentBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	if len(data) > config.MaxAttachmentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": domain.ErrAttachmentTooLarge.Error()})
		return
	}

	var att domain.MediaAttachment
	recorder := capture.NewRecorder(nil, func(a domain.MediaAttachment) { att = a })
	recorder.SelectFile(header.Header.Get("Content-Type"), data)

	c.JSON(http.StatusCreated, att)
}
