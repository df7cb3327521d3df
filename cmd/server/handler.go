// Package main provides the support chatbot HTTP server entry point.
package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxutil "github.com/edufuture/edubot/internal/context"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/metrics"
	"github.com/edufuture/edubot/internal/router"
	"github.com/edufuture/edubot/internal/sentry"
	"github.com/edufuture/edubot/internal/session"
	"github.com/edufuture/edubot/internal/storage"
)

// chatRequest is the POST /chat payload.
// SessionID is optional; omitting it starts a new conversation.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// chatResponse is the POST /chat reply
type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Route     string `json:"route"`
}

type chatHandler struct {
	router   *router.Router
	sessions *session.Manager
	db       *storage.DB
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func newChatHandler(rt *router.Router, sessions *session.Manager, db *storage.DB, m *metrics.Metrics, log *logger.Logger) *chatHandler {
	return &chatHandler{
		router:   rt,
		sessions: sessions,
		db:       db,
		metrics:  m,
		log:      log.WithModule("chat"),
	}
}

// Handle resolves one chat message
func (h *chatHandler) Handle(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.HTTPErrorsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	var sess *session.Session
	if req.SessionID == "" {
		sess = h.sessions.Create()
		h.metrics.SessionsCreated.Inc()
		h.metrics.SessionsActive.Inc()
	} else {
		var created bool
		sess, created = h.sessions.GetOrCreate(req.SessionID)
		if created {
			h.metrics.SessionsCreated.Inc()
			h.metrics.SessionsActive.Inc()
		}
	}

	ctx := ctxutil.WithSessionID(c.Request.Context(), sess.ID)

	// One in-flight request per session: memory and transcript order
	// must match arrival order.
	sess.Lock()
	defer sess.Unlock()

	reply, err := h.router.Respond(ctx, sess.Memory, req.Message)
	if err != nil {
		h.respondError(c, sess.ID, err)
		return
	}

	// Archive on a detached context so a client disconnect after the
	// reply was produced never loses the exchange. Failures are logged,
	// never surfaced to the user.
	if dbErr := h.db.AppendExchange(ctxutil.PreserveTracing(ctx), sess.ID, req.Message, reply.Text); dbErr != nil {
		h.metrics.TranscriptWriteErrors.Inc()
		h.log.WithSessionID(sess.ID).WithError(dbErr).Error("Failed to archive exchange")
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID: sess.ID,
		Reply:     reply.Text,
		Route:     reply.Route,
	})
}

func (h *chatHandler) respondError(c *gin.Context, sessionID string, err error) {
	log := h.log.WithSessionID(sessionID).WithError(err)

	switch {
	case errors.Is(err, domerrors.ErrInvalidInput):
		h.metrics.HTTPErrorsTotal.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
	case errors.Is(err, domerrors.ErrCompletionDisabled):
		h.metrics.HTTPErrorsTotal.WithLabelValues("completion_failed").Inc()
		log.Warn("Message unmatched and completion disabled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no completion provider configured"})
	case errors.Is(err, domerrors.ErrTimeout):
		h.metrics.HTTPErrorsTotal.WithLabelValues("completion_failed").Inc()
		log.Error("Completion timed out")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": domerrors.GetUserMessage(err)})
	default:
		h.metrics.HTTPErrorsTotal.WithLabelValues("completion_failed").Inc()
		log.Error("Failed to resolve message")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate a reply"})
	}
}

// HandleTranscript streams a session transcript as gzip-compressed JSON
func (h *chatHandler) HandleTranscript(c *gin.Context) {
	sessionID := c.Param("id")

	c.Header("Content-Type", "application/json")
	c.Header("Content-Encoding", "gzip")

	if err := h.db.ExportTranscript(c.Request.Context(), sessionID, c.Writer); err != nil {
		if errors.Is(err, domerrors.ErrSessionNotFound) {
			h.metrics.HTTPErrorsTotal.WithLabelValues("not_found").Inc()
			c.Header("Content-Encoding", "")
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.log.WithSessionID(sessionID).WithError(err).Error("Failed to export transcript")
		c.Header("Content-Encoding", "")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
