package chat

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/middleware"
)

// Handler serves the chat page and the same-origin relay.
type Handler struct {
	transcripts *TranscriptStore
	turner      *Turner
	completer   Completer
}

// NewHandler creates a chat handler. completer may be nil, in which case
// POST /api/chat answers 503.
func NewHandler(transcripts *TranscriptStore, turner *Turner, completer Completer) *Handler {
	return &Handler{transcripts: transcripts, turner: turner, completer: completer}
}

// Show starts a fresh conversation (GET /chatbot). Every page view gets
// its own transcript.
func (h *Handler) Show(c echo.Context) error {
	tr := h.transcripts.Create()
	return middleware.Render(c, http.StatusOK, Page(middleware.GetCSRFToken(c), tr.Snapshot()))
}

// Send runs one turn (POST /chatbot/messages). An unknown or expired
// transcript ID starts a new conversation rather than failing.
func (h *Handler) Send(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	tr, ok := h.transcripts.Get(req.TranscriptID)
	if !ok {
		slog.Debug("chat transcript not found, starting a new one", slog.String("transcript_id", req.TranscriptID))
		tr = h.transcripts.Create()
	}

	if _, err := h.turner.Turn(c.Request().Context(), tr, req.Message); err != nil {
		if errors.Is(err, ErrBusy) {
			return apperror.NewConflict("Please wait for NeroCare to reply before sending another message.")
		}
		return err
	}

	csrfToken := middleware.GetCSRFToken(c)
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, Conversation(csrfToken, tr.Snapshot()))
	}
	return middleware.Render(c, http.StatusOK, Page(csrfToken, tr.Snapshot()))
}

// Relay answers POST /api/chat with {"reply": ...} from the configured
// chat model.
func (h *Handler) Relay(c echo.Context) error {
	if h.completer == nil {
		return apperror.NewUnavailable("chat relay is not configured")
	}

	var req RelayRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return apperror.NewBadRequest("message is required")
	}
	if r := []rune(message); len(r) > maxMessageRunes {
		message = string(r[:maxMessageRunes])
	}

	reply, err := h.completer.Complete(c.Request().Context(), message)
	if err != nil {
		return apperror.NewBadGateway("chat model unavailable", err)
	}
	return c.JSON(http.StatusOK, RelayResponse{Reply: reply})
}
