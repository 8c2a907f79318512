package moods

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/middleware"
)

// Handler handles mood journal requests.
type Handler struct {
	service MoodService
}

// NewHandler creates a new moods handler.
func NewHandler(service MoodService) *Handler {
	return &Handler{service: service}
}

// List renders the journal (GET /moods).
func (h *Handler) List(c echo.Context) error {
	store := localstore.FromContext(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	journal, err := h.service.Journal(c.Request().Context(), store)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, Page(middleware.GetCSRFToken(c), journal, FormState{}))
}

// Record stores a new entry (POST /moods). Validation failures re-render
// the form with 422; success redirects back to the list, or swaps the
// journal section in place for HTMX.
func (h *Handler) Record(c echo.Context) error {
	store := localstore.FromContext(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	ctx := c.Request().Context()

	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	form := FormState{Note: req.Note}
	result, err := h.record(c, store, req)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code != http.StatusUnprocessableEntity {
			return err
		}
		form.Error = appErr.Message
	} else {
		form = FormState{Awarded: result.Awarded, Saved: true}
	}

	journal, err := h.service.Journal(ctx, store)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if form.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	csrfToken := middleware.GetCSRFToken(c)
	if middleware.IsHTMX(c) {
		return middleware.Render(c, status, JournalSection(csrfToken, journal, form))
	}
	if form.Error == "" {
		middleware.SetFlash(c, middleware.FlashSuccess, savedMessage(result))
		return c.Redirect(http.StatusSeeOther, "/moods")
	}
	return middleware.Render(c, status, Page(csrfToken, journal, form))
}

func (h *Handler) record(c echo.Context, store localstore.Store, req RecordRequest) (*RecordResult, error) {
	mood, err := ParseMood(req.Mood)
	if err != nil {
		return nil, err
	}
	return h.service.Record(c.Request().Context(), store, RecordInput{Mood: mood, Note: req.Note})
}

// savedMessage is the banner shown after a redirecting save.
func savedMessage(result *RecordResult) string {
	if result == nil || len(result.Awarded) == 0 {
		return "Mood saved."
	}
	names := make([]string, len(result.Awarded))
	for i, b := range result.Awarded {
		names[i] = b.Name
	}
	return "Mood saved. New badge earned: " + strings.Join(names, ", ")
}
