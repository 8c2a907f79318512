package dashboard

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/middleware"
)

// Handler serves the dashboard page.
type Handler struct {
	reconciler Reconciler
}

// NewHandler creates a new dashboard handler.
func NewHandler(reconciler Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// Show renders the dashboard (GET /dashboard). Identity is reconciled
// before the journal is read, so a wiped session shows empty statistics.
func (h *Handler) Show(c echo.Context) error {
	store := localstore.FromContext(c)
	if store == nil {
		return apperror.NewMissingContext()
	}
	ctx := c.Request().Context()

	profile, err := h.reconciler.Reconcile(ctx, store)
	if err != nil {
		return err
	}

	entries, err := localstore.Moods(ctx, store)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading moods: %w", err))
	}
	streak, err := localstore.Streak(ctx, store)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading streak: %w", err))
	}

	return middleware.Render(c, http.StatusOK, Page(profile, Derive(entries, streak)))
}
