// Package handler exposes the public university catalog.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"buslink/internal/university"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/httputil"
	"buslink/pkg/requestcontext"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]university.University, error)
}

type Handler struct {
	logger     *slog.Logger
	university Service
}

func New(universitySvc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, university: universitySvc}
}

// Register mounts the public catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/universities", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.university.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list universities failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "request failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]university.University{"universities": list})
}
