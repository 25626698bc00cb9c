// Package handler exposes feedback submission and the public per-driver
// feedback listing.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"buslink/internal/feedback"
	"buslink/internal/platform/metrics"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/httputil"
	"buslink/pkg/requestcontext"
)

// Service defines the feedback operations the handler needs.
type Service interface {
	Submit(ctx context.Context, authorID, driverID string, rating int, comment string) (feedback.Feedback, error)
	ListForDriver(ctx context.Context, driverID string) ([]feedback.Feedback, error)
}

type Handler struct {
	logger   *slog.Logger
	feedback Service
	metrics  *metrics.Metrics
}

func New(feedbackSvc Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, feedback: feedbackSvc, metrics: m}
}

// RegisterProtected mounts the routes that require a verified token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/feedback", h.handleSubmit)
}

// RegisterPublic mounts the routes readable without credentials.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/drivers/{driverID}/feedback", h.handleListForDriver)
}

type submitRequest struct {
	DriverID string `json:"driver_id"`
	Rating   *int   `json:"rating"`
	Comment  string `json:"comment"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authorID := requestcontext.UserID(ctx)
	if authorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or missing credentials"))
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.DriverID) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "driver_id is required"))
		return
	}
	if req.Rating == nil || *req.Rating < 1 || *req.Rating > 5 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "rating must be between 1 and 5"))
		return
	}

	entry, err := h.feedback.Submit(ctx, authorID, strings.TrimSpace(req.DriverID), *req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "submit feedback failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "request failed"))
		return
	}

	h.metrics.IncFeedbackSubmitted()
	httputil.WriteJSON(w, http.StatusOK, map[string]feedback.Feedback{"feedback": entry})
}

func (h *Handler) handleListForDriver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID := chi.URLParam(r, "driverID")

	list, err := h.feedback.ListForDriver(ctx, driverID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list feedback failed",
			"request_id", requestcontext.RequestID(ctx),
			"driver_id", driverID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "request failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]feedback.Feedback{"feedback": list})
}
