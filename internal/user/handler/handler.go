// Package handler exposes the per-user preference and profile routes. Every
// route here requires a verified bearer token; the user id always comes from
// the request context, never from the payload.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"buslink/internal/platform/metrics"
	"buslink/internal/records"
	"buslink/internal/user"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/httputil"
	"buslink/pkg/requestcontext"
)

// Service defines the user operations the handler needs.
type Service interface {
	SaveUniversity(ctx context.Context, userID, universityID string) error
	SaveLocation(ctx context.Context, userID string, loc user.Location) error
	SavePickupRoute(ctx context.Context, userID string, route user.PickupRoute) error
	PickupRoute(ctx context.Context, userID string) (*user.PickupRoute, error)
	Profile(ctx context.Context, userID string) (user.Profile, error)
}

type Handler struct {
	logger  *slog.Logger
	user    Service
	metrics *metrics.Metrics
}

func New(userSvc Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, user: userSvc, metrics: m}
}

// Register mounts the authenticated user routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/user/university", h.handleSaveUniversity)
	r.Post("/user/location", h.handleSaveLocation)
	r.Get("/user/profile", h.handleProfile)
	r.Post("/user/pickup-route", h.handleSavePickupRoute)
	r.Get("/user/pickup-route", h.handlePickupRoute)
}

type saveUniversityRequest struct {
	UniversityID string `json:"university_id"`
}

type saveLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type savePickupRouteRequest struct {
	BusID           string   `json:"bus_id"`
	PickupLatitude  *float64 `json:"pickup_latitude"`
	PickupLongitude *float64 `json:"pickup_longitude"`
}

func (h *Handler) handleSaveUniversity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(ctx, w)
	if !ok {
		return
	}

	var req saveUniversityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.UniversityID) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "university_id is required"))
		return
	}

	if err := h.user.SaveUniversity(ctx, userID, strings.TrimSpace(req.UniversityID)); err != nil {
		h.writeServiceError(ctx, w, "save university", err)
		return
	}

	h.metrics.IncPreferencesSaved(records.KindUniversity)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) handleSaveLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(ctx, w)
	if !ok {
		return
	}

	var req saveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		httputil.WriteError(w, err)
		return
	}

	loc := user.Location{Latitude: *req.Latitude, Longitude: *req.Longitude, Address: strings.TrimSpace(req.Address)}
	if err := h.user.SaveLocation(ctx, userID, loc); err != nil {
		h.writeServiceError(ctx, w, "save location", err)
		return
	}

	h.metrics.IncPreferencesSaved(records.KindLocation)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) handleSavePickupRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(ctx, w)
	if !ok {
		return
	}

	var req savePickupRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.BusID) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "bus_id is required"))
		return
	}
	if err := validateCoordinates(req.PickupLatitude, req.PickupLongitude); err != nil {
		httputil.WriteError(w, err)
		return
	}

	route := user.PickupRoute{
		BusID:           strings.TrimSpace(req.BusID),
		PickupLatitude:  *req.PickupLatitude,
		PickupLongitude: *req.PickupLongitude,
	}
	if err := h.user.SavePickupRoute(ctx, userID, route); err != nil {
		h.writeServiceError(ctx, w, "save pickup route", err)
		return
	}

	h.metrics.IncPreferencesSaved(records.KindPickupRoute)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) handlePickupRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(ctx, w)
	if !ok {
		return
	}

	route, err := h.user.PickupRoute(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "load pickup route", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]*user.PickupRoute{"pickup_route": route})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUserID(ctx, w)
	if !ok {
		return
	}

	profile, err := h.user.Profile(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "load profile", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// requireUserID guards against routes mounted without the auth middleware.
func (h *Handler) requireUserID(ctx context.Context, w http.ResponseWriter) (string, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or missing credentials"))
		return "", false
	}
	return userID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.Is(err, dErrors.CodeBadRequest) {
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "request failed"))
}

// validateCoordinates requires both fields to be present. Zero is a valid
// coordinate, so presence is judged by the pointer, not the value.
func validateCoordinates(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return dErrors.New(dErrors.CodeBadRequest, "latitude and longitude are required")
	}
	if *lat < -90 || *lat > 90 {
		return dErrors.New(dErrors.CodeBadRequest, "latitude must be between -90 and 90")
	}
	if *lng < -180 || *lng > 180 {
		return dErrors.New(dErrors.CodeBadRequest, "longitude must be between -180 and 180")
	}
	return nil
}
