// Package handler exposes signup over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"buslink/internal/identity"
	"buslink/internal/platform/metrics"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/httputil"
	"buslink/pkg/requestcontext"
)

// Service defines the identity operations the handler needs.
type Service interface {
	Signup(ctx context.Context, user identity.NewUser) (identity.Identity, error)
}

type Handler struct {
	logger   *slog.Logger
	identity Service
	metrics  *metrics.Metrics
}

func New(identitySvc Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, identity: identitySvc, metrics: m}
}

// Register mounts the public auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
}

type signupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	RollNumber     string `json:"roll_number"`
	PhoneNumber    string `json:"phone_number"`
	EmergencyPhone string `json:"emergency_phone"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := validateSignupRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ident, err := h.identity.Signup(ctx, identity.NewUser{
		Email:          req.Email,
		Password:       req.Password,
		Name:           strings.TrimSpace(req.Name),
		Role:           req.Role,
		RollNumber:     req.RollNumber,
		PhoneNumber:    req.PhoneNumber,
		EmergencyPhone: req.EmergencyPhone,
	})
	if err != nil {
		if dErrors.Is(err, dErrors.CodeConflict) || dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "signup rejected",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "signup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create user"))
		return
	}

	h.metrics.IncSignups()
	httputil.WriteJSON(w, http.StatusOK, map[string]userSummary{
		"user": {ID: ident.ID, Email: ident.Email, Name: ident.Name, Role: ident.Role},
	})
}

func validateSignupRequest(req signupRequest) error {
	if !govalidator.IsEmail(req.Email) || !govalidator.StringLength(req.Email, "3", "255") {
		return dErrors.New(dErrors.CodeBadRequest, "invalid email")
	}
	if len(req.Password) < 6 {
		return dErrors.New(dErrors.CodeBadRequest, "password must be at least 6 characters")
	}
	if strings.TrimSpace(req.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if req.Role != identity.RoleStudent && req.Role != identity.RoleParent {
		return dErrors.New(dErrors.CodeBadRequest, "role must be student or parent")
	}
	return nil
}
