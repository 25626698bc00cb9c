package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"buslink/internal/audit"
	"buslink/internal/platform/metrics"
	"buslink/pkg/httputil"
	"buslink/pkg/requestcontext"
)

// Principal is the minimal identity descriptor carried into handlers after a
// credential check.
type Principal struct {
	ID    string
	Email string
}

// TokenVerifier confirms a bearer credential and resolves it to a Principal.
// The full Authorization header value is passed through; header parsing is
// the verifier's concern so absent and malformed credentials fail the same
// way.
type TokenVerifier interface {
	Verify(ctx context.Context, authorization string) (Principal, error)
}

// RequireAuth guards a route subtree. On success the principal's ID and
// email are placed in the request context; on any failure the response is a
// uniform 401 regardless of why the credential was rejected. Rejections are
// counted, logged, and audited; recorder may be nil in tests.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger, m *metrics.Metrics, recorder audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, err := verifier.Verify(ctx, r.Header.Get("Authorization"))
			if err != nil {
				m.IncAuthFailures()
				logger.WarnContext(ctx, "rejected credential",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				if recorder != nil {
					recorder.Record(ctx, audit.Event{Action: audit.ActionAuthFailed, Subject: r.URL.Path})
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithUserID(ctx, principal.ID)
			ctx = requestcontext.WithUserEmail(ctx, principal.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
