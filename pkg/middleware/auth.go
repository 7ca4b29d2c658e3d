package middleware

import (
	"context"
	"net/http"
	"strings"

	"cloudbase/pkg/logger"
	"cloudbase/pkg/token"

	"github.com/julienschmidt/httprouter"
)

const UserEmailKey contextKey = "user_email"

// UserEmail returns the authenticated caller's email, set by BearerAuth.
func UserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// BearerAuth verifies the Authorization header and stores the caller's
// email on the request context. Requests without a valid token get 401.
func BearerAuth(sealer *token.Sealer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				rejectUnauthorized(w, log, r, "missing bearer token")
				return
			}

			email, err := sealer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				rejectUnauthorized(w, log, r, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly allows only the configured admin emails through. It must
// run after BearerAuth.
func AdminOnly(adminEmails []string, log *logger.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[strings.ToLower(email)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := UserEmail(r.Context())
			if !ok {
				rejectUnauthorized(w, log, r, "missing bearer token")
				return
			}

			if _, isAdmin := allowed[strings.ToLower(email)]; !isAdmin {
				requestID := ""
				if rid := r.Context().Value(RequestIDKey); rid != nil {
					requestID, _ = rid.(string)
				}
				log.Warn("Admin access denied",
					"request_id", requestID,
					"email", email,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"Admin access required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireBearer is the per-route variant of BearerAuth for handlers
// that mix public and protected routes on one router.
func RequireBearer(sealer *token.Sealer, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				rejectUnauthorized(w, log, r, "missing bearer token")
				return
			}

			email, err := sealer.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				rejectUnauthorized(w, log, r, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, email)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// RequireAdmin combines bearer verification with the admin allow-list
// for routes registered on a shared router.
func RequireAdmin(sealer *token.Sealer, adminEmails []string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[strings.ToLower(email)] = struct{}{}
	}
	bearer := RequireBearer(sealer, log)

	return func(next httprouter.Handle) httprouter.Handle {
		return bearer(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			email, _ := UserEmail(r.Context())
			if _, isAdmin := allowed[strings.ToLower(email)]; !isAdmin {
				log.Warn("Admin access denied",
					"email", email,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"Admin access required"}`))
				return
			}

			next(w, r, ps)
		})
	}
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID, _ = rid.(string)
	}

	log.Warn("Unauthorized request",
		"request_id", requestID,
		"reason", reason,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Authentication required"}`))
}
