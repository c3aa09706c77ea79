package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
)

func bearerToken(r *http.Request) (string, bool) {
	p := strings.Fields(r.Header.Get("Authorization"))
	if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
		return "", false
	}
	return p[1], true
}

// middlewareAuthentication verifies the bearer token on non-public routes.
// Callers from allow-listed addresses skip the check; a valid token they
// send is still attached to the context. Internal routes accept allow-listed
// callers only, a token is not enough.
func middlewareAuthentication(verifier jwt.JWT, routes *Router, trusted allowlist) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			if routes.isPublic(r.Method, route) {
				next.ServeHTTP(w, r)
				return
			}

			token, hasToken := bearerToken(r)
			allowed := trusted.allows(clientIP(r))

			if routes.isInternal(r.Method, route) && !allowed {
				slog.WarnContext(r.Context(), "internal route refused", "path", route, "client_ip", clientIP(r))
				writeJSON(w, errorResponse{Message: "Access restricted to trusted hosts"}, http.StatusForbidden)
				return
			}

			if allowed {
				if hasToken && verifier != nil {
					if claims, err := verifier.Verify(token); err == nil {
						r = r.WithContext(jwt.SetAuth(r.Context(), claims))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			if !hasToken {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			if verifier == nil {
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "bearer token rejected", "error", err)
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
