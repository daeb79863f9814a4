package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tickstack/tickstack-server/internal/http/response"
	"github.com/tickstack/tickstack-server/internal/identity"
)

// requireAuth validates the bearer token and stamps the verified principal
// onto the request context. Every data route sits behind it; the services
// read the principal back through identity.FromContext.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		claims, err := s.tokens.VerifyToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}

		ctx := identity.WithOwner(r.Context(), claims.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitByPrincipal limits request rates per authenticated principal.
// Must be used after requireAuth.
func (s *Server) rateLimitByPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := identity.FromContext{}.CurrentOwnerID(r.Context())
		if err != nil {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}

		if !s.limiter.Allow(owner) {
			s.logger.Warn("Rate limit exceeded",
				"owner_id", owner,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleIssueToken mints an access token for the configured principal.
func (s *Server) handleIssueToken(w http.ResponseWriter, _ *http.Request) {
	token, err := s.tokens.IssueToken(s.ownerID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		response.InternalError(w, "Failed to issue token", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"token":      token,
		"owner_id":   claims.OwnerID,
		"expires_at": claims.Expiration.Format(time.RFC3339),
	}, s.logger)
}
