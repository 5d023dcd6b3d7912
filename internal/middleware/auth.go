package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"snagdef/internal/model"
	"snagdef/internal/token"
)

type tokenVerifier interface {
	Verify(tokenString string, expectedType string) (*token.Claims, error)
}

type userResolver interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

// AuthMiddleware is the access gate: it turns a bearer token into an
// authenticated user, or rejects the request. It knows nothing about routes.
type AuthMiddleware struct {
	verifier tokenVerifier
	users    userResolver
}

func NewAuthMiddleware(verifier tokenVerifier, users userResolver) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users}
}

// RequireAuth verifies the access token and resolves its subject. A valid
// signature whose subject no longer exists is still rejected: the
// credentials are stale.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		bearer := strings.TrimSpace(header[7:])
		claims, err := m.verifier.Verify(bearer, token.TypeAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := m.users.FindByUsername(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			writeDetail(w, http.StatusInternalServerError, "Unexpected server error")
			return
		}

		authUser := model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role}
		ctx := context.WithValue(r.Context(), authUserContextKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin passes only users whose role is admin. It must run after
// RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if user.Role != model.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin privileges required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (model.AuthUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.AuthUser)
	return user, ok
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.ErrorResponse{Detail: detail})
}
