package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"stage-cue/internal/auth"
	"stage-cue/internal/domain"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserKey is the context key for the signed-in *domain.User
	UserKey ContextKey = "user"
	// IsAuthenticatedKey is the context key for authentication status
	IsAuthenticatedKey ContextKey = "isAuthenticated"
)

// UserLookup resolves a session's user ID to an account
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// AuthMiddleware provides authentication middleware functions
type AuthMiddleware struct {
	sessionManager *auth.SessionManager
	users          UserLookup
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(sessionManager *auth.SessionManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sessionManager,
		users:          users,
	}
}

// authenticate resolves the request's session to a user, or nil
func (m *AuthMiddleware) authenticate(r *http.Request) *domain.User {
	userID, err := m.sessionManager.GetSession(r)
	if err != nil || userID == "" {
		return nil
	}
	user, err := m.users.GetUser(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(r.Context(), UserKey, user)
	ctx = context.WithValue(ctx, IsAuthenticatedKey, user != nil)
	return r.WithContext(ctx)
}

// RequireAuth is middleware for pages: unauthenticated requests are
// redirected to the login page.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.authenticate(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	}
}

// RequireAPIAuth is middleware for the JSON API. Returns 401 Unauthorized
// instead of redirecting.
func (m *AuthMiddleware) RequireAPIAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.authenticate(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	}
}

// OptionalAuth records the user when signed in and lets every request through
func (m *AuthMiddleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withUser(r, m.authenticate(r)))
	}
}

// RequirePermission blocks the action unless the signed-in user's role allows
// it. It must run inside RequireAPIAuth.
func RequirePermission(action auth.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !auth.HasPermission(user.Role, action) {
			writeError(w, http.StatusForbidden, "You don't have permission to do that.")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// GetUser retrieves the signed-in user from the request context
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID retrieves the user ID from the request context
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

// IsAuthenticated checks if the request is authenticated
func IsAuthenticated(ctx context.Context) bool {
	isAuth, ok := ctx.Value(IsAuthenticatedKey).(bool)
	if !ok {
		return false
	}
	return isAuth
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
