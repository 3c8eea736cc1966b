package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidSession is returned for a missing, tampered or expired session cookie
var ErrInvalidSession = errors.New("invalid session")

// sessionClaims is the payload of the signed session cookie
type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HMAC-signed session cookies.
// All cookies are HttpOnly with SameSite=Lax.
type SessionManager struct {
	cookieName   string
	cookiePath   string
	cookieDomain string
	secure       bool
	httpOnly     bool
	maxAge       int // Session lifetime in seconds
	secret       []byte
	now          func() time.Time
}

// NewSessionManager creates a session manager signing with secret
func NewSessionManager(cookieName, secret string, secure bool, maxAge int) *SessionManager {
	return &SessionManager{
		cookieName: cookieName,
		cookiePath: "/",
		secure:     secure,
		httpOnly:   true,
		maxAge:     maxAge,
		secret:     []byte(secret),
		now:        time.Now,
	}
}

// SetSession signs a token for userID and sets it as the session cookie
func (sm *SessionManager) SetSession(w http.ResponseWriter, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	now := sm.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(sm.maxAge) * time.Second)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    signed,
		Path:     sm.cookiePath,
		Domain:   sm.cookieDomain,
		MaxAge:   sm.maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// GetSession verifies the session cookie and returns its user ID
func (sm *SessionManager) GetSession(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return "", fmt.Errorf("session not found: %w", err)
	}
	if cookie.Value == "" {
		return "", ErrInvalidSession
	}

	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (interface{}, error) {
		return sm.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}

// ClearSession removes the session cookie
func (sm *SessionManager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     sm.cookiePath,
		Domain:   sm.cookieDomain,
		MaxAge:   -1,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
