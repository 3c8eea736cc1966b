package handler

import (
	"context"
	"html/template"
	"net/http"

	"golang.org/x/oauth2"

	"stage-cue/internal/auth"
	"stage-cue/internal/broadcast"
	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
	"stage-cue/internal/middleware"
)

// IdentityProvider is the Google sign-in flow. It is nil when sign-in is not configured.
type IdentityProvider interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*auth.GoogleUserInfo, error)
}

// PublicHandler handles routes that work without a session
type PublicHandler struct {
	events         domain.EventService
	userService    domain.UserService
	identity       IdentityProvider
	sessionManager *auth.SessionManager
	stateStore     *auth.StateStore
	display        *broadcast.Mirror // optional
	templates      *template.Template
	log            *logger.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(
	events domain.EventService,
	userService domain.UserService,
	identity IdentityProvider,
	sessionManager *auth.SessionManager,
	stateStore *auth.StateStore,
	display *broadcast.Mirror,
	log *logger.Logger,
) *PublicHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &PublicHandler{
		events:         events,
		userService:    userService,
		identity:       identity,
		sessionManager: sessionManager,
		stateStore:     stateStore,
		display:        display,
		templates:      LoadTemplates(),
		log:            log.WithField("component", "public_handler"),
	}
}

// HandleHome shows the event overview
// GET /
func (h *PublicHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"User":        middleware.GetUser(r.Context()),
		"AuthEnabled": h.identity != nil,
		"Event":       h.events.Snapshot(),
		"Progress":    h.events.Progress(),
	}
	h.render(w, "home.html", data)
}

// HandleCountdown serves the read-only countdown display. The first paint
// comes from the display mirror so the page is not blank until the socket
// delivers a frame.
// GET /countdown
func (h *PublicHandler) HandleCountdown(w http.ResponseWriter, r *http.Request) {
	var view broadcast.View
	if h.display != nil {
		view = h.display.View()
	}
	data := map[string]interface{}{
		"SocketPath":          "/ws/countdown",
		"UpdateType":          broadcast.UpdateType,
		"FlashMillis":         broadcast.FlashWindow.Milliseconds(),
		"HighlightMillis":     broadcast.HighlightWindow.Milliseconds(),
		"Initial":             view.Payload,
		"NewestID":            view.NewestID,
		"FlashLeftMillis":     view.FlashLeft.Milliseconds(),
		"HighlightLeftMillis": view.HighlightLeft.Milliseconds(),
	}
	h.render(w, "countdown.html", data)
}

func (h *PublicHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("failed to render template", map[string]interface{}{"template": name, "error": err.Error()})
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// HandleLogin initiates the Google OAuth flow
// GET /login
func (h *PublicHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		respondError(w, h.log, "login", domain.NewUserFriendlyError(domain.ErrNotInitialized, "Sign-in is not configured", http.StatusServiceUnavailable))
		return
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		respondError(w, h.log, "login", err)
		return
	}
	h.stateStore.Store(state)

	http.Redirect(w, r, h.identity.GetAuthURL(state), http.StatusTemporaryRedirect)
}

// HandleAuthCallback completes sign-in and starts a session
// GET /auth/google/callback
func (h *PublicHandler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		respondError(w, h.log, "auth_callback", domain.NewUserFriendlyError(domain.ErrNotInitialized, "Sign-in is not configured", http.StatusServiceUnavailable))
		return
	}
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	if state == "" || !h.stateStore.Verify(state) {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.identity.Exchange(ctx, code)
	if err != nil {
		h.log.Error("failed to exchange code", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	userInfo, err := h.identity.GetUserInfo(ctx, token)
	if err != nil {
		h.log.Error("failed to get user info", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Failed to get user information", http.StatusInternalServerError)
		return
	}

	user, err := h.userService.GetOrCreateUser(ctx, userInfo.ID, userInfo.Email)
	if err != nil {
		respondError(w, h.log, "auth_callback", err)
		return
	}

	if err := h.sessionManager.SetSession(w, user.ID); err != nil {
		respondError(w, h.log, "auth_callback", err)
		return
	}

	h.log.Info("user signed in", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session
// GET /logout
func (h *PublicHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
