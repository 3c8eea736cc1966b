package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"stage-cue/internal/auth"
	"stage-cue/internal/domain"
	"stage-cue/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Public        *PublicHandler
	Authenticated *AuthenticatedHandler
	Programme     *ProgrammeHandler
	Auth          *middleware.AuthMiddleware
	Events        domain.EventService

	// Countdown upgrades /ws/countdown connections
	Countdown http.HandlerFunc
}

// NewRouter builds the HTTP surface
func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/", h.Auth.OptionalAuth(h.Public.HandleHome)).Methods(http.MethodGet)
	r.HandleFunc("/countdown", h.Public.HandleCountdown).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Public.HandleLogin).Methods(http.MethodGet)
	r.HandleFunc("/auth/google/callback", h.Public.HandleAuthCallback).Methods(http.MethodGet)
	r.HandleFunc("/logout", h.Public.HandleLogout).Methods(http.MethodGet, http.MethodPost)
	if h.Countdown != nil {
		r.HandleFunc("/ws/countdown", h.Countdown).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// signed in, no further gate
	signedIn := func(next http.HandlerFunc) http.HandlerFunc {
		return h.Auth.RequireAPIAuth(next)
	}
	// signed in and permitted
	gated := func(action auth.Action, next http.HandlerFunc) http.HandlerFunc {
		return h.Auth.RequireAPIAuth(middleware.RequirePermission(action, next))
	}

	a := h.Authenticated
	p := h.Programme
	ev := h.Events

	api.HandleFunc("/me", signedIn(a.HandleMe)).Methods(http.MethodGet)
	api.HandleFunc("/event", signedIn(a.HandleEvent)).Methods(http.MethodGet)
	api.HandleFunc("/progress", signedIn(a.HandleProgress)).Methods(http.MethodGet)
	api.HandleFunc("/event", gated(auth.ActionReset, a.HandleResetEvent)).Methods(http.MethodDelete)
	api.HandleFunc("/event/title", gated(auth.ActionEdit, p.HandleSetTitle)).Methods(http.MethodPut)

	// single-cue controls
	api.HandleFunc("/cues/{id:[0-9]+}/start", gated(auth.ActionEdit, a.HandleCueAction("start_cue", ev.StartCue))).Methods(http.MethodPost)
	api.HandleFunc("/cues/{id:[0-9]+}/pause", gated(auth.ActionEdit, a.HandleCueAction("pause_cue", ev.PauseCue))).Methods(http.MethodPost)
	api.HandleFunc("/cues/{id:[0-9]+}/stop", gated(auth.ActionEdit, a.HandleCueAction("stop_cue", ev.StopCue))).Methods(http.MethodPost)
	api.HandleFunc("/cues/{id:[0-9]+}/advance", gated(auth.ActionEdit, a.HandleCueAction("advance_cue", ev.AdvanceCue))).Methods(http.MethodPost)
	api.HandleFunc("/cues/{id:[0-9]+}/reset", gated(auth.ActionReset, a.HandleCueAction("reset_cue", ev.ResetCue))).Methods(http.MethodPost)

	// bulk controls
	api.HandleFunc("/event/play", gated(auth.ActionEdit, a.HandleBulkAction("play_all", ev.PlayAll))).Methods(http.MethodPost)
	api.HandleFunc("/event/pause", gated(auth.ActionEdit, a.HandleBulkAction("pause_all", ev.PauseAll))).Methods(http.MethodPost)
	api.HandleFunc("/event/stop", gated(auth.ActionEdit, a.HandleBulkAction("stop_all", ev.StopAll))).Methods(http.MethodPost)
	api.HandleFunc("/event/next", gated(auth.ActionEdit, a.HandleBulkAction("next_all", ev.NextAll))).Methods(http.MethodPost)
	api.HandleFunc("/event/reset", gated(auth.ActionReset, a.HandleBulkAction("reset_all", ev.ResetAll))).Methods(http.MethodPost)

	// running order
	api.HandleFunc("/cues", gated(auth.ActionEdit, p.HandleSaveCues)).Methods(http.MethodPut)
	api.HandleFunc("/import", gated(auth.ActionUpload, p.HandleImport)).Methods(http.MethodPost)
	api.HandleFunc("/analytics", signedIn(p.HandleAnalytics)).Methods(http.MethodGet)
	api.HandleFunc("/export", signedIn(p.HandleExport)).Methods(http.MethodGet)

	// message feed
	api.HandleFunc("/messages", signedIn(a.HandleListMessages)).Methods(http.MethodGet)
	api.HandleFunc("/messages", gated(auth.ActionAddMessage, a.HandlePostMessage)).Methods(http.MethodPost)
	api.HandleFunc("/messages", gated(auth.ActionAddMessage, a.HandleClearMessages)).Methods(http.MethodDelete)
	api.HandleFunc("/messages/{id}", gated(auth.ActionAddMessage, a.HandleDeleteMessage)).Methods(http.MethodDelete)

	// devices
	api.HandleFunc("/devices", gated(auth.ActionViewDevices, a.HandleListDevices)).Methods(http.MethodGet)
	api.HandleFunc("/devices", signedIn(a.HandleConnectDevice)).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}/heartbeat", signedIn(a.HandleHeartbeat)).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", signedIn(a.HandleDisconnectDevice)).Methods(http.MethodDelete)

	// chat
	api.HandleFunc("/chat", signedIn(a.HandleSendChat)).Methods(http.MethodPost)
	api.HandleFunc("/chat/{userId}", signedIn(a.HandleConversation)).Methods(http.MethodGet)

	// admin
	api.HandleFunc("/admin/users", gated(auth.ActionAdminPanel, a.HandleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{id}/role", gated(auth.ActionAdminPanel, a.HandleToggleRole)).Methods(http.MethodPost)

	return r
}
