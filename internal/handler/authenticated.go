package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"stage-cue/internal/auth"
	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
	"stage-cue/internal/middleware"
)

// AuthenticatedHandler serves the signed-in operator API: timer control,
// the message feed, devices, chat and user administration.
type AuthenticatedHandler struct {
	events   domain.EventService
	messages domain.MessageService
	devices  domain.DeviceService
	chat     domain.ChatService
	users    domain.UserService
	log      *logger.Logger
}

// NewAuthenticatedHandler creates a new AuthenticatedHandler
func NewAuthenticatedHandler(
	events domain.EventService,
	messages domain.MessageService,
	devices domain.DeviceService,
	chat domain.ChatService,
	users domain.UserService,
	log *logger.Logger,
) *AuthenticatedHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &AuthenticatedHandler{
		events:   events,
		messages: messages,
		devices:  devices,
		chat:     chat,
		users:    users,
		log:      log.WithField("component", "api_handler"),
	}
}

// EventResponse is returned by every timer action
type EventResponse struct {
	Event    *domain.Event       `json:"event"`
	Progress domain.ProgressView `json:"progress"`
}

func (h *AuthenticatedHandler) state() EventResponse {
	return EventResponse{Event: h.events.Snapshot(), Progress: h.events.Progress()}
}

// MeResponse describes the signed-in user and what their role allows
type MeResponse struct {
	User        *domain.User    `json:"user"`
	Permissions map[string]bool `json:"permissions"`
}

// HandleMe returns the current user and their permissions
// GET /api/me
func (h *AuthenticatedHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	perms := make(map[string]bool, len(auth.Actions))
	for _, action := range auth.Actions {
		perms[string(action)] = auth.HasPermission(user.Role, action)
	}
	writeJSON(w, http.StatusOK, MeResponse{User: user, Permissions: perms})
}

// HandleEvent returns the live event and its progress
// GET /api/event
func (h *AuthenticatedHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

// HandleProgress returns the aggregate progress figures
// GET /api/progress
func (h *AuthenticatedHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.Progress())
}

// HandleCueAction runs a single-cue operation on the cue named in the path
// POST /api/cues/{id}/start|pause|stop|reset|advance
func (h *AuthenticatedHandler) HandleCueAction(op string, fn func(ctx context.Context, cueID int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cueID, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Cue ID must be a number")
			return
		}
		if err := fn(r.Context(), cueID); err != nil {
			respondError(w, h.log, op, err)
			return
		}
		writeJSON(w, http.StatusOK, h.state())
	}
}

// HandleBulkAction runs an operation over the whole cue list
// POST /api/event/play|pause|stop|next|reset
func (h *AuthenticatedHandler) HandleBulkAction(op string, fn func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			respondError(w, h.log, op, err)
			return
		}
		writeJSON(w, http.StatusOK, h.state())
	}
}

// HandleResetEvent clears the cue list and the message feed
// DELETE /api/event
func (h *AuthenticatedHandler) HandleResetEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.ResetEvent(r.Context()); err != nil {
		respondError(w, h.log, "reset_event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMessages returns the feed, newest first
// GET /api/messages
func (h *AuthenticatedHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context())
	if err != nil {
		respondError(w, h.log, "list_messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandlePostMessage adds an announcement to the feed
// POST /api/messages
func (h *AuthenticatedHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string             `json:"text"`
		Type domain.MessageType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, "post_message", err)
		return
	}

	msg, err := h.messages.Post(r.Context(), req.Text, req.Type)
	if err != nil {
		respondError(w, h.log, "post_message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// HandleDeleteMessage removes one announcement
// DELETE /api/messages/{id}
func (h *AuthenticatedHandler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, h.log, "delete_message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearMessages empties the feed
// DELETE /api/messages
func (h *AuthenticatedHandler) HandleClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Clear(r.Context()); err != nil {
		respondError(w, h.log, "clear_messages", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListDevices returns connected devices, most recently seen first
// GET /api/devices
func (h *AuthenticatedHandler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		respondError(w, h.log, "list_devices", err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// HandleConnectDevice registers a device for the signed-in user
// POST /api/devices
func (h *AuthenticatedHandler) HandleConnectDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string            `json:"name"`
		Type domain.DeviceType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, "connect_device", err)
		return
	}

	device, err := h.devices.Connect(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Type)
	if err != nil {
		respondError(w, h.log, "connect_device", err)
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// HandleHeartbeat refreshes a device's last-seen time
// POST /api/devices/{id}/heartbeat
func (h *AuthenticatedHandler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	device, err := h.devices.Heartbeat(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.log, "heartbeat", err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// HandleDisconnectDevice removes one of the caller's devices
// DELETE /api/devices/{id}
func (h *AuthenticatedHandler) HandleDisconnectDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.devices.Disconnect(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		respondError(w, h.log, "disconnect_device", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSendChat sends a direct message from the signed-in user
// POST /api/chat
func (h *AuthenticatedHandler) HandleSendChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.log, "send_chat", err)
		return
	}

	msg, err := h.chat.Send(r.Context(), middleware.GetUserID(r.Context()), req.ReceiverID, req.Content)
	if err != nil {
		respondError(w, h.log, "send_chat", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// HandleConversation returns the chat history with another user, oldest first
// GET /api/chat/{userId}
func (h *AuthenticatedHandler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.Conversation(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["userId"])
	if err != nil {
		respondError(w, h.log, "conversation", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleListUsers lists every account for the admin panel
// GET /api/admin/users
func (h *AuthenticatedHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondError(w, h.log, "list_users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleToggleRole cycles a user's role
// POST /api/admin/users/{id}/role
func (h *AuthenticatedHandler) HandleToggleRole(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.ToggleRole(r.Context(), middleware.GetUser(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.log, "toggle_role", err)
		return
	}
	h.log.Info("role changed", map[string]interface{}{
		"actor":  middleware.GetUserID(r.Context()),
		"target": user.ID,
		"role":   string(user.Role),
	})
	writeJSON(w, http.StatusOK, user)
}
