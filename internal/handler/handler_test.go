package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2"

	"stage-cue/internal/auth"
	"stage-cue/internal/broadcast"
	"stage-cue/internal/domain"
	"stage-cue/internal/middleware"
	"stage-cue/internal/repository/sqlite"
	"stage-cue/internal/service"
)

const cueSheetCSV = `Time,Duration,Cue,Presenter
7:00 PM,5:00,Welcome,Leslie
7:05 PM,3:00,Parks Report,Ron
7:08 PM,2:00,Closing,Ann
`

// fakeIdentity stands in for Google
type fakeIdentity struct {
	info *auth.GoogleUserInfo
}

func (f *fakeIdentity) GetAuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeIdentity) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code != "good-code" {
		return nil, errors.New("bad code")
	}
	return &oauth2.Token{AccessToken: "access"}, nil
}

func (f *fakeIdentity) GetUserInfo(ctx context.Context, token *oauth2.Token) (*auth.GoogleUserInfo, error) {
	return f.info, nil
}

type testEnv struct {
	router   *mux.Router
	ctrl     *service.EventController
	users    domain.UserService
	sessions *auth.SessionManager
	states   *auth.StateStore
	display  *broadcast.Mirror
	admin    *domain.User
	director *domain.User
}

// setupTestEnv wires the full HTTP stack over a temporary database
func setupTestEnv(t *testing.T, identity IdentityProvider) *testEnv {
	t.Helper()

	db, err := sqlite.NewDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := sqlite.Migrate(db.DB); err != nil {
		db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctrl := service.NewEventController(service.EventControllerConfig{
		Events:   sqlite.NewEventRepository(db),
		Messages: sqlite.NewMessageRepository(db),
	})
	t.Cleanup(func() {
		ctrl.Close()
		db.Close()
	})

	users := service.NewUserService(sqlite.NewUserRepository(db), []string{"leslie@pawnee.gov"})
	messages := service.NewMessageService(sqlite.NewMessageRepository(db), ctrl.ReplaceMessages, nil)
	sessions := auth.NewSessionManager("session", "test-secret", false, 3600)
	states := auth.NewStateStore()
	display := broadcast.NewMirror(nil)

	ctx := context.Background()
	admin, err := users.GetOrCreateUser(ctx, "g-leslie", "leslie@pawnee.gov")
	if err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	director, err := users.GetOrCreateUser(ctx, "g-ron", "ron@pawnee.gov")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	router := NewRouter(Handlers{
		Public:        NewPublicHandler(ctrl, users, identity, sessions, states, display, nil),
		Authenticated: NewAuthenticatedHandler(ctrl, messages, service.NewDeviceService(sqlite.NewDeviceRepository(db)), service.NewChatService(sqlite.NewChatRepository(db)), users, nil),
		Programme:     NewProgrammeHandler(ctrl, nil),
		Auth:          middleware.NewAuthMiddleware(sessions, users),
		Events:        ctrl,
	})

	return &testEnv{
		router:   router,
		ctrl:     ctrl,
		users:    users,
		sessions: sessions,
		states:   states,
		display:  display,
		admin:    admin,
		director: director,
	}
}

// do sends a request as user (nil for anonymous)
func (e *testEnv) do(t *testing.T, user *domain.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	e.sign(t, req, user)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) sign(t *testing.T, req *http.Request, user *domain.User) {
	t.Helper()
	if user == nil {
		return
	}
	rec := httptest.NewRecorder()
	if err := e.sessions.SetSession(rec, user.ID); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

// upload posts a cue sheet as multipart form data
func (e *testEnv) upload(t *testing.T, user *domain.User, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	e.sign(t, req, user)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) EventResponse {
	t.Helper()
	var resp EventResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	return resp["error"]
}

func TestAPI_RequiresSession(t *testing.T) {
	env := setupTestEnv(t, nil)

	for _, path := range []string{"/api/event", "/api/progress", "/api/messages", "/api/export"} {
		w := env.do(t, nil, http.MethodGet, path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, w.Code)
		}
	}
	if w := env.do(t, nil, http.MethodPost, "/api/cues/1/start", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("POST start status = %d, want 401", w.Code)
	}
}

func TestImportThenRunCue(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.upload(t, env.director, "running-order.csv", cueSheetCSV)
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}
	state := decodeState(t, w)
	if state.Event == nil || len(state.Event.Cues) != 3 {
		t.Fatalf("imported event = %+v", state.Event)
	}
	if state.Event.Cues[0].StartTime != "19:00" || state.Event.Cues[0].RemainingTime != 300 {
		t.Errorf("first cue = %+v", state.Event.Cues[0])
	}
	if state.Progress.PlannedTotal != 600 {
		t.Errorf("planned total = %d, want 600", state.Progress.PlannedTotal)
	}

	w = env.do(t, env.director, http.MethodPost, "/api/cues/1/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", w.Code, w.Body.String())
	}
	if state := decodeState(t, w); !state.Event.Cues[0].IsRunning {
		t.Error("cue 1 should be running")
	}

	w = env.do(t, env.director, http.MethodPost, "/api/cues/1/advance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("advance status = %d", w.Code)
	}
	state = decodeState(t, w)
	if state.Event.Cues[0].IsRunning || !state.Event.Cues[1].IsRunning || state.Event.ActiveCueIndex != 1 {
		t.Errorf("after advance: active=%d cues=%+v", state.Event.ActiveCueIndex, state.Event.Cues[:2])
	}

	w = env.do(t, env.director, http.MethodPost, "/api/event/pause", nil)
	if state := decodeState(t, w); state.Event.Cues[1].IsRunning {
		t.Error("pause all left cue 2 running")
	}
}

func TestCueAction_UnknownAndMalformedIDs(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upload(t, env.admin, "sheet.csv", cueSheetCSV)

	// a cue that no longer exists is ignored
	if w := env.do(t, env.admin, http.MethodPost, "/api/cues/99/start", nil); w.Code != http.StatusOK {
		t.Errorf("unknown cue status = %d, want 200", w.Code)
	}
	if w := env.do(t, env.admin, http.MethodPost, "/api/cues/abc/start", nil); w.Code != http.StatusNotFound {
		t.Errorf("malformed cue id status = %d, want 404", w.Code)
	}
}

func TestImport_RejectedSheetLeavesEvent(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upload(t, env.admin, "sheet.csv", cueSheetCSV)

	w := env.upload(t, env.admin, "bad.csv", "Name,Length\nWelcome,5:00\n")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if msg := decodeError(t, w); !strings.Contains(msg, "Required columns") {
		t.Errorf("error = %q", msg)
	}

	if event := env.ctrl.Snapshot(); event == nil || len(event.Cues) != 3 {
		t.Errorf("rejected import changed the event: %+v", event)
	}
}

func TestImport_MissingFile(t *testing.T) {
	env := setupTestEnv(t, nil)
	w := env.do(t, env.admin, http.MethodPost, "/api/import", "not multipart")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSaveCuesAndTitle(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, env.admin, http.MethodPut, "/api/event/title", map[string]string{"title": "  Harvest Festival "})
	if w.Code != http.StatusOK {
		t.Fatalf("set title status = %d: %s", w.Code, w.Body.String())
	}
	if state := decodeState(t, w); state.Event == nil || state.Event.Title != "Harvest Festival" {
		t.Errorf("title = %+v", state.Event)
	}

	if w := env.do(t, env.admin, http.MethodPut, "/api/event/title", map[string]string{"title": " "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank title status = %d, want 400", w.Code)
	}

	cues := []domain.Cue{
		{StartTime: "09:00", Duration: "5:30", Title: "Doors"},
		{Duration: "3:5", Title: "Opening"},
	}
	w = env.do(t, env.admin, http.MethodPut, "/api/cues", map[string]interface{}{"cues": cues})
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body.String())
	}
	state := decodeState(t, w)
	if len(state.Event.Cues) != 2 || state.Event.Cues[1].StartTime != "09:05" {
		t.Errorf("saved cues = %+v", state.Event.Cues)
	}

	if w := env.do(t, env.admin, http.MethodPut, "/api/cues", "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", w.Code)
	}
}

func TestResetEvent(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upload(t, env.admin, "sheet.csv", cueSheetCSV)

	if w := env.do(t, env.admin, http.MethodDelete, "/api/event", nil); w.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", w.Code)
	}
	w := env.do(t, env.admin, http.MethodGet, "/api/event", nil)
	if state := decodeState(t, w); state.Event != nil {
		t.Errorf("event after reset = %+v", state.Event)
	}
}

func TestMessages(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, env.director, http.MethodPost, "/api/messages", map[string]string{"text": "Wrap up", "type": "alert"})
	if w.Code != http.StatusCreated {
		t.Fatalf("post status = %d: %s", w.Code, w.Body.String())
	}
	var msg domain.Message
	json.NewDecoder(w.Body).Decode(&msg)
	if msg.ID == "" || msg.Type != domain.MessageAlert {
		t.Errorf("posted message = %+v", msg)
	}

	if w := env.do(t, env.director, http.MethodPost, "/api/messages", map[string]string{"text": "x", "type": "shout"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", w.Code)
	}

	// the countdown payload carries the feed
	if payload := env.ctrl.Payload(); len(payload.Messages) != 1 || payload.Messages[0].Text != "Wrap up" {
		t.Errorf("payload messages = %+v", payload.Messages)
	}

	if w := env.do(t, env.director, http.MethodDelete, "/api/messages/"+msg.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := env.do(t, env.director, http.MethodDelete, "/api/messages/"+msg.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestDevicesHeartbeatRegistersUnknown(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, env.director, http.MethodPost, "/api/devices/phone-7/heartbeat", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d: %s", w.Code, w.Body.String())
	}
	var device domain.ConnectedDevice
	json.NewDecoder(w.Body).Decode(&device)
	if device.Name != "Device-phone-7" || device.Type != domain.DeviceSmartphone {
		t.Errorf("device = %+v", device)
	}

	w = env.do(t, env.director, http.MethodGet, "/api/devices", nil)
	var devices []domain.ConnectedDevice
	json.NewDecoder(w.Body).Decode(&devices)
	if len(devices) != 1 {
		t.Errorf("devices = %+v", devices)
	}
}

func TestDevicesOwnerOnly(t *testing.T) {
	env := setupTestEnv(t, nil)

	if w := env.do(t, env.director, http.MethodPost, "/api/devices/phone-7/heartbeat", nil); w.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d: %s", w.Code, w.Body.String())
	}

	if w := env.do(t, env.admin, http.MethodPost, "/api/devices/phone-7/heartbeat", nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign heartbeat status = %d, want 403", w.Code)
	}
	if w := env.do(t, env.admin, http.MethodDelete, "/api/devices/phone-7", nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403", w.Code)
	}
	if w := env.do(t, env.director, http.MethodDelete, "/api/devices/phone-7", nil); w.Code != http.StatusNoContent {
		t.Errorf("owner delete status = %d, want 204", w.Code)
	}
	if w := env.do(t, env.director, http.MethodDelete, "/api/devices/phone-7", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestChat(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, env.admin, http.MethodPost, "/api/chat", map[string]string{"receiverId": env.director.ID, "content": "Five minutes"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send status = %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, env.director, http.MethodGet, "/api/chat/"+env.admin.ID, nil)
	var msgs []domain.ChatMessage
	json.NewDecoder(w.Body).Decode(&msgs)
	if len(msgs) != 1 || msgs[0].SenderID != env.admin.ID {
		t.Errorf("conversation = %+v", msgs)
	}
}

func TestAdminPanel(t *testing.T) {
	env := setupTestEnv(t, nil)

	if w := env.do(t, env.director, http.MethodGet, "/api/admin/users", nil); w.Code != http.StatusForbidden {
		t.Errorf("non-admin list status = %d, want 403", w.Code)
	}

	w := env.do(t, env.admin, http.MethodGet, "/api/admin/users", nil)
	var users []domain.User
	json.NewDecoder(w.Body).Decode(&users)
	if len(users) != 2 {
		t.Errorf("users = %+v", users)
	}

	w = env.do(t, env.admin, http.MethodPost, "/api/admin/users/"+env.director.ID+"/role", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", w.Code, w.Body.String())
	}
	var toggled domain.User
	json.NewDecoder(w.Body).Decode(&toggled)
	if toggled.Role != domain.RoleProgramDirector {
		t.Errorf("toggled role = %s, want program_director", toggled.Role)
	}
}

func TestMe(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, env.director, http.MethodGet, "/api/me", nil)
	var me MeResponse
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.User.ID != env.director.ID || me.Permissions["adminPanel"] || !me.Permissions["upload"] {
		t.Errorf("me = %+v", me)
	}
}

func TestExportWorkbook(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.upload(t, env.admin, "sheet.csv", cueSheetCSV)

	w := env.do(t, env.admin, http.MethodGet, "/api/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, analyticsFilename) {
		t.Errorf("Content-Disposition = %s", cd)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Cue Analytics")
	if err != nil {
		t.Fatalf("missing Cue Analytics sheet: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("analytics rows = %d, want header + 3", len(rows))
	}
}

func TestCountdownPage(t *testing.T) {
	env := setupTestEnv(t, nil)

	w := env.do(t, nil, http.MethodGet, "/countdown", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "UPDATE_COUNTDOWN") {
		t.Error("countdown page does not filter on the update type")
	}
	for _, pattern := range []string{`var flashMs =\s*1000\s*;`, `var highlightMs =\s*5000\s*;`, `var current =\s*null\s*;`} {
		if !regexp.MustCompile(pattern).MatchString(body) {
			t.Errorf("countdown page does not match %s", pattern)
		}
	}
}

func TestCountdownPage_FirstPaintFromMirror(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.display.Apply(&broadcast.Payload{Title: "Parks Report", Messages: []domain.Message{{ID: "m1", Text: "Mic check"}}})
	env.display.Apply(&broadcast.Payload{Title: "Parks Report", Messages: []domain.Message{
		{ID: "m2", Text: "Wrap up", Type: domain.MessageAlert},
		{ID: "m1", Text: "Mic check"},
	}})

	w := env.do(t, nil, http.MethodGet, "/countdown", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, pattern := range []string{
		`var current =\s*\{[^;]*"title":"Parks Report"`,
		`"id":"m2","text":"Wrap up"`,
		`var newestId =\s*"m2"\s*\|\| null;`,
		`var highlightLeftMs =\s*[1-9][0-9]*\s*;`,
	} {
		if !regexp.MustCompile(pattern).MatchString(body) {
			t.Errorf("countdown page does not match %s", pattern)
		}
	}
}

func TestHome(t *testing.T) {
	env := setupTestEnv(t, &fakeIdentity{})
	env.upload(t, env.admin, "sheet.csv", cueSheetCSV)

	w := env.do(t, nil, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Parks Report") || !strings.Contains(w.Body.String(), "Login with Google") {
		t.Errorf("anonymous home page: %s", w.Body.String())
	}

	w = env.do(t, env.admin, http.MethodGet, "/", nil)
	if !strings.Contains(w.Body.String(), "leslie@pawnee.gov") {
		t.Error("signed-in home page does not name the user")
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	env := setupTestEnv(t, nil)
	for _, path := range []string{"/login", "/auth/google/callback?state=x&code=y"} {
		if w := env.do(t, nil, http.MethodGet, path, nil); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", path, w.Code)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	identity := &fakeIdentity{info: &auth.GoogleUserInfo{ID: "g-april", Email: "april@pawnee.gov"}}
	env := setupTestEnv(t, identity)

	w := env.do(t, nil, http.MethodGet, "/login", nil)
	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("login status = %d", w.Code)
	}
	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	state := location.Query().Get("state")
	if state == "" {
		t.Fatal("redirect carries no state")
	}

	w = env.do(t, nil, http.MethodGet, "/auth/google/callback?state="+url.QueryEscape(state)+"&code=good-code", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("callback status = %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("callback set no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	var me MeResponse
	json.NewDecoder(rec.Body).Decode(&me)
	if me.User == nil || me.User.Email != "april@pawnee.gov" || me.User.Role != domain.RoleUser {
		t.Errorf("signed-in user = %+v", me.User)
	}

	// the state was consumed
	w = env.do(t, nil, http.MethodGet, "/auth/google/callback?state="+url.QueryEscape(state)+"&code=good-code", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("replayed state status = %d, want 400", w.Code)
	}
}

func TestLoginFlow_BadCode(t *testing.T) {
	env := setupTestEnv(t, &fakeIdentity{})
	env.states.Store("s-1")

	w := env.do(t, nil, http.MethodGet, "/auth/google/callback?state=s-1&code=bad", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("failed sign-in set a cookie")
	}
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t, nil)
	w := env.do(t, env.admin, http.MethodGet, "/logout", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout did not clear the cookie: %+v", cookies)
	}
}

func TestFriendlyErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{&domain.ImportValidationError{Missing: []string{"Time"}}, http.StatusBadRequest},
		{domain.ErrNotInitialized, http.StatusServiceUnavailable},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{domain.NewUserFriendlyError(nil, "teapot", http.StatusTeapot), http.StatusTeapot},
	}
	for _, tt := range tests {
		if got := friendly(tt.err).HTTPStatusCode; got != tt.status {
			t.Errorf("friendly(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
