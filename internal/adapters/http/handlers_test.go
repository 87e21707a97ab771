package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Banter/internal/adapters/chat"
	"github.com/dkeye/Banter/internal/app"
	"github.com/dkeye/Banter/internal/config"
	"github.com/dkeye/Banter/internal/core"
	"github.com/dkeye/Banter/internal/domain"
	"github.com/dkeye/Banter/internal/store"
)

type userRec struct {
	user domain.User
	hash string
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID domain.UserID
	byName map[string]*userRec
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: make(map[string]*userRec)}
}

func (f *fakeUsers) CreateUser(_ context.Context, username, passwordHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[username]; ok {
		return nil, store.ErrDuplicateName
	}
	f.nextID++
	rec := &userRec{user: domain.User{ID: f.nextID, Username: username}, hash: passwordHash}
	f.byName[username] = rec
	u := rec.user
	return &u, nil
}

func (f *fakeUsers) UserByUsername(_ context.Context, username string) (*domain.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byName[username]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	u := rec.user
	return &u, rec.hash, nil
}

func (f *fakeUsers) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byName {
		if rec.user.ID == id {
			u := rec.user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeRoomStore struct {
	mu     sync.Mutex
	nextID domain.RoomID
	byName map[string]*domain.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{byName: make(map[string]*domain.Room)}
}

func (f *fakeRoomStore) ListRooms(context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Room, 0, len(f.byName))
	for _, r := range f.byName {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoomStore) CreateRoom(_ context.Context, name string, ownerID domain.UserID) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[name]; ok {
		return nil, store.ErrDuplicateName
	}
	f.nextID++
	r := &domain.Room{ID: f.nextID, Name: name, OwnerID: ownerID}
	f.byName[name] = r
	out := *r
	return &out, nil
}

type testEnv struct {
	engine *gin.Engine
	users  *fakeUsers
	rooms  *fakeRoomStore
	events *app.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newFakeUsers()
	rooms := newFakeRoomStore()
	events := &app.Router{Registry: app.NewRegistry(), Members: core.NewMembership()}
	cfg := &config.Config{
		Mode:       "release",
		StaticPath: t.TempDir(),
		Secret:     "test-secret",
		BcryptCost: 4, // keep the hash cheap in tests
	}
	engine := SetupRouter(context.Background(), cfg, Deps{
		Users:  users,
		Rooms:  rooms,
		Events: events,
		Chat:   &chat.Controller{Events: events, Registry: events.Registry},
	})
	return &testEnv{engine: engine, users: users, rooms: rooms, events: events}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return out
}

// login registers and logs in one account, returning its session cookies.
func (e *testEnv) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	creds := `{"username":"` + username + `","password":"` + password + `"}`
	if rec := e.do(t, "POST", "/api/register", creds, nil); rec.Code != http.StatusOK {
		t.Fatalf("register: status %d (%s)", rec.Code, rec.Body.String())
	}
	rec := e.do(t, "POST", "/api/login", creds, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d (%s)", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, "POST", "/api/register", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: status %d, want 400", rec.Code)
	}
	if rec := env.do(t, "POST", "/api/register", `{"username":"a","password":"x"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("short password: status %d, want 400", rec.Code)
	}
	long := strings.Repeat("a", domain.MaxUsernameLen+1)
	if rec := env.do(t, "POST", "/api/register", `{"username":"`+long+`","password":"secret"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("long username: status %d, want 400", rec.Code)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	body := `{"username":"alice","password":"secret"}`

	if rec := env.do(t, "POST", "/api/register", body, nil); rec.Code != http.StatusOK {
		t.Fatalf("first register: status %d", rec.Code)
	}
	if rec := env.do(t, "POST", "/api/register", body, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status %d, want 400", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "POST", "/api/register", `{"username":"alice","password":"secret"}`, nil)

	rec := env.do(t, "POST", "/api/login", `{"username":"alice","password":"nope"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", rec.Code)
	}
	rec = env.do(t, "POST", "/api/login", `{"username":"ghost","password":"nope"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status %d, want 401", rec.Code)
	}
}

func TestSessionRoundtrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/me", "", nil)
	if body := decodeBody(t, rec); body["user"] != nil {
		t.Errorf("me without session = %v, want null user", body["user"])
	}

	cookies := env.login(t, "alice", "secret")
	rec = env.do(t, "GET", "/api/me", "", cookies)
	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("me with session = %v, want alice", body["user"])
	}

	rec = env.do(t, "POST", "/api/logout", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	// The cleared cookie from the logout response replaces the session.
	rec = env.do(t, "GET", "/api/me", "", rec.Result().Cookies())
	if body := decodeBody(t, rec); body["user"] != nil {
		t.Errorf("me after logout = %v, want null user", body["user"])
	}
}

func TestCreateRoomRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/rooms", `{"name":"general"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: status %d, want 401", rec.Code)
	}
}

func TestCreateRoomAndList(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t, "alice", "secret")

	rec := env.do(t, "POST", "/api/rooms", `{"name":"  general  "}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("create room: status %d (%s)", rec.Code, rec.Body.String())
	}
	room := decodeBody(t, rec)["room"].(map[string]any)
	if room["name"] != "general" {
		t.Errorf("room name = %v, want trimmed %q", room["name"], "general")
	}

	if rec := env.do(t, "POST", "/api/rooms", `{"name":"general"}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate room: status %d, want 400", rec.Code)
	}
	if rec := env.do(t, "POST", "/api/rooms", `{"name":"   "}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("blank room name: status %d, want 400", rec.Code)
	}

	rec = env.do(t, "GET", "/api/rooms", "", nil)
	rooms := decodeBody(t, rec)["rooms"].([]any)
	if len(rooms) != 1 {
		t.Fatalf("list returned %d rooms, want 1", len(rooms))
	}
}

func TestCreateRoomBroadcastsToLiveConnections(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t, "alice", "secret")

	conn := &recordingConn{}
	env.events.Registry.Add(nil, conn)

	if rec := env.do(t, "POST", "/api/rooms", `{"name":"general"}`, cookies); rec.Code != http.StatusOK {
		t.Fatalf("create room: status %d", rec.Code)
	}

	frames := conn.take()
	if len(frames) != 1 {
		t.Fatalf("live connection saw %d frames, want 1", len(frames))
	}
	var ev map[string]any
	if err := json.Unmarshal(frames[0], &ev); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if ev["type"] != core.EventRoomCreated || ev["name"] != "general" {
		t.Errorf("broadcast = %v, want room_created general", ev)
	}
}

type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (r *recordingConn) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingConn) Close() {}

func (r *recordingConn) take() []core.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
