package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nospi-app/nospi/internal/client/models"
)

var fakeSigningKey = []byte("test-signing-key")

const fakeAPIKey = "anon-key"

type fakeAccount struct {
	user     models.User
	password string
}

// fakeBackend mimics the auth and REST endpoints closely enough for the
// client: accounts keyed by phone or email, refresh tokens and a notes
// table filtered by the caller's token subject.
type fakeBackend struct {
	t *testing.T

	mu       sync.Mutex
	accounts map[string]*fakeAccount
	refresh  map[string]string
	notes    []models.Note
	ttl      time.Duration

	confirmSignUp bool
	refreshStatus int
	logoutStatus  int
	healthStatus  int

	refreshCalls int
	logoutCalls  int

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	f := &fakeBackend{
		t:             t,
		accounts:      make(map[string]*fakeAccount),
		refresh:       make(map[string]string),
		ttl:           time.Hour,
		confirmSignUp: true,
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/v1/token", f.handleToken).Methods(http.MethodPost)
	r.HandleFunc("/auth/v1/signup", f.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/v1/logout", f.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/auth/v1/user", f.handleUpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/auth/v1/health", f.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rest/v1/notes", f.handleSelectNotes).Methods(http.MethodGet)
	r.HandleFunc("/rest/v1/notes", f.handleInsertNote).Methods(http.MethodPost)
	r.HandleFunc("/rest/v1/notes", f.handleUpdateNote).Methods(http.MethodPatch)
	r.HandleFunc("/rest/v1/notes", f.handleDeleteNote).Methods(http.MethodDelete)
	r.Use(f.requireAPIKey)

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBackend) addAccount(identifier, password string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := models.User{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if strings.Contains(identifier, "@") {
		u.Email = identifier
	} else {
		u.Phone = identifier
	}
	f.accounts[identifier] = &fakeAccount{user: u, password: password}
	return u
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != fakeAPIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no api key"})
			return
		}
		if _, err := uuid.Parse(r.Header.Get(requestIDHeader)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing request id"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// issue must be called with f.mu held.
func (f *fakeBackend) issue(u models.User) tokenResponse {
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(f.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: u.Email,
		Phone: u.Phone,
		Role:  "authenticated",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fakeSigningKey)
	if err != nil {
		f.t.Fatalf("sign token: %v", err)
	}

	rt := uuid.NewString()
	f.refresh[rt] = u.ID

	user := u
	return tokenResponse{
		AccessToken:  token,
		TokenType:    "bearer",
		ExpiresIn:    int64(f.ttl / time.Second),
		RefreshToken: rt,
		User:         &user,
	}
}

func (f *fakeBackend) accountByID(id string) *fakeAccount {
	for _, a := range f.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

// subject returns the caller's user id, or "" for the anonymous key.
func (f *fakeBackend) subject(r *http.Request) (string, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == fakeAPIKey {
		return "", true
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return fakeSigningKey, nil })
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func (f *fakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		id := body["phone"]
		if id == "" {
			id = body["email"]
		}
		a, ok := f.accounts[id]
		if !ok || a.password != body["password"] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"})
			return
		}
		writeJSON(w, http.StatusOK, f.issue(a.user))

	case "refresh_token":
		f.refreshCalls++
		if f.refreshStatus != 0 {
			writeJSON(w, f.refreshStatus, map[string]string{"msg": "refresh failed"})
			return
		}
		uid, ok := f.refresh[body["refresh_token"]]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid Refresh Token"})
			return
		}
		delete(f.refresh, body["refresh_token"])
		writeJSON(w, http.StatusOK, f.issue(f.accountByID(uid).user))

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "unsupported grant_type"})
	}
}

func (f *fakeBackend) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone    string         `json:"phone"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Data     models.Profile `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": err.Error()})
		return
	}

	id := body.Phone
	if id == "" {
		id = body.Email
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.accounts[id]; exists {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "User already registered"})
		return
	}

	u := models.User{ID: uuid.NewString(), Phone: body.Phone, Email: body.Email, Profile: body.Data}
	f.accounts[id] = &fakeAccount{user: u, password: body.Password}

	if !f.confirmSignUp {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeJSON(w, http.StatusOK, f.issue(u))
}

func (f *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logoutCalls++
	if f.logoutStatus != 0 {
		writeJSON(w, f.logoutStatus, map[string]string{"msg": "logout failed"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	sub, ok := f.subject(r)
	if !ok || sub == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid JWT"})
		return
	}

	var body struct {
		Data models.Profile `json:"data"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	a := f.accountByID(sub)
	a.user.Profile = body.Data
	writeJSON(w, http.StatusOK, a.user)
}

func (f *fakeBackend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	status := f.healthStatus
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]string{"name": "fake"})
}

func (f *fakeBackend) handleSelectNotes(w http.ResponseWriter, r *http.Request) {
	sub, ok := f.subject(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "JWT expired"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Note{}
	for i := len(f.notes) - 1; i >= 0; i-- {
		if f.notes[i].UserID == sub {
			out = append(out, f.notes[i])
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) handleInsertNote(w http.ResponseWriter, r *http.Request) {
	sub, ok := f.subject(r)
	var in models.NewNote
	_ = json.NewDecoder(r.Body).Decode(&in)
	if !ok || sub == "" || in.UserID != sub {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "new row violates row-level security policy"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	n := models.Note{ID: uuid.NewString(), Title: in.Title, Content: in.Content, UserID: in.UserID, CreatedAt: now, UpdatedAt: now}
	f.notes = append(f.notes, n)
	writeJSON(w, http.StatusCreated, []models.Note{n})
}

func (f *fakeBackend) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	sub, _ := f.subject(r)
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")

	var patch models.NotePatch
	_ = json.NewDecoder(r.Body).Decode(&patch)

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Note{}
	for i := range f.notes {
		if f.notes[i].ID != id || f.notes[i].UserID != sub {
			continue
		}
		if patch.Title != nil {
			f.notes[i].Title = *patch.Title
		}
		if patch.Content != nil {
			f.notes[i].Content = patch.Content
		}
		f.notes[i].UpdatedAt = time.Now().UTC()
		out = append(out, f.notes[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	sub, _ := f.subject(r)
	id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")

	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.notes[:0]
	for _, n := range f.notes {
		if n.ID == id && n.UserID == sub {
			continue
		}
		kept = append(kept, n)
	}
	f.notes = kept
	w.WriteHeader(http.StatusNoContent)
}

// memStore is an in-memory preferences.Repository.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memStore) ClearKeys(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		_ = m.Delete(ctx, k)
	}
	return nil
}

func (m *memStore) List(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}

func (f *fakeBackend) counts() (refreshCalls, logoutCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, f.logoutCalls
}
