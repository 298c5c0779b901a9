package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nospi-app/nospi/internal/client/models"
	"github.com/nospi-app/nospi/internal/client/repositories/preferences"
	"github.com/nospi-app/nospi/internal/common"
	"github.com/nospi-app/nospi/internal/logging"
)

const (
	maxErrorBody    = 64 << 10
	requestIDHeader = "X-Request-Id"
)

// HTTPClient talks to the hosted backend over its REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   preferences.Repository
	hub     *Hub
	logger  logging.Logger
	now     func() time.Time

	// emitMu orders session replacement, persistence and publication.
	emitMu    sync.Mutex
	refreshMu sync.Mutex

	mu      sync.Mutex
	session *models.Session
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

// NewHTTPClient builds a client for baseURL and restores any session
// persisted in store. store may be nil, in which case sessions live only in
// memory.
func NewHTTPClient(ctx context.Context, baseURL, apiKey string, store preferences.Repository, logger logging.Logger, opts ...Option) (*HTTPClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    http.DefaultClient,
		store:   store,
		hub:     NewHub(),
		logger:  logger.With("component", "backend"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}

	if err := c.restoreSession(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// signUpResponse is a token response when the account is confirmed on
// creation, or the bare user otherwise.
type signUpResponse struct {
	tokenResponse
	models.User
}

func (c *HTTPClient) restoreSession(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	raw, ok, err := c.store.Get(ctx, common.SessionPreferenceKey)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return nil
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.AccessToken == "" {
		c.logger.Warn(ctx, "discarding unreadable persisted session", "error", err)
		return c.store.Delete(ctx, common.SessionPreferenceKey)
	}

	c.session = &s
	return nil
}

func (c *HTTPClient) current() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *HTTPClient) CurrentUser() *models.User {
	return models.UserOf(c.current())
}

func (c *HTTPClient) Subscribe() (<-chan models.AuthEvent, func()) {
	return c.hub.Subscribe()
}

// GetSession returns the cached session, refreshing it first when the access
// token has expired. A refresh rejected by the backend signs the user out; a
// refresh that cannot reach the backend keeps the stale session.
func (c *HTTPClient) GetSession(ctx context.Context) (*models.Session, error) {
	s := c.current()
	if s == nil || !s.Expired(c.now()) {
		return s, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// another caller may have refreshed while we waited
	s = c.current()
	if s == nil || !s.Expired(c.now()) {
		return s, nil
	}

	if s.RefreshToken == "" {
		c.clearSession(ctx)
		return nil, nil
	}

	refreshed, err := c.refresh(ctx, s.RefreshToken)
	switch {
	case err == nil:
		c.setSession(ctx, refreshed, models.AuthEventTokenRefreshed)
		return refreshed, nil
	case errors.Is(err, ErrUnavailable):
		c.logger.Warn(ctx, "token refresh failed, keeping stale session", "error", err)
		return s, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		c.logger.Warn(ctx, "token refresh rejected, signing out", "error", err)
		c.clearSession(ctx)
		return nil, nil
	}
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	q := url.Values{"grant_type": {"refresh_token"}}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token", q, map[string]string{"refresh_token": refreshToken}, c.apiKey)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return nil, err
	}
	return c.sessionFromToken(tr)
}

func identifierBody(identifier string) map[string]any {
	if strings.Contains(identifier, "@") {
		return map[string]any{"email": identifier}
	}
	return map[string]any{"phone": identifier}
}

func (c *HTTPClient) SignIn(ctx context.Context, identifier string, password []byte) (*models.Session, error) {
	body := identifierBody(identifier)
	body["password"] = string(password)

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"password"}}, body, c.apiKey)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s, err := c.sessionFromToken(tr)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	c.setSession(ctx, s, models.AuthEventSignedIn)
	c.logger.Info(ctx, "signed in", "user", s.User.ID)
	return s, nil
}

// SignUp creates the account. When the backend confirms it immediately the
// new session is installed and returned; otherwise ErrConfirmationRequired.
func (c *HTTPClient) SignUp(ctx context.Context, r SignUpRequest) (*models.Session, error) {
	var body map[string]any
	if r.Email != "" {
		body = identifierBody(r.Email)
	} else {
		body = identifierBody(r.Phone)
	}
	body["password"] = r.Password
	body["data"] = r.Profile

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", nil, body, c.apiKey)
	if err != nil {
		return nil, err
	}

	var resp signUpResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	if resp.AccessToken == "" {
		c.logger.Info(ctx, "account created, awaiting confirmation", "user", resp.ID)
		return nil, ErrConfirmationRequired
	}

	s, err := c.sessionFromToken(resp.tokenResponse)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	c.setSession(ctx, s, models.AuthEventSignedIn)
	c.logger.Info(ctx, "signed up", "user", s.User.ID)
	return s, nil
}

// SignOut revokes the session on the backend and drops it locally. A token
// the backend already considers invalid still counts as signed out; any other
// failure is returned and the session is kept.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	if s := c.current(); s != nil {
		req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, s.AccessToken)
		if err != nil {
			return err
		}
		err = c.do(req, nil)
		if err != nil && !errors.Is(err, common.ErrUnauthorized) && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("sign out: %w", err)
		}
	}

	c.clearSession(ctx)
	c.logger.Info(ctx, "signed out")
	return nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, profile models.Profile) (*models.User, error) {
	s, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, common.ErrNotAuthenticated
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/auth/v1/user", nil, map[string]any{"data": profile}, s.AccessToken)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := c.do(req, &u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	updated := *s
	updated.User = &u
	c.setSession(ctx, &updated, models.AuthEventUserUpdated)
	return &u, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/health", nil, nil, c.apiKey)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *HTTPClient) bearer(ctx context.Context) (string, error) {
	s, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return c.apiKey, nil
	}
	return s.AccessToken, nil
}

func (c *HTTPClient) SelectNotes(ctx context.Context) ([]models.Note, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/notes", q, nil, token)
	if err != nil {
		return nil, err
	}

	notes := []models.Note{}
	if err := c.do(req, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *HTTPClient) InsertNote(ctx context.Context, note models.NewNote) (*models.Note, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/notes", nil, note, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	return c.singleRow(req)
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.Note, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/rest/v1/notes", url.Values{"id": {"eq." + id}}, patch, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	return c.singleRow(req)
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodDelete, "/rest/v1/notes", url.Values{"id": {"eq." + id}}, nil, token)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// singleRow executes a representation-returning write and unwraps the one row.
func (c *HTTPClient) singleRow(req *http.Request) (*models.Note, error) {
	var rows []models.Note
	if err := c.do(req, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("note: %w", common.ErrNotFound)
	}
	return &rows[0], nil
}

func (c *HTTPClient) sessionFromToken(tr tokenResponse) (*models.Session, error) {
	claims, err := parseAccessToken(tr.AccessToken)
	if err != nil {
		return nil, err
	}

	expiresAt := claims.expiresAt()
	switch {
	case tr.ExpiresAt > 0:
		expiresAt = time.Unix(tr.ExpiresAt, 0)
	case expiresAt.IsZero() && tr.ExpiresIn > 0:
		expiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	user := tr.User
	if user == nil {
		user = &models.User{ID: claims.Subject, Email: claims.Email, Phone: claims.Phone}
	}
	if user.ID != claims.Subject {
		return nil, fmt.Errorf("%w: token subject does not match user", common.ErrInvalidToken)
	}

	return &models.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresAt:    expiresAt.UTC(),
		User:         user,
	}, nil
}

func (c *HTTPClient) setSession(ctx context.Context, s *models.Session, kind models.AuthEventKind) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	c.persist(ctx, s)
	c.hub.Publish(models.AuthEvent{Kind: kind, Session: s})
}

func (c *HTTPClient) clearSession(ctx context.Context) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	c.persist(ctx, nil)
	c.hub.Publish(models.AuthEvent{Kind: models.AuthEventSignedOut})
}

// persist mirrors s into the preference store. Failures only cost the
// session across restarts, so they are logged, not returned.
func (c *HTTPClient) persist(ctx context.Context, s *models.Session) {
	if c.store == nil {
		return
	}

	var err error
	if s == nil {
		err = c.store.Delete(ctx, common.SessionPreferenceKey)
	} else {
		var b []byte
		if b, err = json.Marshal(s); err == nil {
			err = c.store.Set(ctx, common.SessionPreferenceKey, string(b))
		}
	}
	if err != nil {
		c.logger.Warn(ctx, "persisting session failed", "error", err)
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body any, bearer string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}

	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set(requestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		err := mapStatus(resp)
		c.logger.Debug(req.Context(), "backend request failed",
			"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
			"request_id", req.Header.Get(requestIDHeader), "error", err)
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func readMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		for _, m := range []string{eb.Message, eb.Msg, eb.ErrorDescription, eb.Error} {
			if m != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func mapStatus(resp *http.Response) error {
	msg := readMessage(resp)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
}
