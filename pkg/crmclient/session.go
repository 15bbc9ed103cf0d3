package crmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rutujak-bora/crm/internal/clock"
	"go.uber.org/zap"
)

// DefaultIdleTimeout ends a CRM session after this long without activity.
const DefaultIdleTimeout = 30 * time.Minute

// TokenStore persists tokens between runs, like browser local storage.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: map[string]string{}}
}

func (m *MemoryTokenStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryTokenStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryTokenStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session tracks the signed-in user of one namespace. All time comes from
// the injected clock so idle expiry is deterministic in tests.
type Session struct {
	api    *Client
	ns     Namespace
	clock  clock.Clock
	tokens TokenStore
	nav    Navigator
	idle   time.Duration
	log    *zap.Logger

	mu           sync.Mutex
	user         *User
	lastActivity time.Time
	idleTimer    clock.Timer
}

func newSession(api *Client, opts Options) *Session {
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore()
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func(string) {})
	}
	idle := opts.IdleTimeout
	if idle == 0 && opts.Namespace == NamespaceCRM {
		idle = DefaultIdleTimeout
	}
	return &Session{
		api:    api,
		ns:     opts.Namespace,
		clock:  opts.Clock,
		tokens: opts.Tokens,
		nav:    opts.Navigator,
		idle:   idle,
		log:    api.log.Named("session"),
	}
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Session) Token() string {
	token, _ := s.tokens.Get(s.ns.tokenKey())
	return token
}

func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok && s.Token() != ""
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a token and starts the idle timer.
func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	var resp loginResponse
	err := s.api.doJSON(withoutExpiry(ctx), http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return User{}, err
	}

	s.tokens.Set(s.ns.tokenKey(), resp.Token)
	if raw, err := json.Marshal(resp.User); err == nil {
		s.tokens.Set(s.ns.userKey(), string(raw))
	}
	s.start(resp.User)
	return resp.User, nil
}

// Verify restores a session from the token store. Any failure signs the
// user out without redirecting, as on first page load.
func (s *Session) Verify(ctx context.Context) (User, error) {
	if s.Token() == "" {
		return User{}, &APIError{Status: http.StatusUnauthorized, Detail: "Not authenticated"}
	}

	user, err := s.verify(withoutExpiry(ctx))
	if err != nil {
		s.clear()
		return User{}, err
	}
	s.start(user)
	return user, nil
}

func (s *Session) verify(ctx context.Context) (User, error) {
	if s.ns == NamespaceGemBid {
		// The bid namespace has no verify endpoint in the console; a
		// successful list proves the token and the user comes from storage.
		if err := s.api.doJSON(ctx, http.MethodGet, "/bids", nil, nil); err != nil {
			return User{}, err
		}
		var user User
		if raw, ok := s.tokens.Get(s.ns.userKey()); ok {
			_ = json.Unmarshal([]byte(raw), &user)
		}
		return user, nil
	}

	var resp struct {
		Valid bool `json:"valid"`
		User  User `json:"user"`
	}
	if err := s.api.doJSON(ctx, http.MethodGet, "/auth/verify", nil, &resp); err != nil {
		return User{}, err
	}
	if !resp.Valid {
		return User{}, &APIError{Status: http.StatusUnauthorized, Detail: "Invalid token"}
	}
	return resp.User, nil
}

// Touch records user activity and pushes back idle expiry.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.lastActivity = s.clock.Now()
	s.armLocked()
}

// CheckIdle expires the session when the idle timeout has passed since the
// last activity. It reports whether the session was expired.
func (s *Session) CheckIdle() bool {
	s.mu.Lock()
	idle := s.user != nil && s.idle > 0 && !s.clock.Now().Before(s.lastActivity.Add(s.idle))
	s.mu.Unlock()

	if idle {
		s.Expire()
	}
	return idle
}

// Expire signs out and sends the user to the login page with expired=true.
func (s *Session) Expire() {
	if s.Token() == "" {
		return
	}
	s.clear()
	s.log.Info("session expired")
	s.nav.Navigate(s.ns.LoginPath() + "?" + url.Values{"expired": {"true"}}.Encode())
}

func (s *Session) Logout() {
	s.clear()
}

func (s *Session) start(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.lastActivity = s.clock.Now()
	s.armLocked()
}

func (s *Session) clear() {
	s.tokens.Delete(s.ns.tokenKey())
	s.tokens.Delete(s.ns.userKey())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
}

func (s *Session) armLocked() {
	if s.idle <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = s.clock.AfterFunc(s.idle, func() { s.CheckIdle() })
}
