package crmclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/stretchr/testify/require"
)

// fakeAPI records every request and answers from per-route handlers.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	bodies   map[string][]string
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:        t,
		hits:     map[string]int{},
		bodies:   map[string][]string{},
		handlers: map[string]http.HandlerFunc{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[route] = h
}

func (f *fakeAPI) reply(route string, status int, body any) {
	f.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.hits {
		n += v
	}
	return n
}

func (f *fakeAPI) lastBody(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bodies[route]
	if len(b) == 0 {
		return ""
	}
	return b[len(b)-1]
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	raw, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))

	f.mu.Lock()
	f.hits[route]++
	f.bodies[route] = append(f.bodies[route], string(raw))
	h, ok := f.handlers[route]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
		return
	}
	h(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type harness struct {
	api    *fakeAPI
	client *Client
	clock  *clock.FakeClock
	tokens *MemoryTokenStore
	nav    *recordingNavigator
}

func newHarness(t *testing.T, ns Namespace) *harness {
	t.Helper()
	api := newFakeAPI(t)
	h := &harness{
		api:    api,
		clock:  clock.NewFakeClock(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)),
		tokens: NewMemoryTokenStore(),
		nav:    &recordingNavigator{},
	}
	h.client = New(api.server.URL, Options{
		Namespace:  ns,
		HTTPClient: api.server.Client(),
		Clock:      h.clock,
		Tokens:     h.tokens,
		Navigator:  h.nav,
	})
	return h
}

// signIn stores a token as if the user had logged in earlier.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	prefix := h.client.Namespace().prefix()
	h.api.reply("POST "+prefix+"/auth/login", http.StatusOK, map[string]any{
		"token": "tok-1",
		"user":  map[string]string{"email": "sales@example.com", "name": "Sales"},
	})
	_, err := h.client.Session().Login(t.Context(), "sales@example.com", "pw")
	require.NoError(t, err)
}
