// Package crmclient drives the CRM and bid tracker API the way the web
// console does: sessions, form submission, uploads and the margin sheet.
package crmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rutujak-bora/crm/internal/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Namespace selects which of the two systems a client talks to.
type Namespace string

const (
	NamespaceCRM    Namespace = "crm"
	NamespaceGemBid Namespace = "gem_bid"
)

func (n Namespace) prefix() string {
	if n == NamespaceGemBid {
		return "/api/gem-bid"
	}
	return "/api"
}

func (n Namespace) tokenKey() string {
	if n == NamespaceGemBid {
		return "gem_bid_token"
	}
	return "crm_token"
}

func (n Namespace) userKey() string {
	if n == NamespaceGemBid {
		return "gem_bid_user"
	}
	return "crm_user"
}

// LoginPath is where an expired session is sent.
func (n Namespace) LoginPath() string {
	if n == NamespaceGemBid {
		return "/gem-bid/login"
	}
	return "/login"
}

// APIError is a non-2xx response. Detail is the server's user-facing text.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("crm api: status %d", e.Status)
	}
	return fmt.Sprintf("crm api: status %d: %s", e.Status, e.Detail)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// DetailOf returns the text to show for err, falling back to fallback.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var formErr *FormError
	if errors.As(err, &formErr) {
		return formErr.Message
	}
	return fallback
}

// Options configures a Client and the Session it owns. Zero values pick
// the real clock, an in-memory token store and a navigator that does nothing.
type Options struct {
	Namespace   Namespace
	HTTPClient  *http.Client
	Clock       clock.Clock
	Tokens      TokenStore
	Navigator   Navigator
	Logger      *zap.Logger
	IdleTimeout time.Duration
}

type Client struct {
	baseURL string
	ns      Namespace
	http    *http.Client
	clock   clock.Clock
	log     *zap.Logger
	session *Session
}

// New returns a client for the API served at baseURL, e.g. "https://crm.example.com".
func New(baseURL string, opts Options) *Client {
	if opts.Namespace == "" {
		opts.Namespace = NamespaceCRM
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ns:      opts.Namespace,
		http:    opts.HTTPClient,
		clock:   opts.Clock,
		log:     opts.Logger.Named("crmclient").With(zap.String("namespace", string(opts.Namespace))),
	}
	c.session = newSession(c, opts)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Namespace() Namespace {
	return c.ns
}

func (c *Client) url(path string) string {
	return c.baseURL + c.ns.prefix() + path
}

// doJSON sends body as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// upload posts file as the multipart field "file".
func (c *Client) upload(ctx context.Context, path string, file File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Detail string `json:"detail"`
		}
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); readErr == nil {
			if json.Unmarshal(raw, &payload) == nil {
				apiErr.Detail = payload.Detail
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && req.Context().Value(noExpiryKey{}) == nil {
			c.log.Info("session rejected by server", zap.String("path", req.URL.Path))
			c.session.Expire()
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type noExpiryKey struct{}

// withoutExpiry marks requests whose 401 is an answer, not a lost session:
// a bad password, or a stale token checked on startup.
func withoutExpiry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noExpiryKey{}, true)
}
