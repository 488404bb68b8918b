package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthorized covers 401/403 responses; callers redirect to sign-in
	// instead of surfacing it raw.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound covers 404 responses.
	ErrNotFound = errors.New("api: not found")
)

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: backend returned status %d", e.Status)
	}
	return fmt.Sprintf("api: backend returned status %d: %s", e.Status, e.Message)
}

// Is maps HTTP status classes onto the package sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Credentials identify the signed-in customer. The bearer token travels in
// an Authorization header on user-scoped calls; OTP/session calls rely on
// the client's cookie jar instead. The two schemes coexist.
type Credentials struct {
	UserID string
	Token  string
}

func (c Credentials) Valid() bool {
	return c.UserID != "" && c.Token != ""
}

// Client is the shared REST client for the storefront backend.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	creds Credentials
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("api: base url is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

func (c *Client) ClearCredentials() {
	c.SetCredentials(Credentials{})
}

func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// JSON performs a bearer-authorized request. body and out may be nil.
func (c *Client) JSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, method, path, query, body, out, true)
}

// SessionJSON performs a cookie-session request without an Authorization
// header (the OTP flow).
func (c *Client) SessionJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.do(ctx, method, path, query, body, out, false)
}

// Download streams a binary response body into w.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(path, resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("api: failed to read binary response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, authorize bool) error {
	req, err := c.newRequest(ctx, method, path, query, body, authorize)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: failed to decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}, authorize bool) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: failed to marshal request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("api: failed to build request %s %s: %w", method, path, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorize {
		if creds := c.Credentials(); creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
		}
	}
	if id, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-ID", id.String())
	}

	return req, nil
}

func (c *Client) responseError(path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &Error{Status: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		case payload.Reason != "":
			apiErr.Message = payload.Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	log.Warn().Int("status", resp.StatusCode).Str("path", path).Str("message", apiErr.Message).Msg("api: backend returned error")
	return apiErr
}
