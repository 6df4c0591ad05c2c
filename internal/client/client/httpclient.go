package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/netx"
)

// API actions, appended to <base>/api/.
const (
	actionCheckAuth     = "checkAuth"
	actionList          = "list"
	actionSignin        = "signin"
	actionSignup        = "signup"
	actionConfirmSignup = "confirmSignup"
	actionRequestUpload = "requestUpload"
)

// HTTPClient talks to the photo service over its JSON API. Session tokens
// arrive as cookies and are kept in a cookie jar, so every call after a
// successful signin is authenticated. It is safe for concurrent use.
type HTTPClient struct {
	baseURL  *url.URL
	jar      http.CookieJar
	api      *http.Client
	transfer *http.Client
	timeout  time.Duration
}

// NewHTTPClient returns a client for the service rooted at baseURL. A zero
// timeout leaves calls unbounded except by the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		baseURL:  u,
		jar:      jar,
		api:      &http.Client{Jar: jar},
		transfer: &http.Client{},
		timeout:  timeout,
	}, nil
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *HTTPClient) do(ctx context.Context, method, action string, body any) (*Response, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath("api", action).String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: %s", action, ErrUnexpectedStatus, resp.Status)
	}

	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", action, ErrMalformedResponse, err)
	}
	if r.Code == "" {
		return nil, fmt.Errorf("%s: %w: missing responseCode", action, ErrMalformedResponse)
	}
	return &r, nil
}

func (c *HTTPClient) CheckAuth(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, actionCheckAuth, struct{}{})
}

func (c *HTTPClient) List(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, actionList, nil)
}

func (c *HTTPClient) Signin(ctx context.Context, email, password string) (*Response, error) {
	return c.do(ctx, http.MethodPost, actionSignin, map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *HTTPClient) Signup(ctx context.Context, email string) (*Response, error) {
	return c.do(ctx, http.MethodPost, actionSignup, map[string]string{"email": email})
}

func (c *HTTPClient) ConfirmSignup(ctx context.Context, email, temporaryPassword, password string) (*Response, error) {
	return c.do(ctx, http.MethodPost, actionConfirmSignup, map[string]string{
		"email":             email,
		"temporaryPassword": temporaryPassword,
		"password":          password,
	})
}

func (c *HTTPClient) RequestUpload(ctx context.Context, req UploadRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, actionRequestUpload, req)
}

func (c *HTTPClient) Transfer(ctx context.Context, target models.UploadTarget, mimeType string, payload []byte) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return netx.PutPresigned(ctx, c.transfer, target.URL, mimeType, payload)
}

// Cookies returns the session cookies currently held for the service.
func (c *HTTPClient) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies installs previously saved session cookies.
func (c *HTTPClient) SetCookies(cookies []*http.Cookie) {
	set := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		cp := *ck
		if cp.Path == "" {
			cp.Path = "/"
		}
		set = append(set, &cp)
	}
	c.jar.SetCookies(c.baseURL, set)
}

// ClearCookies expires every cookie held for the service.
func (c *HTTPClient) ClearCookies() {
	held := c.jar.Cookies(c.baseURL)
	expired := make([]*http.Cookie, 0, len(held))
	for _, ck := range held {
		expired = append(expired, &http.Cookie{Name: ck.Name, Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(c.baseURL, expired)
}
