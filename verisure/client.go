package verisure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.SugaredLogger
}

// Client talks to a JSON gateway in front of the vendor cloud.
// Session cookie set on login is kept in the client's jar.
type Client struct {
	baseURL  *url.URL
	username string
	password string
	http     *http.Client
	l        *zap.SugaredLogger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("cannot parse vendor URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("vendor URL %q needs scheme and host", cfg.URL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:  u,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Jar: jar, Timeout: cfg.Timeout},
		l:        l,
	}, nil
}

func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Username: c.username, Password: c.password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("login"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	c.l.Debugf("logged in as %s", c.username)
	return nil
}

func (c *Client) GetOverview(ctx context.Context, category DeviceCategory) ([]Overview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("overview", category.String()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var overviews []Overview
	if err := json.NewDecoder(resp.Body).Decode(&overviews); err != nil {
		return nil, fmt.Errorf("%w: decoding %s overview: %w", ErrVendor, category, err)
	}
	// gateway does not have to repeat the category in every entry
	for i := range overviews {
		overviews[i].Category = category
	}
	return overviews, nil
}

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL.JoinPath(parts...).String()
}

// do sends the request and maps transport and status failures onto the package errors.
// On success the caller owns the response body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConnectivity, req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrCredentialsRejected, strings.TrimSpace(string(msg)))
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%w: %s returned %d", ErrConnectivity, req.URL.Path, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrVendor, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
