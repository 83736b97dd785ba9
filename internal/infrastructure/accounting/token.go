package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// tokenSource caches the access token and refreshes it through a
// single-flight group, so concurrent workers hitting an expired token
// trigger exactly one login call.
type tokenSource struct {
	config     *Config
	httpClient *http.Client

	group singleflight.Group

	mu     sync.RWMutex
	token  string
	expiry time.Time

	now func() time.Time
}

func newTokenSource(config *Config, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		config:     config,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid access token, logging in when the cached one is
// missing or about to expire.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.RLock()
	token, expiry := t.token, t.expiry
	t.mu.RUnlock()
	if token != "" && t.now().Before(expiry) {
		return token, nil
	}

	v, err, _ := t.group.Do("login", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		t.mu.RLock()
		token, expiry := t.token, t.expiry
		t.mu.RUnlock()
		if token != "" && t.now().Before(expiry) {
			return token, nil
		}
		return t.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token. Called on a 401 so the next request
// logs in again.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiry = time.Time{}
	t.mu.Unlock()
}

func (t *tokenSource) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		Username: t.config.Username,
		Password: t.config.Password,
	})
	if err != nil {
		return "", fmt.Errorf("accounting: failed to encode login request: %w", err)
	}

	url := strings.TrimSuffix(t.config.BaseURL, "/") + "/api/v1/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("accounting: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("accounting: login request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("accounting: failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("accounting: login rejected: HTTP %d", resp.StatusCode)
	}

	var login loginResponse
	if err := json.Unmarshal(respBody, &login); err != nil {
		return "", fmt.Errorf("accounting: failed to parse login response: %w", err)
	}
	if login.Token == "" {
		return "", fmt.Errorf("accounting: login response carries no token")
	}

	lifetime := time.Duration(login.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	margin := time.Duration(t.config.TokenMarginSeconds) * time.Second
	if margin >= lifetime {
		margin = 0
	}

	t.mu.Lock()
	t.token = login.Token
	t.expiry = t.now().Add(lifetime - margin)
	t.mu.Unlock()

	return login.Token, nil
}
