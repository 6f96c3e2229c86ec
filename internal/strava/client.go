package strava

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"strava-notion-sync/internal/config"
	"strava-notion-sync/internal/metrics"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultTokenURL = "https://www.strava.com/oauth/token"
)

// Client is a Strava API client for a single athlete, authenticated via
// the refresh-token flow
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	refreshToken string
	accessToken  string
	baseURL      string
	tokenURL     string
	logger       *slog.Logger
}

// NewClient creates a new Strava API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clientID:     cfg.StravaClientID,
		clientSecret: cfg.StravaClientSecret,
		refreshToken: cfg.StravaRefreshToken,
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		logger:       slog.Default(),
	}
}

// SetBaseURL overrides the API base URL (used in tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetTokenURL overrides the OAuth token URL (used in tests)
func (c *Client) SetTokenURL(u string) {
	c.tokenURL = u
}

// TokenResponse represents the response from a token refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthError indicates the token endpoint rejected the credentials
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token refresh failed with status %d: %s", e.StatusCode, e.Body)
}

// FetchError indicates activities could not be fetched or decoded
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch activities: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Authenticate exchanges the stored refresh token for a short-lived access
// token. It must succeed before any other call; a failure aborts the run.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(metrics.ServiceStrava, metrics.OpRefreshToken).Observe(duration.Seconds())

	if err != nil {
		c.logger.Error("token refresh failed", "error", err, "duration_ms", duration.Milliseconds())
		return fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(metrics.ServiceStrava, metrics.OpRefreshToken, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Info("token_refresh", "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &AuthError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return &AuthError{StatusCode: resp.StatusCode, Body: "token response contained no access token"}
	}

	c.accessToken = tokenResp.AccessToken
	return nil
}
