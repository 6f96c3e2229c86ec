package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"strava-notion-sync/internal/config"
	"strava-notion-sync/internal/metrics"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
)

// Client wraps the Notion REST API for the Activities and Planned
// Activities databases
type Client struct {
	httpClient     *http.Client
	token          string
	activitiesDBID string
	plannedDBID    string
	baseURL        string
	logger         *slog.Logger
}

// NewClient creates a new Notion API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		token:          cfg.NotionToken,
		activitiesDBID: cfg.NotionActivitiesDBID,
		plannedDBID:    cfg.NotionPlannedDBID,
		baseURL:        defaultBaseURL,
		logger:         slog.Default(),
	}
}

// SetBaseURL overrides the API base URL (used in tests)
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// APIError is a non-2xx response from the Notion API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API request failed with status %d: %s", e.StatusCode, e.Body)
}

type page struct {
	ID string `json:"id"`
}

type queryRequest struct {
	Filter any `json:"filter"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

type numberFilter struct {
	Equals int64 `json:"equals"`
}

type equalsFilter struct {
	Equals string `json:"equals"`
}

type propertyFilter struct {
	Property string        `json:"property"`
	Number   *numberFilter `json:"number,omitempty"`
	Date     *equalsFilter `json:"date,omitempty"`
	Select   *equalsFilter `json:"select,omitempty"`
}

type andFilter struct {
	And []propertyFilter `json:"and"`
}

type createPageRequest struct {
	Parent     pageParent `json:"parent"`
	Properties Properties `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type updatePageRequest struct {
	Properties Properties `json:"properties"`
}

// ActivityExists reports whether the Activities database already holds a
// record with the given Strava ID
func (c *Client) ActivityExists(ctx context.Context, stravaID int64) (bool, error) {
	reqBody := queryRequest{
		Filter: propertyFilter{
			Property: PropertyStravaID,
			Number:   &numberFilter{Equals: stravaID},
		},
	}

	var result queryResponse
	path := fmt.Sprintf("/databases/%s/query", c.activitiesDBID)
	if err := c.do(ctx, metrics.OpQueryActivities, http.MethodPost, path, reqBody, &result); err != nil {
		return false, err
	}

	return len(result.Results) > 0, nil
}

// CreateActivity creates a new page in the Activities database and returns
// its page ID
func (c *Client) CreateActivity(ctx context.Context, props Properties) (string, error) {
	reqBody := createPageRequest{
		Parent:     pageParent{DatabaseID: c.activitiesDBID},
		Properties: props,
	}

	var created page
	if err := c.do(ctx, metrics.OpCreatePage, http.MethodPost, "/pages", reqBody, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// FindPlanned looks up a planned activity matching the given day and sport
// type. Returns the empty string when nothing matches. When the query
// returns more than one candidate the first is taken; no ordering is
// guaranteed upstream.
func (c *Client) FindPlanned(ctx context.Context, date time.Time, sportType string) (string, error) {
	day := date.Format("2006-01-02")
	reqBody := queryRequest{
		Filter: andFilter{
			And: []propertyFilter{
				{Property: PropertyDate, Date: &equalsFilter{Equals: day}},
				{Property: PropertyType, Select: &equalsFilter{Equals: sportType}},
			},
		},
	}

	var result queryResponse
	path := fmt.Sprintf("/databases/%s/query", c.plannedDBID)
	if err := c.do(ctx, metrics.OpQueryPlanned, http.MethodPost, path, reqBody, &result); err != nil {
		return "", err
	}

	if len(result.Results) == 0 {
		return "", nil
	}
	if len(result.Results) > 1 {
		c.logger.Debug("multiple planned activities match, taking first",
			"date", day, "sport_type", sportType, "candidates", len(result.Results))
	}

	return result.Results[0].ID, nil
}

// LinkToPlanned sets the activity page's relation to the planned activity
func (c *Client) LinkToPlanned(ctx context.Context, pageID, plannedID string) error {
	reqBody := updatePageRequest{
		Properties: Properties{
			PropertyPlannedActivity: Relation(plannedID),
		},
	}

	return c.do(ctx, metrics.OpUpdateRelation, http.MethodPatch, "/pages/"+pageID, reqBody, nil)
}

// UpdatePlannedStatus sets the planned activity's status property
func (c *Client) UpdatePlannedStatus(ctx context.Context, plannedID, status string) error {
	reqBody := updatePageRequest{
		Properties: Properties{
			PropertyStatus: Status(status),
		},
	}

	return c.do(ctx, metrics.OpUpdateStatus, http.MethodPatch, "/pages/"+plannedID, reqBody, nil)
}

// do performs one authenticated JSON request against the Notion API and
// decodes the response into out when out is non-nil
func (c *Client) do(ctx context.Context, operation, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(metrics.ServiceNotion, operation).Observe(duration.Seconds())

	if err != nil {
		c.logger.Error("notion request failed", "operation", operation, "error", err)
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(metrics.ServiceNotion, operation, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("notion_api_request", "operation", operation, "method", method, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
