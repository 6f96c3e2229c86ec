package strava

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"strava-notion-sync/internal/metrics"
)

// perPage is the page size for activity listing. Strava allows up to 200;
// 100 comfortably covers a trailing week for any athlete.
const perPage = 100

// Activity is a summary activity as returned by the athlete activities
// list endpoint. Sport-specific metrics are zero when Strava omits them.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"`
	AverageHeartrate   float64   `json:"average_heartrate"`
	AverageCadence     float64   `json:"average_cadence"`
	AverageWatts       float64   `json:"average_watts"`
}

// ListActivities fetches all activities started after the given time,
// following pagination until a short page is returned. Authenticates first
// if no access token is held yet.
func (c *Client) ListActivities(ctx context.Context, after time.Time) ([]Activity, error) {
	if c.accessToken == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	var all []Activity
	for page := 1; ; page++ {
		batch, err := c.listPage(ctx, after, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			break
		}
	}

	c.logger.Info("fetched activities", "count", len(all), "after", after.Format(time.RFC3339))
	return all, nil
}

func (c *Client) listPage(ctx context.Context, after time.Time, page int) ([]Activity, error) {
	params := url.Values{
		"after":    {strconv.FormatInt(after.Unix(), 10)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/athlete/activities?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(metrics.ServiceStrava, metrics.OpListActivities).Observe(duration.Seconds())

	if err != nil {
		c.logger.Error("activity list request failed", "page", page, "error", err)
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(metrics.ServiceStrava, metrics.OpListActivities, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("strava_api_request", "path", "/athlete/activities", "page", page, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &FetchError{Err: fmt.Errorf("activity list failed with status %d: %s", resp.StatusCode, string(bodyBytes))}
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("failed to decode activities: %w", err)}
	}

	return activities, nil
}
