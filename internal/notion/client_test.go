package notion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"strava-notion-sync/internal/config"
)

func testClient(serverURL string) *Client {
	client := NewClient(&config.Config{
		NotionToken:          "test_notion_token",
		NotionActivitiesDBID: "activities_db",
		NotionPlannedDBID:    "planned_db",
	})
	client.SetBaseURL(serverURL)
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("Failed to read request body: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	return decoded
}

func TestActivityExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/activities_db/query" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test_notion_token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Notion-Version") == "" {
			t.Error("Expected Notion-Version header to be set")
		}

		body := decodeBody(t, r)
		filter := body["filter"].(map[string]any)
		if filter["property"] != "Strava ID" {
			t.Errorf("Expected filter on 'Strava ID', got %v", filter["property"])
		}
		number := filter["number"].(map[string]any)
		if number["equals"].(float64) != 111 {
			t.Errorf("Expected filter equals 111, got %v", number["equals"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": "existing-page"}]}`))
	}))
	defer server.Close()

	exists, err := testClient(server.URL).ActivityExists(context.Background(), 111)
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	if !exists {
		t.Error("Expected activity to exist")
	}
}

func TestActivityDoesNotExist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	exists, err := testClient(server.URL).ActivityExists(context.Background(), 222)
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	if exists {
		t.Error("Expected activity to not exist")
	}
}

func TestCreateActivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		body := decodeBody(t, r)
		parent := body["parent"].(map[string]any)
		if parent["database_id"] != "activities_db" {
			t.Errorf("Expected parent database 'activities_db', got %v", parent["database_id"])
		}

		props := body["properties"].(map[string]any)
		if _, ok := props["Name"]; !ok {
			t.Error("Expected Name property in create request")
		}

		w.Write([]byte(`{"id": "new-page-id"}`))
	}))
	defer server.Close()

	pageID, err := testClient(server.URL).CreateActivity(context.Background(), Properties{
		PropertyName:     Title("Morning Run"),
		PropertyStravaID: Number(111),
	})
	if err != nil {
		t.Fatalf("Failed to create activity: %v", err)
	}
	if pageID != "new-page-id" {
		t.Errorf("Expected page ID 'new-page-id', got %s", pageID)
	}
}

func TestFindPlanned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/planned_db/query" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		body := decodeBody(t, r)
		filter := body["filter"].(map[string]any)
		and := filter["and"].([]any)
		if len(and) != 2 {
			t.Fatalf("Expected 2 AND conditions, got %d", len(and))
		}

		dateCond := and[0].(map[string]any)
		if dateCond["property"] != "Date" {
			t.Errorf("Expected first condition on 'Date', got %v", dateCond["property"])
		}
		dateFilter := dateCond["date"].(map[string]any)
		if dateFilter["equals"] != "2024-01-06" {
			t.Errorf("Expected day-granularity date '2024-01-06', got %v", dateFilter["equals"])
		}

		typeCond := and[1].(map[string]any)
		typeFilter := typeCond["select"].(map[string]any)
		if typeFilter["equals"] != "Ride" {
			t.Errorf("Expected type filter 'Ride', got %v", typeFilter["equals"])
		}

		w.Write([]byte(`{"results": [{"id": "planned-1"}]}`))
	}))
	defer server.Close()

	date := time.Date(2024, 1, 6, 18, 30, 0, 0, time.UTC)
	plannedID, err := testClient(server.URL).FindPlanned(context.Background(), date, "Ride")
	if err != nil {
		t.Fatalf("Failed to find planned activity: %v", err)
	}
	if plannedID != "planned-1" {
		t.Errorf("Expected planned ID 'planned-1', got %s", plannedID)
	}
}

func TestFindPlannedNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	plannedID, err := testClient(server.URL).FindPlanned(context.Background(), time.Now(), "Run")
	if err != nil {
		t.Fatalf("Expected no error when nothing matches, got: %v", err)
	}
	if plannedID != "" {
		t.Errorf("Expected empty planned ID, got %s", plannedID)
	}
}

func TestFindPlannedMultipleMatchesTakesFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"id": "planned-a"}, {"id": "planned-b"}]}`))
	}))
	defer server.Close()

	plannedID, err := testClient(server.URL).FindPlanned(context.Background(), time.Now(), "Run")
	if err != nil {
		t.Fatalf("Failed to find planned activity: %v", err)
	}
	if plannedID != "planned-a" {
		t.Errorf("Expected first result 'planned-a', got %s", plannedID)
	}
}

func TestLinkToPlanned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/pages/activity-page" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		body := decodeBody(t, r)
		props := body["properties"].(map[string]any)
		relation := props["Planned Activity"].(map[string]any)["relation"].([]any)
		if len(relation) != 1 {
			t.Fatalf("Expected 1 relation target, got %d", len(relation))
		}
		if relation[0].(map[string]any)["id"] != "planned-1" {
			t.Errorf("Expected relation to 'planned-1', got %v", relation[0])
		}

		w.Write([]byte(`{"id": "activity-page"}`))
	}))
	defer server.Close()

	if err := testClient(server.URL).LinkToPlanned(context.Background(), "activity-page", "planned-1"); err != nil {
		t.Fatalf("Failed to link planned activity: %v", err)
	}
}

func TestUpdatePlannedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pages/planned-1" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		body := decodeBody(t, r)
		props := body["properties"].(map[string]any)
		status := props["Status"].(map[string]any)["status"].(map[string]any)
		if status["name"] != "Done" {
			t.Errorf("Expected status 'Done', got %v", status["name"])
		}

		w.Write([]byte(`{"id": "planned-1"}`))
	}))
	defer server.Close()

	if err := testClient(server.URL).UpdatePlannedStatus(context.Background(), "planned-1", "Done"); err != nil {
		t.Fatalf("Failed to update planned status: %v", err)
	}
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"object":"error","status":400,"message":"validation_error"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).ActivityExists(context.Background(), 111)
	if err == nil {
		t.Fatal("Expected error from 400 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "validation_error") {
		t.Errorf("Expected body to carry the error message, got %s", apiErr.Body)
	}
}
