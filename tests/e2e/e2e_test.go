// e2e_test.go
//
// Collaborative versioned documents for outdoor activities.
// Copyright (c) 2026 topoguide contributors
//
// This file is part of topoguide.
// topoguide is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// topoguide is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with topoguide.
// If not, see <https://www.gnu.org/licenses/>.

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/topoguide/topoguide/internal/config"
	"github.com/topoguide/topoguide/internal/database"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/tests/helpers"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	topoguideHost, _ := tc.TopoguideContainer.Host(ctx)
	topoguidePort, _ := tc.TopoguideContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", topoguideHost, topoguidePort.Port())

	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, "8080")
	authzURL := fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	// Run E2E tests
	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	// Public API Access
	t.Run("PublicAPIAccess", func(t *testing.T) {
		testPublicAPIAccess(t, baseURL)
	})

	// Authenticated document lifecycle
	t.Run("DocumentLifecycle", func(t *testing.T) {
		testDocumentLifecycle(t, baseURL, authzURL)
	})
}

func testHealthCheck(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	// 1. Prepare configuration for the health check
	// We need to point to the mapped ports on localhost, not internal container names
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Update DB host and port to mapped values
	dbHost, _ := tc.DBContainer.Host(ctx)
	dbPort, _ := tc.DBContainer.MappedPort(ctx, "3306")
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()

	// Update Authorizer URL to mapped value
	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, "8080")
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	// 2. Establish GORM connection to the test database
	gormDB, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	// 3. Perform the health check
	result := services.HealthCheck(cfg, gormDB)

	// 4. Verify the result
	if result.Status != "healthy" {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, database=%s, authorizer=%s",
		result.Status, result.Database, result.Authorizer)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, bodyStr)
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(bodyStr))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicAPIAccess(t *testing.T, baseURL string) {
	// Reads are public; the list works without a session
	resp, err := http.Get(baseURL + "/api/documents/waypoints")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var list []map[string]interface{}
	helpers.ParseJSON(t, resp, &list)

	// Unknown document returns a JSON 404 envelope
	resp, err = http.Get(baseURL + "/api/documents/waypoints/99999999")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	helpers.AssertStatus(t, resp, 404)

	var result map[string]interface{}
	helpers.ParseJSON(t, resp, &result)
	if result["ok"] != false {
		t.Errorf("Expected ok=false in 404 envelope, got %v", result)
	}

	// Writes require a session
	resp, err = http.Post(baseURL+"/api/documents/waypoints", "application/json",
		bytes.NewReader([]byte(`{"message":"x","document":{}}`)))
	if err != nil {
		t.Fatalf("Failed to POST without session: %v", err)
	}
	helpers.AssertStatus(t, resp, 403)
}

// authenticatedRequest sends a JSON request with the session cookie set
func authenticatedRequest(t *testing.T, method, url, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: token})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func testDocumentLifecycle(t *testing.T, baseURL, authzURL string) {
	password := helpers.GeneratePassword()
	token := helpers.AcquireAccount(t, authzURL, "contributor-e2e@topoguide.test", password,
		[]string{"contributor"})

	// Create a waypoint
	submission := map[string]interface{}{
		"message": "initial version",
		"document": map[string]interface{}{
			"waypoint_type": "summit",
			"elevation":     3842,
			"locales": []map[string]interface{}{
				{"culture": "fr", "title": "Aiguille du Midi"},
			},
			"geometry": map[string]interface{}{
				"geom": map[string]interface{}{
					"type":        "Point",
					"coordinates": []float64{6.8871, 45.8785},
				},
			},
		},
	}

	resp := authenticatedRequest(t, "POST", baseURL+"/api/documents/waypoints", token, submission)
	helpers.AssertStatus(t, resp, 200)

	var created map[string]interface{}
	helpers.ParseJSON(t, resp, &created)
	if created["ok"] != true {
		t.Fatalf("Create failed: %v", created)
	}
	docID := uint64(created["document_id"].(float64))
	if docID == 0 {
		t.Fatal("Expected a database-assigned document id")
	}
	if created["version"] != "1" {
		t.Errorf("Expected version \"1\", got %v", created["version"])
	}

	// Update the figures
	document := submission["document"].(map[string]interface{})
	document["version"] = 1
	document["elevation"] = 3843
	submission["message"] = "correct elevation"

	url := fmt.Sprintf("%s/api/documents/waypoints/%d", baseURL, docID)
	resp = authenticatedRequest(t, "PUT", url, token, submission)
	helpers.AssertStatus(t, resp, 200)

	var updated map[string]interface{}
	helpers.ParseJSON(t, resp, &updated)
	if updated["version"] != "2" {
		t.Errorf("Expected version \"2\", got %v", updated["version"])
	}

	// Replaying the same edit with the old version is a conflict
	resp = authenticatedRequest(t, "PUT", url, token, submission)
	helpers.AssertStatus(t, resp, 409)

	var conflict map[string]interface{}
	helpers.ParseJSON(t, resp, &conflict)
	if conflict["versionError"] != true {
		t.Errorf("Expected versionError=true, got %v", conflict)
	}

	// History carries both edits for the fr culture
	resp, err := http.Get(url + "/history?l=fr")
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	helpers.AssertStatus(t, resp, 200)

	var versions []map[string]interface{}
	helpers.ParseJSON(t, resp, &versions)
	if len(versions) != 2 {
		t.Errorf("Expected 2 history rows, got %d", len(versions))
	}
}
