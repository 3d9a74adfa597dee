package integration_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/topoguide/topoguide/internal/config"
	"github.com/topoguide/topoguide/internal/database"
	"github.com/topoguide/topoguide/internal/models"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/tests/helpers"
	"gorm.io/gorm"
)

// TestWithMariaDB tests the document services with a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	// Get container host and port
	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("CreateAndRetrieveDocument", func(t *testing.T) {
		testCreateAndRetrieveDocument(t, db)
	})

	t.Run("VersionControl", func(t *testing.T) {
		testVersionControl(t, db)
	})

	t.Run("HistoryTimeline", func(t *testing.T) {
		testHistoryTimeline(t, db)
	})

	t.Run("KindsShareLedger", func(t *testing.T) {
		testKindsShareLedger(t, db)
	})
}

// TestWithPostgreSQL tests the document services with a real PostgreSQL container
func TestWithPostgreSQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("POSTGRES_IMAGE"),
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	// Get container host and port
	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
	cfg := &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(2 * time.Second)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("CreateAndRetrieveDocument", func(t *testing.T) {
		testCreateAndRetrieveDocument(t, db)
	})

	t.Run("VersionControl", func(t *testing.T) {
		testVersionControl(t, db)
	})

	t.Run("HistoryTimeline", func(t *testing.T) {
		testHistoryTimeline(t, db)
	})

	t.Run("KindsShareLedger", func(t *testing.T) {
		testKindsShareLedger(t, db)
	})
}

// testCreateAndRetrieveDocument tests creating and retrieving a waypoint
func testCreateAndRetrieveDocument(t *testing.T, db *gorm.DB) {
	service := services.NewWaypointService(db)

	waypoint := helpers.NewTestWaypoint("summit", 2500, "en", "fr")
	waypoint.Geometry = helpers.TestGeometry(t, 6.8, 45.4)

	if err := service.Create(waypoint, helpers.TestUserID); err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	if waypoint.Version != 1 {
		t.Errorf("Expected version 1, got %d", waypoint.Version)
	}

	// Retrieve document
	result, err := service.Get(waypoint.DocumentID, "")
	if err != nil {
		t.Fatalf("Failed to retrieve document: %v", err)
	}

	loaded := result.(*models.Waypoint)
	if len(loaded.Locales) != 2 {
		t.Errorf("Expected 2 locales, got %d", len(loaded.Locales))
	}
	if loaded.Geometry == nil {
		t.Error("Expected geometry on loaded document")
	}

	// Culture filter
	result, err = service.Get(waypoint.DocumentID, "fr")
	if err != nil {
		t.Fatalf("Failed to retrieve document with culture filter: %v", err)
	}
	loaded = result.(*models.Waypoint)
	if len(loaded.Locales) != 1 || loaded.Locales[0].Culture != "fr" {
		t.Errorf("Expected only the fr locale, got %+v", loaded.Locales)
	}
}

// testVersionControl tests optimistic locking on concurrent-style edits
func testVersionControl(t *testing.T, db *gorm.DB) {
	service := services.NewWaypointService(db)

	waypoint := helpers.CreateTestWaypoint(t, db, "pass", 2000, "en")

	// Try to update with wrong document version
	elevation := int32(2100)
	stale := helpers.NewTestWaypoint("pass", elevation, "en")
	stale.DocumentID = waypoint.DocumentID
	stale.Version = waypoint.Version + 7

	_, err := service.Update(stale, "stale edit", helpers.TestUserID)
	var conflict *services.StaleVersionError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected stale version conflict, got %v", err)
	}
	if conflict.Field != services.FieldDocument {
		t.Errorf("Expected document conflict, got %s", conflict.Field)
	}

	// Update with correct version
	fresh := helpers.NewTestWaypoint("pass", elevation, "en")
	fresh.DocumentID = waypoint.DocumentID
	fresh.Version = waypoint.Version
	fresh.Locales[0].Version = 1

	newVersion, err := service.Update(fresh, "raise elevation", helpers.TestUserID)
	if err != nil {
		t.Fatalf("Failed to update with correct version: %v", err)
	}
	if newVersion != waypoint.Version+1 {
		t.Errorf("Expected version %d, got %d", waypoint.Version+1, newVersion)
	}
}

// testHistoryTimeline tests the per-culture version timeline
func testHistoryTimeline(t *testing.T, db *gorm.DB) {
	service := services.NewRouteService(db)

	route := helpers.CreateTestRoute(t, db, "hiking", "en", "fr")

	edit := helpers.NewTestRoute("hiking", "fr")
	edit.DocumentID = route.DocumentID
	edit.Version = route.Version
	edit.Locales[0].Version = 1
	edit.Locales[0].Title = "Tour des glaciers"

	if _, err := service.Update(edit, "retitle fr", helpers.TestUserID); err != nil {
		t.Fatalf("Failed to update route: %v", err)
	}

	versions, err := service.History(route.DocumentID, "")
	if err != nil {
		t.Fatalf("Failed to load history: %v", err)
	}
	// Two bootstrap rows plus one for the fr edit
	if len(versions) != 3 {
		t.Fatalf("Expected 3 version rows, got %d", len(versions))
	}
	if versions[0].HistoryMetadata.Comment != services.InitialVersionComment {
		t.Errorf("Unexpected bootstrap comment %q", versions[0].HistoryMetadata.Comment)
	}
	if versions[2].Culture != "fr" || versions[2].HistoryMetadata.Comment != "retitle fr" {
		t.Errorf("Unexpected last row %+v", versions[2])
	}

	// Culture filter leaves the en bootstrap row only
	versions, err = service.History(route.DocumentID, "en")
	if err != nil {
		t.Fatalf("Failed to load filtered history: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("Expected 1 en row, got %d", len(versions))
	}
}

// testKindsShareLedger tests that documents of different kinds never shadow
// each other in the shared ledger even when their ids collide
func testKindsShareLedger(t *testing.T, db *gorm.DB) {
	waypoint := helpers.CreateTestWaypoint(t, db, "lake", 800, "en")
	route := helpers.CreateTestRoute(t, db, "snowshoeing", "en")

	var waypointRows, routeRows int64
	db.Model(&models.DocumentVersion{}).
		Where("document_type = ? AND document_id = ?", models.TypeWaypoint, waypoint.DocumentID).
		Count(&waypointRows)
	db.Model(&models.DocumentVersion{}).
		Where("document_type = ? AND document_id = ?", models.TypeRoute, route.DocumentID).
		Count(&routeRows)

	if waypointRows != 1 {
		t.Errorf("Expected 1 waypoint ledger row, got %d", waypointRows)
	}
	if routeRows != 1 {
		t.Errorf("Expected 1 route ledger row, got %d", routeRows)
	}
}

// TestHealthCheck tests the health check functionality
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:     "mysql",
		DBHost:     host,
		DBPort:     port.Port(),
		DBDatabase: "testdb",
		DBUser:     "testuser",
		DBPassword: "testpass",
		AuthzURL:   "http://localhost:9999", // Non-existent service
	}

	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run health check
	result := services.HealthCheck(cfg, db)

	// Database should be healthy
	if result.Database != "ok" {
		t.Errorf("Expected database to be ok, got: %s", result.Database)
	}

	// Authorizer should be unreachable
	if result.Authorizer != "unreachable" {
		t.Errorf("Expected authorizer to be unreachable, got: %s", result.Authorizer)
	}

	// Overall status should be unhealthy
	if result.Status != "unhealthy" {
		t.Errorf("Expected status to be unhealthy, got: %s", result.Status)
	}
}
