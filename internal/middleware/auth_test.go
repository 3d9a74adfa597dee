package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/topoguide/topoguide/internal/middleware"
	"github.com/topoguide/topoguide/internal/types"
)

func setupAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).JSON(ce)
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
	app.Post("/protected", middleware.AuthContributor(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuthorizeWithoutCookie(t *testing.T) {
	app := setupAuthApp()

	req := httptest.NewRequest("POST", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.StatusCode)
	}
}

// TestAuthorizeInitializesClient verifies the middleware bootstraps the
// Authorizer client on the first request that carries a session, instead of
// rejecting every session as uninitialized. Pointing at an unreachable
// authorizer makes the init attempt observable.
func TestAuthorizeInitializesClient(t *testing.T) {
	t.Setenv("DB_DATABASE", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("AUTHZ_CLIENT_ID", "test_client")
	t.Setenv("AUTHZ_URL", "http://127.0.0.1:1")

	app := setupAuthApp()

	req := httptest.NewRequest("POST", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "some-session"})
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", resp.StatusCode)
	}

	var ce types.CustomError
	if err := json.NewDecoder(resp.Body).Decode(&ce); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(ce.Message, "ping failed") {
		t.Errorf("Expected the init attempt in the message, got %q", ce.Message)
	}
	if ce.Message == "Invalid session: authorizer client not initialized" {
		t.Error("Middleware never attempted to initialize the client")
	}
}
