package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/topoguide/topoguide/internal/config"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/internal/types"
)

// AuthModerator validates that the request has moderator role authorization
func AuthModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, []string{"moderator"}, "documents.authorization.moderator")
	}
}

// AuthContributor validates that the request has contributor role authorization
func AuthContributor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, []string{"contributor"}, "documents.authorization.contributor")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, roles []string, errorType string) error {
	// Get session cookie
	session := c.Cookies("cookie_session")
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Authorizer cookie \"cookie_session\" not found",
			Type:    errorType,
		}
	}

	// The Authorizer client is created on the first authenticated request,
	// when the request protocol and host are known.
	if !services.IsAuthorizerInitialized() {
		cfg, err := config.Load()
		if err == nil {
			err = services.InitAuthorizer(cfg, c.Protocol(), c.Hostname())
		}
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusServiceUnavailable,
				Message: fmt.Sprintf("Authorizer unavailable: %v", err),
				Type:    errorType,
			}
		}
	}

	// Validate session
	data, err := services.ValidateSession(session, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	// Set user data in context
	if user, ok := data["user"]; ok {
		c.Locals("user", user)
	}

	return c.Next()
}
