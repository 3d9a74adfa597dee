// common.go
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

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/topoguide/topoguide/internal/models"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/internal/types"
	"github.com/topoguide/topoguide/internal/utils"
)

// getUserID extracts user ID from context (set by auth middleware)
func getUserID(c *fiber.Ctx) (string, error) {
	user := c.Locals("user")
	if user == nil {
		return "", fmt.Errorf("user not found in context")
	}

	// The user object from authorizer should have an ID field
	userMap, ok := user.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid user data format")
	}

	userID, ok := userMap["id"].(string)
	if !ok {
		return "", fmt.Errorf("user ID not found")
	}

	return userID, nil
}

// parseDocID parses the :id path parameter.
func parseDocID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid document id %q", c.Params("id"))
	}
	return id, nil
}

// cultureParam reads the optional ?l= language filter.
func cultureParam(c *fiber.Ctx) string {
	return c.Query("l")
}

// geometryPayload is the submission shape of a document geometry: version
// plus raw GeoJSON.
type geometryPayload struct {
	Version types.FlexUint64 `json:"version"`
	Geom    json.RawMessage  `json:"geom"`
}

// toGeometry validates the GeoJSON and builds the geometry the services
// layer works with. Returns nil for an absent payload.
func (p *geometryPayload) toGeometry() (*models.DocumentGeometry, error) {
	if p == nil {
		return nil, nil
	}
	geom, err := models.GeometryFromGeoJSON(p.Geom)
	if err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	return &models.DocumentGeometry{
		Version: p.Version.Uint64(),
		Geom:    geom,
	}, nil
}

// checkCultures rejects duplicate cultures and empty culture codes.
func checkCultures(cultures []string) error {
	seen := make(map[string]struct{}, len(cultures))
	for _, culture := range cultures {
		if culture == "" {
			return fmt.Errorf("locale culture is required")
		}
		if _, dup := seen[culture]; dup {
			return fmt.Errorf("duplicate locale culture %q", culture)
		}
		seen[culture] = struct{}{}
	}
	return nil
}

// serviceErrorResponse maps services errors onto the HTTP error envelope:
// unknown document to 404, stale version to 409, anything else to 500.
func serviceErrorResponse(c *fiber.Ctx, err error, errorType string) error {
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c, "Document not found")
	}
	var stale *services.StaleVersionError
	if errors.As(err, &stale) {
		return utils.VersionErrorResponse(c, stale.Field)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
