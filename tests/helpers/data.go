// data.go
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

package helpers

import (
	"strconv"
	"testing"

	"github.com/topoguide/topoguide/internal/models"
	"github.com/topoguide/topoguide/internal/services"
	"gorm.io/gorm"
)

// TestUserID is the author recorded for fixture edits.
const TestUserID = "00000000-0000-0000-0000-000000000001"

// NewTestWaypoint builds an unsaved waypoint with one locale per culture.
func NewTestWaypoint(waypointType string, elevation int32, cultures ...string) *models.Waypoint {
	waypoint := &models.Waypoint{
		WaypointFigures: models.WaypointFigures{
			WaypointType: waypointType,
			Elevation:    &elevation,
		},
	}
	for _, culture := range cultures {
		waypoint.Locales = append(waypoint.Locales, models.WaypointLocale{
			Culture: culture,
			LocaleFields: models.LocaleFields{
				Title:       "Test waypoint " + culture,
				Description: "Test description " + culture,
			},
		})
	}
	return waypoint
}

// NewTestRoute builds an unsaved route with one locale per culture.
func NewTestRoute(activity string, cultures ...string) *models.Route {
	route := &models.Route{
		RouteFigures: models.RouteFigures{
			Activity: activity,
		},
	}
	for _, culture := range cultures {
		route.Locales = append(route.Locales, models.RouteLocale{
			Culture: culture,
			LocaleFields: models.LocaleFields{
				Title: "Test route " + culture,
			},
		})
	}
	return route
}

// CreateTestWaypoint persists a waypoint through the document service so
// the version ledger is bootstrapped like in production.
func CreateTestWaypoint(t *testing.T, db *gorm.DB, waypointType string, elevation int32, cultures ...string) *models.Waypoint {
	t.Helper()
	waypoint := NewTestWaypoint(waypointType, elevation, cultures...)
	if err := services.NewWaypointService(db).Create(waypoint, TestUserID); err != nil {
		t.Fatalf("Failed to create test waypoint: %v", err)
	}
	return waypoint
}

// CreateTestRoute persists a route through the document service.
func CreateTestRoute(t *testing.T, db *gorm.DB, activity string, cultures ...string) *models.Route {
	t.Helper()
	route := NewTestRoute(activity, cultures...)
	if err := services.NewRouteService(db).Create(route, TestUserID); err != nil {
		t.Fatalf("Failed to create test route: %v", err)
	}
	return route
}

// TestGeometry returns a simple point geometry.
func TestGeometry(t *testing.T, lon, lat float64) *models.DocumentGeometry {
	t.Helper()
	geom, err := models.GeometryFromGeoJSON([]byte(
		`{"type":"Point","coordinates":[` +
			strconv.FormatFloat(lon, 'f', -1, 64) + `,` +
			strconv.FormatFloat(lat, 'f', -1, 64) + `]}`))
	if err != nil {
		t.Fatalf("Failed to build test geometry: %v", err)
	}
	return &models.DocumentGeometry{Geom: geom}
}
