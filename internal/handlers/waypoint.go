// waypoint.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/topoguide/topoguide/internal/models"
	"github.com/topoguide/topoguide/internal/services"
	"github.com/topoguide/topoguide/internal/types"
	"github.com/topoguide/topoguide/internal/utils"
)

// WaypointHandler handles waypoint document routes
type WaypointHandler struct {
	Service *services.DocumentService
}

// waypointLocalePayload whitelists the locale fields a client may submit.
type waypointLocalePayload struct {
	Version          types.FlexUint64 `json:"version"`
	Culture          string           `json:"culture"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	PedestrianAccess string           `json:"pedestrian_access"`
}

// waypointPayload whitelists the waypoint fields a client may submit.
type waypointPayload struct {
	DocumentID   types.FlexUint64                      `json:"document_id"`
	Version      types.FlexUint64                      `json:"version"`
	WaypointType string                                `json:"waypoint_type"`
	Elevation    *int32                                `json:"elevation"`
	Locales      types.FlexList[waypointLocalePayload] `json:"locales"`
	Geometry     *geometryPayload                      `json:"geometry"`
}

// waypointEditBody is the envelope of create and update submissions.
type waypointEditBody struct {
	Message  string          `json:"message"`
	Document waypointPayload `json:"document"`
}

// toModel converts the payload, validating enumerated values.
func (p *waypointPayload) toModel() (*models.Waypoint, error) {
	if !models.IsWaypointType(p.WaypointType) {
		return nil, fmt.Errorf("invalid waypoint_type %q", p.WaypointType)
	}

	cultures := make([]string, len(p.Locales))
	for i := range p.Locales {
		cultures[i] = p.Locales[i].Culture
	}
	if err := checkCultures(cultures); err != nil {
		return nil, err
	}

	waypoint := &models.Waypoint{
		DocumentID: p.DocumentID.Uint64(),
		Version:    p.Version.Uint64(),
		WaypointFigures: models.WaypointFigures{
			WaypointType: p.WaypointType,
			Elevation:    p.Elevation,
		},
	}

	for _, lp := range p.Locales {
		waypoint.Locales = append(waypoint.Locales, models.WaypointLocale{
			Version: lp.Version.Uint64(),
			Culture: lp.Culture,
			LocaleFields: models.LocaleFields{
				Title:       lp.Title,
				Description: lp.Description,
			},
			WaypointLocaleFields: models.WaypointLocaleFields{
				PedestrianAccess: lp.PedestrianAccess,
			},
		})
	}

	geometry, err := p.Geometry.toGeometry()
	if err != nil {
		return nil, err
	}
	waypoint.Geometry = geometry

	return waypoint, nil
}

// ListWaypoints handles GET /api/documents/waypoints
// @Summary List waypoints
// @Description Get all live waypoint documents with locales and geometry
// @Tags Waypoints
// @Accept json
// @Produce json
// @Success 200 {array} models.Waypoint
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/waypoints [get]
func (h *WaypointHandler) ListWaypoints(c *fiber.Ctx) error {
	result, err := h.Service.List()
	if err != nil {
		return serviceErrorResponse(c, err, "listWaypoints")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetWaypoint handles GET /api/documents/waypoints/:id
// @Summary Get waypoint
// @Description Get a live waypoint document, optionally restricted to one language
// @Tags Waypoints
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {object} models.Waypoint
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/waypoints/{id} [get]
func (h *WaypointHandler) GetWaypoint(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	result, err := h.Service.Get(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getWaypoint")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetWaypointHistory handles GET /api/documents/waypoints/:id/history
// @Summary Get waypoint history
// @Description Get the version timeline of a waypoint, optionally for one language
// @Tags Waypoints
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {array} models.DocumentVersion
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/waypoints/{id}/history [get]
func (h *WaypointHandler) GetWaypointHistory(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	versions, err := h.Service.History(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getWaypointHistory")
	}
	return utils.SuccessResponse(c, versions, fiber.StatusOK)
}

// CreateWaypoint handles POST /api/documents/waypoints
// @Summary Create waypoint
// @Description Create a new waypoint document with at least one locale
// @Tags Waypoints
// @Accept json
// @Produce json
// @Param body body waypointEditBody true "Waypoint submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/waypoints [post]
func (h *WaypointHandler) CreateWaypoint(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	var body waypointEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}
	if len(body.Document.Locales) == 0 {
		return utils.ErrorResponse(c, "At least one locale is required", fiber.StatusBadRequest, "documents.validation.input")
	}

	waypoint, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	if err := h.Service.Create(waypoint, userID); err != nil {
		return serviceErrorResponse(c, err, "createWaypoint")
	}
	return utils.MutationSuccessResponse(c, waypoint.DocumentID, waypoint.Version)
}

// UpdateWaypoint handles PUT /api/documents/waypoints/:id
// @Summary Update waypoint
// @Description Apply an edit to a waypoint; unchanged submissions are a no-op
// @Tags Waypoints
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body waypointEditBody true "Waypoint submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/waypoints/{id} [put]
func (h *WaypointHandler) UpdateWaypoint(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	var body waypointEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	waypoint, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}
	// The path is authoritative for identity
	waypoint.DocumentID = docID

	newVersion, err := h.Service.Update(waypoint, body.Message, userID)
	if err != nil {
		return serviceErrorResponse(c, err, "updateWaypoint")
	}
	return utils.MutationSuccessResponse(c, waypoint.DocumentID, newVersion)
}
