// route.go
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

// RouteHandler handles route document routes
type RouteHandler struct {
	Service *services.DocumentService
}

type routeLocalePayload struct {
	Version     types.FlexUint64 `json:"version"`
	Culture     string           `json:"culture"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Gear        string           `json:"gear"`
}

type routePayload struct {
	DocumentID types.FlexUint64                   `json:"document_id"`
	Version    types.FlexUint64                   `json:"version"`
	Activity   string                             `json:"activity"`
	Height     *int32                             `json:"height"`
	Locales    types.FlexList[routeLocalePayload] `json:"locales"`
	Geometry   *geometryPayload                   `json:"geometry"`
}

type routeEditBody struct {
	Message  string       `json:"message"`
	Document routePayload `json:"document"`
}

func (p *routePayload) toModel() (*models.Route, error) {
	if !models.IsActivity(p.Activity) {
		return nil, fmt.Errorf("invalid activity %q", p.Activity)
	}

	cultures := make([]string, len(p.Locales))
	for i := range p.Locales {
		cultures[i] = p.Locales[i].Culture
	}
	if err := checkCultures(cultures); err != nil {
		return nil, err
	}

	route := &models.Route{
		DocumentID: p.DocumentID.Uint64(),
		Version:    p.Version.Uint64(),
		RouteFigures: models.RouteFigures{
			Activity: p.Activity,
			Height:   p.Height,
		},
	}

	for _, lp := range p.Locales {
		route.Locales = append(route.Locales, models.RouteLocale{
			Version: lp.Version.Uint64(),
			Culture: lp.Culture,
			LocaleFields: models.LocaleFields{
				Title:       lp.Title,
				Description: lp.Description,
			},
			RouteLocaleFields: models.RouteLocaleFields{
				Gear: lp.Gear,
			},
		})
	}

	geometry, err := p.Geometry.toGeometry()
	if err != nil {
		return nil, err
	}
	route.Geometry = geometry

	return route, nil
}

// ListRoutes handles GET /api/documents/routes
// @Summary List routes
// @Description Get all live route documents with locales and geometry
// @Tags Routes
// @Accept json
// @Produce json
// @Success 200 {array} models.Route
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/routes [get]
func (h *RouteHandler) ListRoutes(c *fiber.Ctx) error {
	result, err := h.Service.List()
	if err != nil {
		return serviceErrorResponse(c, err, "listRoutes")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetRoute handles GET /api/documents/routes/:id
// @Summary Get route
// @Description Get a live route document, optionally restricted to one language
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {object} models.Route
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/routes/{id} [get]
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	result, err := h.Service.Get(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getRoute")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetRouteHistory handles GET /api/documents/routes/:id/history
// @Summary Get route history
// @Description Get the version timeline of a route, optionally for one language
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {array} models.DocumentVersion
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/routes/{id}/history [get]
func (h *RouteHandler) GetRouteHistory(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	versions, err := h.Service.History(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getRouteHistory")
	}
	return utils.SuccessResponse(c, versions, fiber.StatusOK)
}

// CreateRoute handles POST /api/documents/routes
// @Summary Create route
// @Description Create a new route document with at least one locale
// @Tags Routes
// @Accept json
// @Produce json
// @Param body body routeEditBody true "Route submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/routes [post]
func (h *RouteHandler) CreateRoute(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	var body routeEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}
	if len(body.Document.Locales) == 0 {
		return utils.ErrorResponse(c, "At least one locale is required", fiber.StatusBadRequest, "documents.validation.input")
	}

	route, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	if err := h.Service.Create(route, userID); err != nil {
		return serviceErrorResponse(c, err, "createRoute")
	}
	return utils.MutationSuccessResponse(c, route.DocumentID, route.Version)
}

// UpdateRoute handles PUT /api/documents/routes/:id
// @Summary Update route
// @Description Apply an edit to a route; unchanged submissions are a no-op
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body routeEditBody true "Route submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/routes/{id} [put]
func (h *RouteHandler) UpdateRoute(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	var body routeEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	route, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}
	// The path is authoritative for identity
	route.DocumentID = docID

	newVersion, err := h.Service.Update(route, body.Message, userID)
	if err != nil {
		return serviceErrorResponse(c, err, "updateRoute")
	}
	return utils.MutationSuccessResponse(c, route.DocumentID, newVersion)
}
