// image.go
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
	"gorm.io/datatypes"
)

// ImageHandler handles image document routes
type ImageHandler struct {
	Service *services.DocumentService
}

type imageLocalePayload struct {
	Version     types.FlexUint64 `json:"version"`
	Culture     string           `json:"culture"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

type imagePayload struct {
	DocumentID types.FlexUint64                   `json:"document_id"`
	Version    types.FlexUint64                   `json:"version"`
	Filename   string                             `json:"filename"`
	Width      *int32                             `json:"width"`
	Height     *int32                             `json:"height"`
	Exif       datatypes.JSON                     `json:"exif"`
	Locales    types.FlexList[imageLocalePayload] `json:"locales"`
	Geometry   *geometryPayload                   `json:"geometry"`
}

type imageEditBody struct {
	Message  string       `json:"message"`
	Document imagePayload `json:"document"`
}

func (p *imagePayload) toModel() (*models.Image, error) {
	if p.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}

	cultures := make([]string, len(p.Locales))
	for i := range p.Locales {
		cultures[i] = p.Locales[i].Culture
	}
	if err := checkCultures(cultures); err != nil {
		return nil, err
	}

	image := &models.Image{
		DocumentID: p.DocumentID.Uint64(),
		Version:    p.Version.Uint64(),
		ImageFigures: models.ImageFigures{
			Filename: p.Filename,
			Width:    p.Width,
			Height:   p.Height,
			Exif:     p.Exif,
		},
	}

	for _, lp := range p.Locales {
		image.Locales = append(image.Locales, models.ImageLocale{
			Version: lp.Version.Uint64(),
			Culture: lp.Culture,
			LocaleFields: models.LocaleFields{
				Title:       lp.Title,
				Description: lp.Description,
			},
		})
	}

	geometry, err := p.Geometry.toGeometry()
	if err != nil {
		return nil, err
	}
	image.Geometry = geometry

	return image, nil
}

// ListImages handles GET /api/documents/images
// @Summary List images
// @Description Get all live image documents with locales and geometry
// @Tags Images
// @Accept json
// @Produce json
// @Success 200 {array} models.Image
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/images [get]
func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	result, err := h.Service.List()
	if err != nil {
		return serviceErrorResponse(c, err, "listImages")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetImage handles GET /api/documents/images/:id
// @Summary Get image
// @Description Get a live image document, optionally restricted to one language
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {object} models.Image
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/images/{id} [get]
func (h *ImageHandler) GetImage(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	result, err := h.Service.Get(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getImage")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// GetImageHistory handles GET /api/documents/images/:id/history
// @Summary Get image history
// @Description Get the version timeline of an image, optionally for one language
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param l query string false "Culture filter"
// @Success 200 {array} models.DocumentVersion
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/images/{id}/history [get]
func (h *ImageHandler) GetImageHistory(c *fiber.Ctx) error {
	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	versions, err := h.Service.History(docID, cultureParam(c))
	if err != nil {
		return serviceErrorResponse(c, err, "getImageHistory")
	}
	return utils.SuccessResponse(c, versions, fiber.StatusOK)
}

// CreateImage handles POST /api/documents/images
// @Summary Create image
// @Description Create a new image document with at least one locale
// @Tags Images
// @Accept json
// @Produce json
// @Param body body imageEditBody true "Image submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/images [post]
func (h *ImageHandler) CreateImage(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	var body imageEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}
	if len(body.Document.Locales) == 0 {
		return utils.ErrorResponse(c, "At least one locale is required", fiber.StatusBadRequest, "documents.validation.input")
	}

	image, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	if err := h.Service.Create(image, userID); err != nil {
		return serviceErrorResponse(c, err, "createImage")
	}
	return utils.MutationSuccessResponse(c, image.DocumentID, image.Version)
}

// UpdateImage handles PUT /api/documents/images/:id
// @Summary Update image
// @Description Apply an edit to an image; unchanged submissions are a no-op
// @Tags Images
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body imageEditBody true "Image submission"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /documents/images/{id} [put]
func (h *ImageHandler) UpdateImage(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "documents.authorization.contributor")
	}

	docID, err := parseDocID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}

	var body imageEditBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "documents.validation.input")
	}

	image, err := body.Document.toModel()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "documents.validation.input")
	}
	// The path is authoritative for identity
	image.DocumentID = docID

	newVersion, err := h.Service.Update(image, body.Message, userID)
	if err != nil {
		return serviceErrorResponse(c, err, "updateImage")
	}
	return utils.MutationSuccessResponse(c, image.DocumentID, newVersion)
}
