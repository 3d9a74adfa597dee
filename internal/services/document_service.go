// document_service.go
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

package services

import (
	"errors"
	"fmt"

	"github.com/topoguide/topoguide/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DocumentService runs the versioned document operations for one document
// kind. The kind is fixed at construction; handlers own one service per
// route group.
type DocumentService struct {
	db      *gorm.DB
	kind    string
	newDoc  func() models.Doc
	newList func() any
}

// NewWaypointService creates the service for waypoint documents.
func NewWaypointService(db *gorm.DB) *DocumentService {
	return &DocumentService{
		db:      db,
		kind:    models.TypeWaypoint,
		newDoc:  func() models.Doc { return &models.Waypoint{} },
		newList: func() any { return &[]models.Waypoint{} },
	}
}

// NewRouteService creates the service for route documents.
func NewRouteService(db *gorm.DB) *DocumentService {
	return &DocumentService{
		db:      db,
		kind:    models.TypeRoute,
		newDoc:  func() models.Doc { return &models.Route{} },
		newList: func() any { return &[]models.Route{} },
	}
}

// NewImageService creates the service for image documents.
func NewImageService(db *gorm.DB) *DocumentService {
	return &DocumentService{
		db:      db,
		kind:    models.TypeImage,
		newDoc:  func() models.Doc { return &models.Image{} },
		newList: func() any { return &[]models.Image{} },
	}
}

// Kind returns the single-letter document type the service operates on.
func (s *DocumentService) Kind() string {
	return s.kind
}

// Create persists a new document with its locales and optional geometry,
// then bootstraps the version ledger. Any id or version the client put in
// the submission is discarded; the database assigns fresh identity.
func (s *DocumentService) Create(doc models.Doc, userID string) error {
	doc.ResetIdentity()
	for _, locale := range doc.DocLocales() {
		locale.ResetIdentity()
	}
	if geometry := doc.DocGeometry(); geometry != nil {
		geometry.ID = 0
		geometry.DocumentID = 0
		geometry.DocumentType = s.kind
		geometry.Version = 1
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return CreateInitialVersions(tx, doc, userID)
	})
}

// Get loads the live document with its geometry and locales. A non-empty
// culture restricts the loaded locales to that language; the document
// itself is returned even when no locale matches.
func (s *DocumentService) Get(docID uint64, culture string) (models.Doc, error) {
	doc := s.newDoc()

	query := s.db.Preload("Geometry")
	if culture != "" {
		query = query.Preload("Locales", "culture = ?", culture)
	} else {
		query = query.Preload("Locales")
	}

	err := query.First(doc, docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List loads all live documents of the service's kind with their locales
// and geometries.
func (s *DocumentService) List() (any, error) {
	list := s.newList()
	err := s.db.Preload("Geometry").Preload("Locales").Find(list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Update applies an edit to the live document and, when anything actually
// changed, appends archives and version rows in the same transaction. An
// edit identical to live state is a no-op: no row of any table is written
// and no error is returned. The document version after the edit is
// returned, unchanged for no-ops and locale-only or geometry-only edits.
func (s *DocumentService) Update(submitted models.Doc, comment, userID string) (uint64, error) {
	var newVersion uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		live := s.newDoc()
		err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Geometry").Preload("Locales").
			First(live, submitted.DocID()).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		outcome, err := applyEdit(tx, live, submitted)
		if err != nil {
			return err
		}
		newVersion = live.DocVersion()
		if outcome.NoChange() {
			return nil
		}

		return RecordEdit(tx, live, outcome, comment, userID)
	})
	return newVersion, err
}

// History returns the version rows of a document oldest first, each with
// its history metadata. A non-empty culture restricts the timeline to that
// language. The document must exist even when the timeline filter matches
// nothing.
func (s *DocumentService) History(docID uint64, culture string) ([]models.DocumentVersion, error) {
	var exists int64
	if err := s.db.Model(s.newDoc()).Where("document_id = ?", docID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	query := s.db.Preload("HistoryMetadata").
		Where("document_type = ? AND document_id = ?", s.kind, docID)
	if culture != "" {
		query = query.Where("culture = ?", culture)
	}

	var versions []models.DocumentVersion
	if err := query.Order("id").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}
