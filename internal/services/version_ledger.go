// version_ledger.go
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
	"sort"
	"time"

	"github.com/topoguide/topoguide/internal/models"
	"gorm.io/gorm"
)

// InitialVersionComment is recorded in the history metadata of the
// bootstrap version rows created alongside a new document.
const InitialVersionComment = "Creation of the document"

// CreateInitialVersions bootstraps the version ledger for a freshly
// created document: one version row per locale, all referencing the same
// new document archive and (when a geometry exists) the same new geometry
// archive, each with its own locale archive.
func CreateInitialVersions(tx *gorm.DB, doc models.Doc, userID string) error {
	meta := models.HistoryMetadata{
		UserID:    userID,
		Comment:   InitialVersionComment,
		WrittenAt: time.Now().UTC(),
	}
	if err := tx.Create(&meta).Error; err != nil {
		return fmt.Errorf("failed to create history metadata: %w", err)
	}

	docArchive := doc.ToArchive()
	if err := tx.Create(docArchive).Error; err != nil {
		return fmt.Errorf("failed to archive document: %w", err)
	}

	var geometryArchiveID *uint64
	if geometry := doc.DocGeometry(); geometry != nil {
		archive := geometry.ToArchive()
		if err := tx.Create(archive).Error; err != nil {
			return fmt.Errorf("failed to archive geometry: %w", err)
		}
		id := archive.ArchiveID()
		geometryArchiveID = &id
	}

	for _, locale := range doc.DocLocales() {
		localeArchive := locale.ToArchive()
		if err := tx.Create(localeArchive).Error; err != nil {
			return fmt.Errorf("failed to archive locale %s: %w", locale.LocaleCulture(), err)
		}

		version := models.DocumentVersion{
			DocumentType:              doc.DocType(),
			DocumentID:                doc.DocID(),
			Culture:                   locale.LocaleCulture(),
			DocumentArchiveID:         docArchive.ArchiveID(),
			DocumentLocaleArchiveID:   localeArchive.ArchiveID(),
			DocumentGeometryArchiveID: geometryArchiveID,
			HistoryMetadataID:         meta.ID,
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to create version for %s: %w", locale.LocaleCulture(), err)
		}
	}

	return nil
}

// RecordEdit appends version rows for an edit that changed at least one
// sub-object. One version row is written per affected culture: every
// culture whose own locale changed, plus all cultures of the document when
// the document attributes or the geometry changed, since those changes are
// visible in every language. Exactly one archive row is created per
// changed sub-object; unchanged sub-objects inherit the archive reference
// of the previous version row of the same culture.
func RecordEdit(tx *gorm.DB, doc models.Doc, outcome *EditOutcome, comment, userID string) error {
	cultures := affectedCultures(doc, outcome)
	if len(cultures) == 0 {
		return nil
	}

	meta := models.HistoryMetadata{
		UserID:    userID,
		Comment:   comment,
		WrittenAt: time.Now().UTC(),
	}
	if err := tx.Create(&meta).Error; err != nil {
		return fmt.Errorf("failed to create history metadata: %w", err)
	}

	var docArchiveID uint64
	if outcome.FiguresChanged {
		archive := doc.ToArchive()
		if err := tx.Create(archive).Error; err != nil {
			return fmt.Errorf("failed to archive document: %w", err)
		}
		docArchiveID = archive.ArchiveID()
	}

	var geometryArchiveID *uint64
	if outcome.GeometryChanged {
		archive := doc.DocGeometry().ToArchive()
		if err := tx.Create(archive).Error; err != nil {
			return fmt.Errorf("failed to archive geometry: %w", err)
		}
		id := archive.ArchiveID()
		geometryArchiveID = &id
	}

	for _, culture := range cultures {
		prev, err := latestVersionRow(tx, doc.DocType(), doc.DocID(), culture)
		if err != nil {
			return err
		}
		// A locale added in this edit has no timeline yet; inherit the
		// unchanged archive references from the newest row of any culture.
		inherit := prev
		if inherit == nil {
			if inherit, err = latestVersionRow(tx, doc.DocType(), doc.DocID(), ""); err != nil {
				return err
			}
		}

		version := models.DocumentVersion{
			DocumentType:      doc.DocType(),
			DocumentID:        doc.DocID(),
			Culture:           culture,
			HistoryMetadataID: meta.ID,
		}

		if outcome.FiguresChanged {
			version.DocumentArchiveID = docArchiveID
		} else if inherit != nil {
			version.DocumentArchiveID = inherit.DocumentArchiveID
		}

		if outcome.ChangedCultures[culture] {
			localeArchive := doc.GetLocale(culture).ToArchive()
			if err := tx.Create(localeArchive).Error; err != nil {
				return fmt.Errorf("failed to archive locale %s: %w", culture, err)
			}
			version.DocumentLocaleArchiveID = localeArchive.ArchiveID()
		} else if prev != nil {
			version.DocumentLocaleArchiveID = prev.DocumentLocaleArchiveID
		}

		if outcome.GeometryChanged {
			version.DocumentGeometryArchiveID = geometryArchiveID
		} else if inherit != nil {
			version.DocumentGeometryArchiveID = inherit.DocumentGeometryArchiveID
		}

		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to create version for %s: %w", culture, err)
		}
	}

	return nil
}

// affectedCultures computes, sorted for determinism, the set of cultures
// that receive a version row for this edit.
func affectedCultures(doc models.Doc, outcome *EditOutcome) []string {
	set := make(map[string]struct{})
	if outcome.FiguresChanged || outcome.GeometryChanged {
		for _, locale := range doc.DocLocales() {
			set[locale.LocaleCulture()] = struct{}{}
		}
	}
	for culture := range outcome.ChangedCultures {
		set[culture] = struct{}{}
	}

	cultures := make([]string, 0, len(set))
	for culture := range set {
		cultures = append(cultures, culture)
	}
	sort.Strings(cultures)
	return cultures
}

// latestVersionRow returns the newest ledger row for the document,
// restricted to one culture when given, or nil when no row exists yet.
func latestVersionRow(tx *gorm.DB, docType string, docID uint64, culture string) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	query := tx.Where("document_type = ? AND document_id = ?", docType, docID)
	if culture != "" {
		query = query.Where("culture = ?", culture)
	}
	err := query.Order("id DESC").First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}
