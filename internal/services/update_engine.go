// update_engine.go
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
)

// ErrNotFound signals a referenced document that does not exist.
var ErrNotFound = errors.New("not found")

// Sub-object names reported on a version conflict.
const (
	FieldDocument = "document"
	FieldLocale   = "locale"
	FieldGeometry = "geometry"
)

// StaleVersionError rejects an edit whose submitted version for one
// sub-object disagrees with live state. The whole edit transaction rolls
// back; no partial archive or version rows survive.
type StaleVersionError struct {
	Field   string
	Culture string
}

func (e *StaleVersionError) Error() string {
	if e.Culture != "" {
		return fmt.Sprintf("E_VERSION - stale %s version for culture %q", e.Field, e.Culture)
	}
	return fmt.Sprintf("E_VERSION - stale %s version", e.Field)
}

// EditOutcome summarizes which sub-objects an edit actually changed.
type EditOutcome struct {
	FiguresChanged  bool
	GeometryChanged bool
	// ChangedCultures marks every locale whose own fields changed in this
	// edit, including locales first seen in it.
	ChangedCultures map[string]bool
}

// NoChange reports whether the edit left every sub-object untouched.
func (o *EditOutcome) NoChange() bool {
	return !o.FiguresChanged && !o.GeometryChanged && len(o.ChangedCultures) == 0
}

// applyEdit diffs the submitted document against the live one and applies
// exactly the mutations the submission calls for, bumping the version
// counter of each sub-object it touches. Any stale submitted version
// aborts before mutation of that sub-object; the caller's transaction
// rollback discards whatever was already applied.
//
// Locales present on the live document but absent from the submission are
// left untouched; omission is not deletion.
func applyEdit(tx *gorm.DB, live, submitted models.Doc) (*EditOutcome, error) {
	if submitted.DocVersion() != live.DocVersion() {
		return nil, &StaleVersionError{Field: FieldDocument}
	}

	outcome := &EditOutcome{ChangedCultures: make(map[string]bool)}

	if !live.FiguresEqual(submitted) {
		prev := live.DocVersion()
		live.ApplyFigures(submitted)
		live.SetDocVersion(prev + 1)

		result := tx.Model(live).Select("*").Omit(clause.Associations).
			Where("version = ?", prev).Updates(live)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, &StaleVersionError{Field: FieldDocument}
		}
		outcome.FiguresChanged = true
	}

	for _, submittedLocale := range submitted.DocLocales() {
		culture := submittedLocale.LocaleCulture()
		liveLocale := live.GetLocale(culture)

		if liveLocale == nil {
			// First appearance of this culture: a new locale with fresh
			// identity, never reusing client-submitted id or version.
			submittedLocale.ResetIdentity()
			submittedLocale.SetDocumentID(live.DocID())
			if err := tx.Create(submittedLocale).Error; err != nil {
				return nil, fmt.Errorf("failed to create locale %s: %w", culture, err)
			}
			live.AppendLocale(submittedLocale)
			outcome.ChangedCultures[culture] = true
			continue
		}

		if v := submittedLocale.LocaleVersion(); v != 0 && v != liveLocale.LocaleVersion() {
			return nil, &StaleVersionError{Field: FieldLocale, Culture: culture}
		}

		if !liveLocale.FieldsEqual(submittedLocale) {
			prev := liveLocale.LocaleVersion()
			liveLocale.ApplyFields(submittedLocale)
			liveLocale.SetLocaleVersion(prev + 1)

			result := tx.Model(liveLocale).Select("*").Omit(clause.Associations).
				Where("version = ?", prev).Updates(liveLocale)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				return nil, &StaleVersionError{Field: FieldLocale, Culture: culture}
			}
			outcome.ChangedCultures[culture] = true
		}
	}

	if submittedGeometry := submitted.DocGeometry(); submittedGeometry != nil {
		liveGeometry := live.DocGeometry()

		if liveGeometry == nil {
			geometry := &models.DocumentGeometry{
				DocumentType: live.DocType(),
				DocumentID:   live.DocID(),
				Version:      1,
				Geom:         submittedGeometry.Geom,
			}
			if err := tx.Create(geometry).Error; err != nil {
				return nil, fmt.Errorf("failed to create geometry: %w", err)
			}
			live.SetDocGeometry(geometry)
			outcome.GeometryChanged = true
		} else {
			if v := submittedGeometry.Version; v != 0 && v != liveGeometry.Version {
				return nil, &StaleVersionError{Field: FieldGeometry}
			}

			if !liveGeometry.Geom.Equal(submittedGeometry.Geom) {
				prev := liveGeometry.Version
				liveGeometry.Geom = submittedGeometry.Geom
				liveGeometry.Version = prev + 1

				result := tx.Model(liveGeometry).Select("*").Omit(clause.Associations).
					Where("version = ?", prev).Updates(liveGeometry)
				if result.Error != nil {
					return nil, result.Error
				}
				if result.RowsAffected == 0 {
					return nil, &StaleVersionError{Field: FieldGeometry}
				}
				outcome.GeometryChanged = true
			}
		}
	}

	return outcome, nil
}
