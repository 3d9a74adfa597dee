package models

import (
	"time"
)

// Document type discriminators, stored on ledger and geometry rows.
const (
	TypeWaypoint = "w"
	TypeRoute    = "r"
	TypeImage    = "i"
)

// Doc is the contract every live document kind (Waypoint, Route, Image)
// fulfils so the document service and update engine stay kind-agnostic.
// A live document owns its locales and an optional geometry; archive rows
// are produced through ToArchive and are never mutated afterwards.
type Doc interface {
	DocID() uint64
	DocType() string
	DocVersion() uint64
	SetDocVersion(v uint64)

	// FiguresEqual reports whether the document-level attributes of the
	// receiver and other are identical, field by field. Returns false when
	// other is a different document kind.
	FiguresEqual(other Doc) bool
	// ApplyFigures copies the document-level attributes of other onto the
	// receiver. It never touches identity, version, locales or geometry.
	ApplyFigures(other Doc)

	// ToArchive returns a fresh archive row holding a value copy of the
	// document attributes at the current version.
	ToArchive() Archive

	DocLocales() []Loc
	// GetLocale returns the locale with the given culture, or nil.
	GetLocale(culture string) Loc
	AppendLocale(l Loc)

	DocGeometry() *DocumentGeometry
	SetDocGeometry(g *DocumentGeometry)

	// ResetIdentity discards any client-submitted identity: primary key set
	// to zero, version set to 1. Used on create.
	ResetIdentity()
}

// Loc is the locale counterpart of Doc.
type Loc interface {
	LocaleID() uint64
	LocaleVersion() uint64
	SetLocaleVersion(v uint64)
	LocaleCulture() string
	SetDocumentID(id uint64)

	FieldsEqual(other Loc) bool
	ApplyFields(other Loc)
	ToArchive() Archive
	ResetIdentity()
}

// Archive is implemented by every archive row. ArchiveID is only valid
// after the row has been inserted.
type Archive interface {
	ArchiveID() uint64
}

// DocumentGeometry is the spatial footprint of a document. It is shared by
// all document kinds, hence the (document_type, document_id) owner key.
// Geom may be null; a document can gain a geometry later in life.
type DocumentGeometry struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentType string    `gorm:"type:char(1);not null;index:,unique,composite:document_owner" json:"-"`
	DocumentID   uint64    `gorm:"not null;index:,unique,composite:document_owner" json:"-"`
	Version      uint64    `gorm:"not null;default:1" json:"version"`
	Geom         Geometry  `json:"geom"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName overrides the table name for DocumentGeometry
func (DocumentGeometry) TableName() string {
	return "documents_geometries"
}

// ToArchive returns an immutable snapshot of the geometry row.
func (g *DocumentGeometry) ToArchive() *ArchiveDocumentGeometry {
	return &ArchiveDocumentGeometry{
		GeometryID:   g.ID,
		DocumentType: g.DocumentType,
		DocumentID:   g.DocumentID,
		Version:      g.Version,
		Geom:         g.Geom,
	}
}

// ArchiveDocumentGeometry is the append-only snapshot twin of
// DocumentGeometry.
type ArchiveDocumentGeometry struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	GeometryID   uint64    `gorm:"not null;index" json:"geometry_id"`
	DocumentType string    `gorm:"type:char(1);not null" json:"-"`
	DocumentID   uint64    `gorm:"not null;index" json:"document_id"`
	Version      uint64    `gorm:"not null" json:"version"`
	Geom         Geometry  `json:"geom"`
	CreatedAt    time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveDocumentGeometry
func (ArchiveDocumentGeometry) TableName() string {
	return "documents_geometries_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveDocumentGeometry) ArchiveID() uint64 {
	return a.ID
}

// HistoryMetadata records who made an edit, when, and why. One row is
// shared by all version rows produced by the same edit transaction.
type HistoryMetadata struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:char(36)" json:"user_id"`
	Comment   string    `gorm:"size:255" json:"comment"`
	WrittenAt time.Time `gorm:"not null" json:"written_at"`
}

// TableName overrides the table name for HistoryMetadata
func (HistoryMetadata) TableName() string {
	return "history_metadata"
}

// DocumentVersion is one entry of the per-language version ledger. Each row
// ties together the archive snapshots of the document attributes, one
// locale and the geometry that were current after a given edit. Snapshot
// references may be inherited from the previous version row of the same
// culture when the corresponding sub-object did not change in that edit.
//
// Rows for a given (document_type, document_id, culture) form the history
// timeline of that language, ordered by id. Rows are never updated or
// deleted.
type DocumentVersion struct {
	ID                        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentType              string          `gorm:"type:char(1);not null;index:idx_documents_versions_timeline" json:"-"`
	DocumentID                uint64          `gorm:"not null;index:idx_documents_versions_timeline" json:"document_id"`
	Culture                   string          `gorm:"type:varchar(7);not null;index:idx_documents_versions_timeline" json:"culture"`
	DocumentArchiveID         uint64          `gorm:"not null" json:"document_archive_id"`
	DocumentLocaleArchiveID   uint64          `gorm:"not null" json:"document_locale_archive_id"`
	DocumentGeometryArchiveID *uint64         `json:"document_geometry_archive_id,omitempty"`
	HistoryMetadataID         uint64          `gorm:"not null" json:"-"`
	HistoryMetadata           HistoryMetadata `gorm:"foreignKey:HistoryMetadataID" json:"history_metadata"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// TableName overrides the table name for DocumentVersion
func (DocumentVersion) TableName() string {
	return "documents_versions"
}

// LocaleFields is the language-scoped text content shared by every document
// kind, embedded by both the live locale and its archive twin.
type LocaleFields struct {
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Equal reports field-by-field equality. Values are compared exactly, no
// trimming or normalization.
func (f LocaleFields) Equal(o LocaleFields) bool {
	return f == o
}

func eqStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt32Ptr(a, b *int32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
