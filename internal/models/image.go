package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImageFigures holds the document-level attributes of an image, embedded
// by the live row and the archive row. Exif carries free-form camera
// metadata as JSON.
type ImageFigures struct {
	Filename string         `gorm:"size:255;not null" json:"filename"`
	Width    *int32         `json:"width,omitempty"`
	Height   *int32         `json:"height,omitempty"`
	Exif     datatypes.JSON `json:"exif,omitempty"`
}

// Equal reports exact field-by-field equality. Exif compares raw JSON
// bytes, the same way property values are compared elsewhere.
func (f ImageFigures) Equal(o ImageFigures) bool {
	return f.Filename == o.Filename &&
		eqInt32Ptr(f.Width, o.Width) &&
		eqInt32Ptr(f.Height, o.Height) &&
		string(f.Exif) == string(o.Exif)
}

// Image is the live, mutable row of an image document.
type Image struct {
	DocumentID uint64 `gorm:"primaryKey;autoIncrement" json:"document_id"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	ImageFigures
	Locales   []ImageLocale     `gorm:"foreignKey:DocumentID" json:"locales"`
	Geometry  *DocumentGeometry `gorm:"polymorphic:Document;polymorphicValue:i" json:"geometry,omitempty"`
	CreatedAt time.Time         `json:"-"`
	UpdatedAt time.Time         `json:"-"`
}

// TableName overrides the table name for Image
func (Image) TableName() string {
	return "images"
}

func (m *Image) DocID() uint64 { return m.DocumentID }
func (m *Image) DocType() string { return TypeImage }
func (m *Image) DocVersion() uint64 { return m.Version }
func (m *Image) SetDocVersion(v uint64) { m.Version = v }

func (m *Image) FiguresEqual(other Doc) bool {
	o, ok := other.(*Image)
	return ok && m.ImageFigures.Equal(o.ImageFigures)
}

func (m *Image) ApplyFigures(other Doc) {
	if o, ok := other.(*Image); ok {
		m.ImageFigures = o.ImageFigures
	}
}

func (m *Image) ToArchive() Archive {
	return &ArchiveImage{
		DocumentID:   m.DocumentID,
		Version:      m.Version,
		ImageFigures: m.ImageFigures,
	}
}

func (m *Image) DocLocales() []Loc {
	locales := make([]Loc, len(m.Locales))
	for i := range m.Locales {
		locales[i] = &m.Locales[i]
	}
	return locales
}

func (m *Image) GetLocale(culture string) Loc {
	for i := range m.Locales {
		if m.Locales[i].Culture == culture {
			return &m.Locales[i]
		}
	}
	return nil
}

func (m *Image) AppendLocale(l Loc) {
	if locale, ok := l.(*ImageLocale); ok {
		m.Locales = append(m.Locales, *locale)
	}
}

func (m *Image) DocGeometry() *DocumentGeometry { return m.Geometry }
func (m *Image) SetDocGeometry(g *DocumentGeometry) { m.Geometry = g }

func (m *Image) ResetIdentity() {
	m.DocumentID = 0
	m.Version = 1
}

// ArchiveImage is the append-only snapshot twin of Image.
type ArchiveImage struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	ImageFigures
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveImage
func (ArchiveImage) TableName() string {
	return "images_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveImage) ArchiveID() uint64 {
	return a.ID
}

// ImageLocale is the language-scoped content of an image. Images carry
// only the base locale fields.
type ImageLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index:,unique,composite:document_culture" json:"-"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null;index:,unique,composite:document_culture" json:"culture"`
	LocaleFields
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ImageLocale
func (ImageLocale) TableName() string {
	return "images_locales"
}

func (l *ImageLocale) LocaleID() uint64 { return l.ID }
func (l *ImageLocale) LocaleVersion() uint64 { return l.Version }
func (l *ImageLocale) SetLocaleVersion(v uint64) { l.Version = v }
func (l *ImageLocale) LocaleCulture() string { return l.Culture }
func (l *ImageLocale) SetDocumentID(id uint64) { l.DocumentID = id }

func (l *ImageLocale) FieldsEqual(other Loc) bool {
	o, ok := other.(*ImageLocale)
	return ok && l.LocaleFields.Equal(o.LocaleFields)
}

func (l *ImageLocale) ApplyFields(other Loc) {
	if o, ok := other.(*ImageLocale); ok {
		l.LocaleFields = o.LocaleFields
	}
}

func (l *ImageLocale) ToArchive() Archive {
	return &ArchiveImageLocale{
		LocaleID:     l.ID,
		DocumentID:   l.DocumentID,
		Version:      l.Version,
		Culture:      l.Culture,
		LocaleFields: l.LocaleFields,
	}
}

func (l *ImageLocale) ResetIdentity() {
	l.ID = 0
	l.Version = 1
	l.DocumentID = 0
}

// ArchiveImageLocale is the append-only snapshot twin of ImageLocale.
type ArchiveImageLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	LocaleID   uint64 `gorm:"not null;index" json:"locale_id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null" json:"culture"`
	LocaleFields
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveImageLocale
func (ArchiveImageLocale) TableName() string {
	return "images_locales_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveImageLocale) ArchiveID() uint64 {
	return a.ID
}
