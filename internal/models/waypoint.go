package models

import (
	"time"
)

// WaypointFigures holds the document-level attributes of a waypoint. The
// same field set is embedded by the live row and the archive row.
type WaypointFigures struct {
	WaypointType string `gorm:"type:varchar(16);not null" json:"waypoint_type"`
	Elevation    *int32 `json:"elevation,omitempty"`
}

// Equal reports exact field-by-field equality.
func (f WaypointFigures) Equal(o WaypointFigures) bool {
	return f.WaypointType == o.WaypointType &&
		eqInt32Ptr(f.Elevation, o.Elevation)
}

// Waypoint is the live, mutable row of a waypoint document.
type Waypoint struct {
	DocumentID uint64 `gorm:"primaryKey;autoIncrement" json:"document_id"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	WaypointFigures
	Locales   []WaypointLocale  `gorm:"foreignKey:DocumentID" json:"locales"`
	Geometry  *DocumentGeometry `gorm:"polymorphic:Document;polymorphicValue:w" json:"geometry,omitempty"`
	CreatedAt time.Time         `json:"-"`
	UpdatedAt time.Time         `json:"-"`
}

// TableName overrides the table name for Waypoint
func (Waypoint) TableName() string {
	return "waypoints"
}

func (w *Waypoint) DocID() uint64 { return w.DocumentID }
func (w *Waypoint) DocType() string { return TypeWaypoint }
func (w *Waypoint) DocVersion() uint64 { return w.Version }
func (w *Waypoint) SetDocVersion(v uint64) { w.Version = v }

func (w *Waypoint) FiguresEqual(other Doc) bool {
	o, ok := other.(*Waypoint)
	return ok && w.WaypointFigures.Equal(o.WaypointFigures)
}

func (w *Waypoint) ApplyFigures(other Doc) {
	if o, ok := other.(*Waypoint); ok {
		w.WaypointFigures = o.WaypointFigures
	}
}

func (w *Waypoint) ToArchive() Archive {
	return &ArchiveWaypoint{
		DocumentID:      w.DocumentID,
		Version:         w.Version,
		WaypointFigures: w.WaypointFigures,
	}
}

func (w *Waypoint) DocLocales() []Loc {
	locales := make([]Loc, len(w.Locales))
	for i := range w.Locales {
		locales[i] = &w.Locales[i]
	}
	return locales
}

func (w *Waypoint) GetLocale(culture string) Loc {
	for i := range w.Locales {
		if w.Locales[i].Culture == culture {
			return &w.Locales[i]
		}
	}
	return nil
}

func (w *Waypoint) AppendLocale(l Loc) {
	if locale, ok := l.(*WaypointLocale); ok {
		w.Locales = append(w.Locales, *locale)
	}
}

func (w *Waypoint) DocGeometry() *DocumentGeometry { return w.Geometry }
func (w *Waypoint) SetDocGeometry(g *DocumentGeometry) { w.Geometry = g }

func (w *Waypoint) ResetIdentity() {
	w.DocumentID = 0
	w.Version = 1
}

// ArchiveWaypoint is the append-only snapshot twin of Waypoint.
type ArchiveWaypoint struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	WaypointFigures
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveWaypoint
func (ArchiveWaypoint) TableName() string {
	return "waypoints_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveWaypoint) ArchiveID() uint64 {
	return a.ID
}

// WaypointLocaleFields holds the waypoint-specific locale text, shared by
// the live locale and its archive twin.
type WaypointLocaleFields struct {
	PedestrianAccess string `gorm:"size:255" json:"pedestrian_access,omitempty"`
}

// WaypointLocale is the language-scoped content of a waypoint.
type WaypointLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index:,unique,composite:document_culture" json:"-"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null;index:,unique,composite:document_culture" json:"culture"`
	LocaleFields
	WaypointLocaleFields
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name for WaypointLocale
func (WaypointLocale) TableName() string {
	return "waypoints_locales"
}

func (l *WaypointLocale) LocaleID() uint64 { return l.ID }
func (l *WaypointLocale) LocaleVersion() uint64 { return l.Version }
func (l *WaypointLocale) SetLocaleVersion(v uint64) { l.Version = v }
func (l *WaypointLocale) LocaleCulture() string { return l.Culture }
func (l *WaypointLocale) SetDocumentID(id uint64) { l.DocumentID = id }

func (l *WaypointLocale) FieldsEqual(other Loc) bool {
	o, ok := other.(*WaypointLocale)
	return ok && l.LocaleFields.Equal(o.LocaleFields) &&
		l.WaypointLocaleFields == o.WaypointLocaleFields
}

func (l *WaypointLocale) ApplyFields(other Loc) {
	if o, ok := other.(*WaypointLocale); ok {
		l.LocaleFields = o.LocaleFields
		l.WaypointLocaleFields = o.WaypointLocaleFields
	}
}

func (l *WaypointLocale) ToArchive() Archive {
	return &ArchiveWaypointLocale{
		LocaleID:             l.ID,
		DocumentID:           l.DocumentID,
		Version:              l.Version,
		Culture:              l.Culture,
		LocaleFields:         l.LocaleFields,
		WaypointLocaleFields: l.WaypointLocaleFields,
	}
}

func (l *WaypointLocale) ResetIdentity() {
	l.ID = 0
	l.Version = 1
	l.DocumentID = 0
}

// ArchiveWaypointLocale is the append-only snapshot twin of WaypointLocale.
type ArchiveWaypointLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	LocaleID   uint64 `gorm:"not null;index" json:"locale_id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null" json:"culture"`
	LocaleFields
	WaypointLocaleFields
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveWaypointLocale
func (ArchiveWaypointLocale) TableName() string {
	return "waypoints_locales_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveWaypointLocale) ArchiveID() uint64 {
	return a.ID
}
