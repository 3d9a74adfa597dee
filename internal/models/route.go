package models

import (
	"time"
)

// RouteFigures holds the document-level attributes of a route, embedded by
// the live row and the archive row.
type RouteFigures struct {
	Activity string `gorm:"type:varchar(24);not null" json:"activity"`
	Height   *int32 `json:"height,omitempty"`
}

// Equal reports exact field-by-field equality.
func (f RouteFigures) Equal(o RouteFigures) bool {
	return f.Activity == o.Activity &&
		eqInt32Ptr(f.Height, o.Height)
}

// Route is the live, mutable row of a route document.
type Route struct {
	DocumentID uint64 `gorm:"primaryKey;autoIncrement" json:"document_id"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	RouteFigures
	Locales   []RouteLocale     `gorm:"foreignKey:DocumentID" json:"locales"`
	Geometry  *DocumentGeometry `gorm:"polymorphic:Document;polymorphicValue:r" json:"geometry,omitempty"`
	CreatedAt time.Time         `json:"-"`
	UpdatedAt time.Time         `json:"-"`
}

// TableName overrides the table name for Route
func (Route) TableName() string {
	return "routes"
}

func (r *Route) DocID() uint64 { return r.DocumentID }
func (r *Route) DocType() string { return TypeRoute }
func (r *Route) DocVersion() uint64 { return r.Version }
func (r *Route) SetDocVersion(v uint64) { r.Version = v }

func (r *Route) FiguresEqual(other Doc) bool {
	o, ok := other.(*Route)
	return ok && r.RouteFigures.Equal(o.RouteFigures)
}

func (r *Route) ApplyFigures(other Doc) {
	if o, ok := other.(*Route); ok {
		r.RouteFigures = o.RouteFigures
	}
}

func (r *Route) ToArchive() Archive {
	return &ArchiveRoute{
		DocumentID:   r.DocumentID,
		Version:      r.Version,
		RouteFigures: r.RouteFigures,
	}
}

func (r *Route) DocLocales() []Loc {
	locales := make([]Loc, len(r.Locales))
	for i := range r.Locales {
		locales[i] = &r.Locales[i]
	}
	return locales
}

func (r *Route) GetLocale(culture string) Loc {
	for i := range r.Locales {
		if r.Locales[i].Culture == culture {
			return &r.Locales[i]
		}
	}
	return nil
}

func (r *Route) AppendLocale(l Loc) {
	if locale, ok := l.(*RouteLocale); ok {
		r.Locales = append(r.Locales, *locale)
	}
}

func (r *Route) DocGeometry() *DocumentGeometry { return r.Geometry }
func (r *Route) SetDocGeometry(g *DocumentGeometry) { r.Geometry = g }

func (r *Route) ResetIdentity() {
	r.DocumentID = 0
	r.Version = 1
}

// ArchiveRoute is the append-only snapshot twin of Route.
type ArchiveRoute struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	RouteFigures
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveRoute
func (ArchiveRoute) TableName() string {
	return "routes_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveRoute) ArchiveID() uint64 {
	return a.ID
}

// RouteLocaleFields holds the route-specific locale text.
type RouteLocaleFields struct {
	Gear string `gorm:"size:255" json:"gear,omitempty"`
}

// RouteLocale is the language-scoped content of a route.
type RouteLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint64 `gorm:"not null;index:,unique,composite:document_culture" json:"-"`
	Version    uint64 `gorm:"not null;default:1" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null;index:,unique,composite:document_culture" json:"culture"`
	LocaleFields
	RouteLocaleFields
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name for RouteLocale
func (RouteLocale) TableName() string {
	return "routes_locales"
}

func (l *RouteLocale) LocaleID() uint64 { return l.ID }
func (l *RouteLocale) LocaleVersion() uint64 { return l.Version }
func (l *RouteLocale) SetLocaleVersion(v uint64) { l.Version = v }
func (l *RouteLocale) LocaleCulture() string { return l.Culture }
func (l *RouteLocale) SetDocumentID(id uint64) { l.DocumentID = id }

func (l *RouteLocale) FieldsEqual(other Loc) bool {
	o, ok := other.(*RouteLocale)
	return ok && l.LocaleFields.Equal(o.LocaleFields) &&
		l.RouteLocaleFields == o.RouteLocaleFields
}

func (l *RouteLocale) ApplyFields(other Loc) {
	if o, ok := other.(*RouteLocale); ok {
		l.LocaleFields = o.LocaleFields
		l.RouteLocaleFields = o.RouteLocaleFields
	}
}

func (l *RouteLocale) ToArchive() Archive {
	return &ArchiveRouteLocale{
		LocaleID:          l.ID,
		DocumentID:        l.DocumentID,
		Version:           l.Version,
		Culture:           l.Culture,
		LocaleFields:      l.LocaleFields,
		RouteLocaleFields: l.RouteLocaleFields,
	}
}

func (l *RouteLocale) ResetIdentity() {
	l.ID = 0
	l.Version = 1
	l.DocumentID = 0
}

// ArchiveRouteLocale is the append-only snapshot twin of RouteLocale.
type ArchiveRouteLocale struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	LocaleID   uint64 `gorm:"not null;index" json:"locale_id"`
	DocumentID uint64 `gorm:"not null;index" json:"document_id"`
	Version    uint64 `gorm:"not null" json:"version"`
	Culture    string `gorm:"type:varchar(7);not null" json:"culture"`
	LocaleFields
	RouteLocaleFields
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for ArchiveRouteLocale
func (ArchiveRouteLocale) TableName() string {
	return "routes_locales_archives"
}

// ArchiveID implements Archive.
func (a *ArchiveRouteLocale) ArchiveID() uint64 {
	return a.ID
}
