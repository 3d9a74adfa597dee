package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Geometry is a nullable GeoJSON geometry column. The value is kept as an
// orb.Geometry in memory and serialized as canonical GeoJSON in the
// database and on the wire, so two geometries compare equal exactly when
// their canonical encodings match.
type Geometry struct {
	orb.Geometry
}

// GeometryFromGeoJSON decodes a GeoJSON geometry object.
func GeometryFromGeoJSON(data []byte) (Geometry, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return Geometry{}, fmt.Errorf("invalid geojson geometry: %w", err)
	}
	return Geometry{Geometry: g.Geometry()}, nil
}

// IsZero reports whether no geometry value is set.
func (g Geometry) IsZero() bool {
	return g.Geometry == nil
}

// Equal compares canonical GeoJSON encodings. Two unset geometries are
// equal; an unset geometry never equals a set one.
func (g Geometry) Equal(other Geometry) bool {
	if g.Geometry == nil || other.Geometry == nil {
		return g.Geometry == nil && other.Geometry == nil
	}
	a, err := g.MarshalJSON()
	if err != nil {
		return false
	}
	b, err := other.MarshalJSON()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// MarshalJSON implements the json.Marshaler interface.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.Geometry == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(g.Geometry).MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		g.Geometry = nil
		return nil
	}
	parsed, err := GeometryFromGeoJSON(data)
	if err != nil {
		return err
	}
	g.Geometry = parsed.Geometry
	return nil
}

// Value implements the driver.Valuer interface; unset geometries become
// SQL NULL.
func (g Geometry) Value() (driver.Value, error) {
	if g.Geometry == nil {
		return nil, nil
	}
	b, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (g *Geometry) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		g.Geometry = nil
		return nil
	case []byte:
		return g.UnmarshalJSON(v)
	case string:
		return g.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported geometry column type %T", value)
	}
}

// GormDataType gives gorm a column type at schema-parse time; without it
// the schema parser would recurse into the orb.Geometry interface.
func (Geometry) GormDataType() string {
	return "json"
}

// GormDBDataType ensures the correct data type is used for each database
// driver. MSSQL has no native json type, so fall back to NVARCHAR.
func (Geometry) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
