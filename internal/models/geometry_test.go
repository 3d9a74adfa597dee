package models

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeometryFromGeoJSON(t *testing.T) {
	geom, err := GeometryFromGeoJSON([]byte(`{"type":"Point","coordinates":[6.8,45.4]}`))
	if err != nil {
		t.Fatalf("Failed to parse geometry: %v", err)
	}
	point, ok := geom.Geometry.(orb.Point)
	if !ok {
		t.Fatalf("Expected a point, got %T", geom.Geometry)
	}
	if point.Lon() != 6.8 || point.Lat() != 45.4 {
		t.Errorf("Unexpected coordinates %v", point)
	}

	if _, err := GeometryFromGeoJSON([]byte(`{"type":"Volcano"}`)); err == nil {
		t.Error("Expected error for unknown geometry type")
	}
	if _, err := GeometryFromGeoJSON([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed input")
	}
}

func TestGeometryEqual(t *testing.T) {
	a, _ := GeometryFromGeoJSON([]byte(`{"type":"Point","coordinates":[6.8,45.4]}`))
	b, _ := GeometryFromGeoJSON([]byte(`{"type":"Point","coordinates":[6.8,45.4]}`))
	c, _ := GeometryFromGeoJSON([]byte(`{"type":"Point","coordinates":[7.0,45.4]}`))

	if !a.Equal(b) {
		t.Error("Expected identical points to be equal")
	}
	if a.Equal(c) {
		t.Error("Expected different points to differ")
	}

	var unset Geometry
	if !unset.IsZero() {
		t.Error("Expected zero geometry to report IsZero")
	}
	if unset.Equal(a) || a.Equal(unset) {
		t.Error("Expected unset geometry to differ from a set one")
	}
	if !unset.Equal(Geometry{}) {
		t.Error("Expected two unset geometries to be equal")
	}
}

func TestGeometryJSONRoundTrip(t *testing.T) {
	original, _ := GeometryFromGeoJSON([]byte(`{"type":"LineString","coordinates":[[6.8,45.4],[6.9,45.5]]}`))

	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal geometry: %v", err)
	}

	var decoded Geometry
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal geometry: %v", err)
	}
	if !original.Equal(decoded) {
		t.Errorf("Round trip changed the geometry: %s", encoded)
	}

	// null stays unset
	if err := json.Unmarshal([]byte(`null`), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal null: %v", err)
	}
	if !decoded.IsZero() {
		t.Error("Expected null to decode as unset geometry")
	}
}

func TestGeometryGormDataType(t *testing.T) {
	// The schema parser needs a column type for the zero value; without it
	// migration of any geometry-bearing model fails.
	if got := (Geometry{}).GormDataType(); got != "json" {
		t.Errorf("Expected json, got %q", got)
	}
}

func TestGeometryScanValue(t *testing.T) {
	original, _ := GeometryFromGeoJSON([]byte(`{"type":"Point","coordinates":[6.8,45.4]}`))

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Failed to produce driver value: %v", err)
	}

	var scanned Geometry
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Failed to scan driver value: %v", err)
	}
	if !original.Equal(scanned) {
		t.Error("Scan did not restore the geometry")
	}

	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Failed to scan NULL: %v", err)
	}
	if !scanned.IsZero() {
		t.Error("Expected NULL to scan as unset geometry")
	}

	var unset Geometry
	value, err = unset.Value()
	if err != nil {
		t.Fatalf("Failed to produce driver value for unset geometry: %v", err)
	}
	if value != nil {
		t.Errorf("Expected SQL NULL for unset geometry, got %v", value)
	}

	if err := scanned.Scan(42); err == nil {
		t.Error("Expected error for unsupported column type")
	}
}
