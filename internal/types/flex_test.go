package types

import (
	"encoding/json"
	"testing"
)

func TestFlexUint64(t *testing.T) {
	var v struct {
		ID FlexUint64 `json:"id"`
	}

	if err := json.Unmarshal([]byte(`{"id": 42}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal number: %v", err)
	}
	if v.ID.Uint64() != 42 {
		t.Errorf("Expected 42, got %d", v.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": "18446744073709551615"}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal string: %v", err)
	}
	if v.ID.Uint64() != 18446744073709551615 {
		t.Errorf("Expected max uint64, got %d", v.ID)
	}

	v.ID = 7
	if err := json.Unmarshal([]byte(`{"id": null}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal null: %v", err)
	}
	if v.ID != 7 {
		t.Errorf("Expected null to leave value unchanged, got %d", v.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": "abc"}`), &v); err == nil {
		t.Error("Expected error for non-numeric string")
	}
	if err := json.Unmarshal([]byte(`{"id": -1}`), &v); err == nil {
		t.Error("Expected error for negative number")
	}

	out, err := json.Marshal(FlexUint64(9000))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(out) != "9000" {
		t.Errorf("Expected 9000, got %s", out)
	}
}

func TestFlexList(t *testing.T) {
	type locale struct {
		Culture string `json:"culture"`
	}
	var v struct {
		Locales FlexList[locale] `json:"locales"`
	}

	if err := json.Unmarshal([]byte(`{"locales": [{"culture":"en"},{"culture":"fr"}]}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal array: %v", err)
	}
	if len(v.Locales) != 2 || v.Locales[1].Culture != "fr" {
		t.Errorf("Unexpected slice %+v", v.Locales)
	}

	// A bare object becomes a one-element slice
	if err := json.Unmarshal([]byte(`{"locales": {"culture":"de"}}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal object: %v", err)
	}
	if len(v.Locales) != 1 || v.Locales[0].Culture != "de" {
		t.Errorf("Unexpected slice %+v", v.Locales)
	}

	if err := json.Unmarshal([]byte(`{"locales": null}`), &v); err != nil {
		t.Fatalf("Failed to unmarshal null: %v", err)
	}
	if v.Locales.Slice() != nil {
		t.Errorf("Expected nil slice, got %+v", v.Locales)
	}
}
