package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain"
)

type patch struct {
	Name        domain.Optional[string] `json:"name"`
	Description domain.Optional[string] `json:"description"`
	Count       domain.Optional[int64]  `json:"count"`
}

func TestOptional_AbsentNullAndValue(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"name":"inbox","description":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Name.Set || p.Name.Null || p.Name.Value != "inbox" {
		t.Fatalf("name: got %+v", p.Name)
	}
	if !p.Name.Present() {
		t.Fatalf("name should be present")
	}

	if !p.Description.Set || !p.Description.Null {
		t.Fatalf("description should be set to null, got %+v", p.Description)
	}
	if p.Description.Ptr() != nil {
		t.Fatalf("null field should give a nil pointer")
	}

	if p.Count.Set || p.Count.Null {
		t.Fatalf("absent field should be unset, got %+v", p.Count)
	}
}

func TestOptional_TypeMismatch(t *testing.T) {
	var p patch
	if err := json.Unmarshal([]byte(`{"count":"seven"}`), &p); err == nil {
		t.Fatalf("expected a type error")
	}
}

func TestOptional_Marshal(t *testing.T) {
	b, err := json.Marshal(patch{Name: domain.Some("x"), Description: domain.Null[string]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"name":"x","description":null,"count":null}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
