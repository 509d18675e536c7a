package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := h.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if hash == "password123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if err := h.CheckPassword(hash, "password123"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}

	if err := h.CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	a, _ := h.HashPassword("same")
	b, _ := h.HashPassword("same")

	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestNewHasher_Cost(t *testing.T) {
	h, err := NewHasher(0)
	if err != nil {
		t.Fatalf("NewHasher(0) error: %v", err)
	}
	if h.Cost() != DefaultCost {
		t.Fatalf("got cost %d, want %d", h.Cost(), DefaultCost)
	}

	if _, err := NewHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error for cost above max")
	}
}
