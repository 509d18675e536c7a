package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-03-01", want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2026-03-01T10:30:00Z", want: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{in: "2026-03-01T10:30:00+02:00", want: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)},
		{in: "next tuesday", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDueDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDueDate_JSON(t *testing.T) {
	var d DueDate
	if err := json.Unmarshal([]byte(`"2026-03-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-03-01T00:00:00Z"` {
		t.Fatalf("got %s", b)
	}

	if err := json.Unmarshal([]byte(`20260301`), &d); err == nil {
		t.Fatalf("expected error for a non-string due date")
	}
}
