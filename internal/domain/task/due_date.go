package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DueDate accepts either an RFC 3339 timestamp or a plain calendar date
// (as sent by HTML date inputs). Plain dates are taken as midnight UTC.
type DueDate time.Time

func (d DueDate) Time() time.Time {
	return time.Time(d).UTC()
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("due_date must be a string: %w", err)
	}

	t, err := ParseDueDate(raw)
	if err != nil {
		return err
	}
	*d = DueDate(t)
	return nil
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time().Format(time.RFC3339))
}

func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("due_date %q is not an RFC 3339 timestamp or YYYY-MM-DD date", raw)
}
