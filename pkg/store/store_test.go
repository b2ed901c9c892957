package store

import (
	"testing"
	"time"
)

func TestRecord_Clone(t *testing.T) {
	rec := Record{"id": "42", "name": "A"}
	clone := rec.Clone()

	clone["name"] = "B"
	if rec["name"] != "A" {
		t.Errorf("Clone mutated original: name = %v", rec["name"])
	}

	if Record(nil).Clone() != nil {
		t.Error("Clone of nil record should be nil")
	}
}

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"string id", Record{"id": "p-10"}, "p-10"},
		{"missing id", Record{"name": "x"}, ""},
		{"non-string id", Record{"id": 10}, ""},
		{"nil record", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_UpdatedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  any
		want   time.Time
		wantOK bool
	}{
		{"native time", now, now, true},
		{"rfc3339 string", "2025-06-01T12:00:00Z", now, true},
		{"rfc3339 with offset", "2025-06-01T14:00:00+02:00", now, true},
		{"iso without zone", "2025-06-01T12:00:00", now, true},
		{"iso with fraction", "2025-06-01T12:00:00.000000", now, true},
		{"garbage string", "yesterday-ish", time.Time{}, false},
		{"wrong type", 1717243200, time.Time{}, false},
		{"nil value", nil, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Record{"updatedAt": tt.value}.UpdatedAt()
			if ok != tt.wantOK {
				t.Fatalf("UpdatedAt() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("UpdatedAt() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := (Record{}).UpdatedAt(); ok {
		t.Error("UpdatedAt() on record without the field should report false")
	}
}
