package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestamp_LegacyFormats(t *testing.T) {
	var doc struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
		C Timestamp `json:"c"`
		D Timestamp `json:"d"`
	}
	raw := `{"a": "", "b": null, "c": "2025-10-01T10:00:00Z", "d": "2025-09-28T12:00:00.123456"}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !doc.A.IsZero() || !doc.B.IsZero() {
		t.Fatalf("empty values must decode to zero")
	}
	if !doc.C.Equal(time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("c = %v", doc.C)
	}
	want := time.Date(2025, 9, 28, 12, 0, 0, 123456000, time.Local)
	if !doc.D.Equal(want) || doc.D.Location() != time.UTC {
		t.Fatalf("d = %v, want %v in UTC", doc.D, want)
	}

	if err := json.Unmarshal([]byte(`{"a": "yesterday"}`), &doc); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestTimestamp_MarshalZero(t *testing.T) {
	out, err := json.Marshal(Catalog{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"users":null,"slots":null,"last_update":""}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestCatalog_CloneIsDeep(t *testing.T) {
	c := NewCatalog()
	c.Slots["A"] = &Slot{ID: "A", Capacity: 2, Users: []Occupant{{UserID: "u1"}}}
	c.Users["u1"] = Reservation{UserID: "u1", SlotID: "A"}

	cp := c.Clone()
	cp.Slots["A"].Users[0].Name = "changed"
	cp.Slots["A"].Capacity = 5
	delete(cp.Users, "u1")

	if c.Slots["A"].Users[0].Name != "" || c.Slots["A"].Capacity != 2 {
		t.Fatalf("clone shares slot state")
	}
	if _, ok := c.Users["u1"]; !ok {
		t.Fatalf("clone shares reservation map")
	}
}

func TestSlot_FreeCount(t *testing.T) {
	s := &Slot{Capacity: 1, Users: []Occupant{{UserID: "a"}, {UserID: "b"}}}
	if s.FreeCount() != 0 {
		t.Fatalf("free count must not go negative")
	}
	if !s.HasOccupant("b") || s.HasOccupant("c") {
		t.Fatalf("HasOccupant mismatch")
	}
}
