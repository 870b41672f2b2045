package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Leganyst/interview-slots/internal/model"
)

func fixedCapacity(n int) SeederOption {
	return WithCapacityFunc(func() int { return n })
}

func TestSeeder_GenerateDefaultCalendar(t *testing.T) {
	s := NewSeeder(DefaultSeedConfig(time.UTC), fixedCapacity(2))

	slots, err := s.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 7 дней × 11 часовых окон
	if len(slots) != 77 {
		t.Fatalf("slots = %d, want 77", len(slots))
	}

	first := slots[0]
	if first.Date != "01.10.2025(ср)" || first.Time != "10:00 - 11:00" {
		t.Fatalf("unexpected first slot labels: %q %q", first.Date, first.Time)
	}
	last := slots[len(slots)-1]
	if last.Date != "07.10.2025(вт)" || last.Time != "20:00 - 21:00" {
		t.Fatalf("unexpected last slot labels: %q %q", last.Date, last.Time)
	}
	for _, sl := range slots {
		if sl.Capacity != 2 || len(sl.Users) != 0 {
			t.Fatalf("unexpected slot: %+v", sl)
		}
		if sl.EndsAt.Sub(sl.StartsAt.Time) != time.Hour {
			t.Fatalf("slot %s is not one hour long", sl.ID)
		}
	}
}

func TestSeeder_DeterministicIDs(t *testing.T) {
	cfg := DefaultSeedConfig(time.UTC)
	a, err := NewSeeder(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := NewSeeder(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	ids := make(map[string]struct{}, len(a))
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("slot %d: id %s != %s", i, a[i].ID, b[i].ID)
		}
		ids[a[i].ID] = struct{}{}
	}
	if len(ids) != len(a) {
		t.Fatalf("ids are not unique")
	}
}

func TestSeeder_RandomCapacityWithinBounds(t *testing.T) {
	slots, err := NewSeeder(DefaultSeedConfig(time.UTC)).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, sl := range slots {
		if sl.Capacity < 0 || sl.Capacity > 3 {
			t.Fatalf("capacity %d out of [0,3]", sl.Capacity)
		}
	}
}

func TestSeeder_InvalidConfig(t *testing.T) {
	cfg := DefaultSeedConfig(time.UTC)
	cfg.Days = 0
	if _, err := NewSeeder(cfg).Generate(); err == nil {
		t.Fatalf("expected error for zero days")
	}

	cfg = DefaultSeedConfig(time.UTC)
	cfg.MaxCapacity = -1
	if _, err := NewSeeder(cfg).Generate(); err == nil {
		t.Fatalf("expected error for negative capacity")
	}

	cfg = DefaultSeedConfig(time.UTC)
	cfg.FirstHour, cfg.LastHour = 12, 10
	if _, err := NewSeeder(cfg).Generate(); err == nil {
		t.Fatalf("expected error for inverted hours")
	}
}

func TestEngine_SeedIsIdempotent(t *testing.T) {
	gw := &memGateway{}
	j := &recordingJournal{}
	e := newTestEngineWithOptions(t, gw, &testClock{now: testNow}, nil, WithJournal(j))

	seeder := NewSeeder(DefaultSeedConfig(time.UTC), fixedCapacity(1))
	n, err := e.Seed(context.Background(), seeder)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 77 {
		t.Fatalf("seeded %d slots, want 77", n)
	}
	if len(gw.stored(t).Slots) != 77 {
		t.Fatalf("seeded catalog was not persisted")
	}

	dates := e.ListDates()
	if len(dates) != 7 || dates[0] != "01.10.2025(ср)" {
		t.Fatalf("unexpected dates: %v", dates)
	}
	avail := e.ListAvailableSlots(dates[0])
	if _, err := e.Book(context.Background(), "u1", "Анна", avail[0].SlotID); err != nil {
		t.Fatalf("Book: %v", err)
	}
	before := e.Snapshot()

	n, err = e.Seed(context.Background(), NewSeeder(DefaultSeedConfig(time.UTC), fixedCapacity(3)))
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed created %d slots", n)
	}
	after := e.Snapshot()
	if len(after.Slots) != len(before.Slots) || after.Users["u1"].SlotID != avail[0].SlotID {
		t.Fatalf("second seed changed the catalog")
	}
	if after.Slots[avail[0].SlotID].Capacity != 1 {
		t.Fatalf("second seed overwrote capacity")
	}

	seeded := 0
	for _, ev := range j.events {
		if ev.EventType == model.EventTypeCatalogSeeded {
			seeded++
		}
	}
	if seeded != 1 {
		t.Fatalf("catalog_seeded events = %d, want 1", seeded)
	}
}

func TestEngine_SeedPersistenceFailure(t *testing.T) {
	gw := &memGateway{failNext: errors.New("read-only file system")}
	e := newTestEngineWithOptions(t, gw, &testClock{now: testNow}, nil)

	_, err := e.Seed(context.Background(), NewSeeder(DefaultSeedConfig(time.UTC)))
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(e.Snapshot().Slots) != 0 {
		t.Fatalf("failed seed left slots in memory")
	}
}
