package booking

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/interview-slots/internal/calendar"
	"github.com/Leganyst/interview-slots/internal/model"
)

// slotNamespace — пространство имён для uuid v5 идентификаторов слотов.
var slotNamespace = uuid.MustParse("6f1c2a9e-3b7d-4c55-9a0e-2d8f4b6c1e37")

// SeedConfig описывает статический календарь.
type SeedConfig struct {
	StartDate    time.Time
	Days         int
	FirstHour    int // начало первого окна
	LastHour     int // конец последнего окна
	SlotDuration time.Duration
	MaxCapacity  int
	Location     *time.Location
}

// DefaultSeedConfig — неделя с 1 октября 2025, окна по часу с 10:00 до 21:00, до 3 мест.
func DefaultSeedConfig(loc *time.Location) SeedConfig {
	if loc == nil {
		loc = time.UTC
	}
	return SeedConfig{
		StartDate:    time.Date(2025, time.October, 1, 0, 0, 0, 0, loc),
		Days:         7,
		FirstHour:    10,
		LastHour:     21,
		SlotDuration: time.Hour,
		MaxCapacity:  3,
		Location:     loc,
	}
}

type SeederOption func(*Seeder)

// WithCapacityFunc подменяет генератор вместимости (для тестов).
func WithCapacityFunc(f func() int) SeederOption {
	return func(s *Seeder) { s.capacity = f }
}

// Seeder генерирует каталог: даты × окна × случайная вместимость.
type Seeder struct {
	cfg      SeedConfig
	capacity func() int
}

func NewSeeder(cfg SeedConfig, opts ...SeederOption) *Seeder {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SlotDuration <= 0 {
		cfg.SlotDuration = time.Hour
	}
	s := &Seeder{cfg: cfg}
	s.capacity = func() int { return rand.Intn(s.cfg.MaxCapacity + 1) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlotID детерминированно выводит идентификатор слота из его интервала.
func SlotID(tr calendar.TimeRange) string {
	key := tr.Start.UTC().Format(time.RFC3339) + "/" + tr.End.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(slotNamespace, []byte(key)).String()
}

// Generate строит полный набор слотов. Повторный вызов даёт те же идентификаторы.
func (s *Seeder) Generate() ([]*model.Slot, error) {
	if s.cfg.Days <= 0 {
		return nil, fmt.Errorf("seed: days must be positive, got %d", s.cfg.Days)
	}
	if s.cfg.MaxCapacity < 0 {
		return nil, fmt.Errorf("seed: max capacity must not be negative, got %d", s.cfg.MaxCapacity)
	}

	seen := make(map[string]struct{})
	var slots []*model.Slot

	for i := 0; i < s.cfg.Days; i++ {
		day := s.cfg.StartDate.In(s.cfg.Location).AddDate(0, 0, i)
		dayRange, err := calendar.DayRange(day, s.cfg.FirstHour, s.cfg.LastHour, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("seed: day %s: %w", day.Format("2006-01-02"), err)
		}
		windows, err := calendar.SplitToTimeSlots(dayRange, s.cfg.SlotDuration)
		if err != nil {
			return nil, fmt.Errorf("seed: day %s: %w", day.Format("2006-01-02"), err)
		}

		for _, w := range windows {
			id := SlotID(w)
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("seed: %w: %s", errDuplicateSlotID, id)
			}
			seen[id] = struct{}{}

			slots = append(slots, &model.Slot{
				ID:       id,
				Date:     calendar.DateLabel(w.Start),
				Time:     calendar.WindowLabel(w),
				StartsAt: model.NewTimestamp(w.Start),
				EndsAt:   model.NewTimestamp(w.End),
				Capacity: s.capacity(),
				Users:    []model.Occupant{},
			})
		}
	}

	return slots, nil
}
