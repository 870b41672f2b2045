package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/Leganyst/interview-slots/internal/model"
)

// Availability — слот с хотя бы одним свободным местом.
type Availability struct {
	SlotID    string
	DateLabel string
	TimeLabel string
	StartsAt  time.Time
	FreeCount int
}

// SlotStore работает со слотами каталога. Синхронизацию обеспечивает Engine.
type SlotStore struct {
	slots map[string]*model.Slot
}

func NewSlotStore(c *model.Catalog) *SlotStore {
	return &SlotStore{slots: c.Slots}
}

// Len возвращает количество слотов.
func (s *SlotStore) Len() int { return len(s.slots) }

// ListDates возвращает различные подписи дат в хронологическом порядке.
func (s *SlotStore) ListDates() []string {
	first := make(map[string]time.Time)
	for _, slot := range s.slots {
		at := slot.StartsAt.Time
		if cur, ok := first[slot.Date]; !ok || (!at.IsZero() && (cur.IsZero() || at.Before(cur))) {
			first[slot.Date] = at
		}
	}

	dates := make([]string, 0, len(first))
	for d := range first {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		ti, tj := first[dates[i]], first[dates[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return dates[i] < dates[j]
	})
	return dates
}

// ListAvailable возвращает слоты даты dateLabel со свободными местами, по возрастанию времени.
func (s *SlotStore) ListAvailable(dateLabel string) []Availability {
	var out []Availability
	for _, slot := range s.slots {
		if slot.Date != dateLabel {
			continue
		}
		free := slot.FreeCount()
		if free <= 0 {
			continue
		}
		out = append(out, Availability{
			SlotID:    slot.ID,
			DateLabel: slot.Date,
			TimeLabel: slot.Time,
			StartsAt:  slot.StartsAt.Time,
			FreeCount: free,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		if out[i].TimeLabel != out[j].TimeLabel {
			return out[i].TimeLabel < out[j].TimeLabel
		}
		return out[i].SlotID < out[j].SlotID
	})
	return out
}

// Get возвращает слот по идентификатору.
func (s *SlotStore) Get(slotID string) (*model.Slot, error) {
	slot, ok := s.slots[slotID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	return slot, nil
}

// Add регистрирует новый слот. Идентификатор обязан быть уникальным.
func (s *SlotStore) Add(slot *model.Slot) error {
	if _, ok := s.slots[slot.ID]; ok {
		return fmt.Errorf("%w: %s", errDuplicateSlotID, slot.ID)
	}
	if slot.Users == nil {
		slot.Users = []model.Occupant{}
	}
	s.slots[slot.ID] = slot
	return nil
}

// AddOccupant занимает место в слоте и возвращает оставшееся количество свободных мест.
func (s *SlotStore) AddOccupant(slotID, userID, name string, now time.Time) (int, error) {
	slot, err := s.Get(slotID)
	if err != nil {
		return 0, err
	}
	if slot.FreeCount() <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrSlotFull, slotID)
	}

	slot.Users = append(slot.Users, model.Occupant{
		UserID:   userID,
		Name:     name,
		BookedAt: model.NewTimestamp(now),
	})
	return slot.FreeCount(), nil
}

// RemoveOccupant освобождает место пользователя. Отсутствие пользователя ошибкой не считается.
func (s *SlotStore) RemoveOccupant(slotID, userID string) error {
	_, _, err := s.removeOccupant(slotID, userID)
	return err
}

// removeOccupant возвращает удалённую запись и её позицию (-1, если пользователя не было),
// чтобы откат мог вернуть её на то же место.
func (s *SlotStore) removeOccupant(slotID, userID string) (model.Occupant, int, error) {
	slot, err := s.Get(slotID)
	if err != nil {
		return model.Occupant{}, -1, err
	}

	for i, o := range slot.Users {
		if o.UserID == userID {
			slot.Users = append(slot.Users[:i], slot.Users[i+1:]...)
			return o, i, nil
		}
	}
	return model.Occupant{}, -1, nil
}

// restoreOccupant возвращает occupant на позицию idx.
func (s *SlotStore) restoreOccupant(slotID string, idx int, o model.Occupant) {
	slot, ok := s.slots[slotID]
	if !ok || idx < 0 {
		return
	}
	if idx > len(slot.Users) {
		idx = len(slot.Users)
	}
	slot.Users = append(slot.Users, model.Occupant{})
	copy(slot.Users[idx+1:], slot.Users[idx:])
	slot.Users[idx] = o
}
