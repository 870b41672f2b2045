package booking

import (
	"errors"
	"fmt"
	"sort"
)

// Violation — нарушение инварианта каталога.
type Violation struct {
	SlotID string
	UserID string
	Err    error
}

func (v Violation) String() string {
	return fmt.Sprintf("slot=%s user=%s: %v", v.SlotID, v.UserID, v.Err)
}

var (
	errOverCapacity      = errors.New("occupants exceed capacity")
	errNegativeCapacity  = errors.New("negative capacity")
	errOccupantNoBooking = errors.New("occupant has no matching reservation")
	errBookingNoOccupant = errors.New("reservation has no matching occupant")
	errDuplicateOccupant = errors.New("user occupies the slot more than once")
)

// Verify проверяет инварианты каталога и возвращает все найденные нарушения
// в детерминированном порядке. Пустой результат означает, что каталог согласован.
func (e *Engine) Verify() []Violation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []Violation

	for id, slot := range e.catalog.Slots {
		if slot.Capacity < 0 {
			out = append(out, Violation{SlotID: id, Err: errNegativeCapacity})
		}
		if len(slot.Users) > slot.Capacity {
			out = append(out, Violation{SlotID: id, Err: errOverCapacity})
		}

		seen := make(map[string]struct{}, len(slot.Users))
		for _, o := range slot.Users {
			if _, dup := seen[o.UserID]; dup {
				out = append(out, Violation{SlotID: id, UserID: o.UserID, Err: errDuplicateOccupant})
			}
			seen[o.UserID] = struct{}{}

			r, ok := e.catalog.Users[o.UserID]
			if !ok || r.SlotID != id {
				out = append(out, Violation{SlotID: id, UserID: o.UserID, Err: errOccupantNoBooking})
			}
		}
	}

	for userID, r := range e.catalog.Users {
		slot, ok := e.catalog.Slots[r.SlotID]
		if !ok {
			out = append(out, Violation{SlotID: r.SlotID, UserID: userID, Err: errDanglingReservationTarget})
			continue
		}
		if !slot.HasOccupant(userID) {
			out = append(out, Violation{SlotID: r.SlotID, UserID: userID, Err: errBookingNoOccupant})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotID != out[j].SlotID {
			return out[i].SlotID < out[j].SlotID
		}
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Err.Error() < out[j].Err.Error()
	})
	return out
}
