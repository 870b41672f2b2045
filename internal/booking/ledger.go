package booking

import (
	"fmt"

	"github.com/Leganyst/interview-slots/internal/model"
)

// ReservationLedger — соответствие пользователь → единственная активная запись.
type ReservationLedger struct {
	users map[string]model.Reservation
}

func NewReservationLedger(c *model.Catalog) *ReservationLedger {
	return &ReservationLedger{users: c.Users}
}

// Len возвращает количество активных записей.
func (l *ReservationLedger) Len() int { return len(l.users) }

// Get возвращает запись пользователя, если она есть.
func (l *ReservationLedger) Get(userID string) (model.Reservation, bool) {
	r, ok := l.users[userID]
	return r, ok
}

// Set сохраняет запись. Существующая запись не перезаписывается.
func (l *ReservationLedger) Set(userID string, r model.Reservation) error {
	if _, ok := l.users[userID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyBooked, userID)
	}
	r.UserID = userID
	l.users[userID] = r
	return nil
}

// Clear удаляет запись пользователя и возвращает её.
func (l *ReservationLedger) Clear(userID string) (model.Reservation, error) {
	r, ok := l.users[userID]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %s", ErrNoActiveReservation, userID)
	}
	delete(l.users, userID)
	return r, nil
}
