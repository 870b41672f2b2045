package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeCatalogSeeded    EventType = "catalog_seeded"
)

// events — события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID string `gorm:"type:varchar(64);index"`
	SlotID string `gorm:"type:varchar(64);index"`

	Details string `gorm:"type:text"`
}

// BeforeCreate проставляет идентификатор на стороне приложения,
// чтобы не зависеть от gen_random_uuid() в конкретной СУБД.
func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
