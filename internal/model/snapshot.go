package model

import (
	"time"

	"gorm.io/datatypes"
)

// CatalogSnapshotID — единственная строка catalog_snapshots.
const CatalogSnapshotID = 1

// catalog_snapshots — полный документ каталога, заменяется целиком при каждой записи.
type CatalogSnapshot struct {
	ID uint `gorm:"primaryKey;autoIncrement:false"`

	Document datatypes.JSON `gorm:"not null"`

	LastUpdate time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
