package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию таблиц хранилища каталога.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CatalogSnapshot{},
		&Event{},
	)
}
