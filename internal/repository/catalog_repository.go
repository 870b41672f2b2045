package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/interview-slots/internal/model"
)

// CatalogRepository загружает последний снимок каталога и заменяет его новым целиком.
type CatalogRepository interface {
	Load(ctx context.Context) (*model.Catalog, error)
	Save(ctx context.Context, c *model.Catalog) error
}

// Реализация на GORM: одна строка catalog_snapshots с id = 1.
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) Load(ctx context.Context) (*model.Catalog, error) {
	var snaps []model.CatalogSnapshot
	err := r.db.WithContext(ctx).
		Where("id = ?", model.CatalogSnapshotID).
		Limit(1).
		Find(&snaps).
		Error
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(snaps) == 0 {
		return model.NewCatalog(), nil
	}

	c := model.NewCatalog()
	if err := json.Unmarshal(snaps[0].Document, c); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	c.EnsureMaps()
	return c, nil
}

// Save заменяет снимок в одной транзакции (insert ... on conflict do update).
func (r *GormCatalogRepository) Save(ctx context.Context, c *model.Catalog) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	snap := model.CatalogSnapshot{
		ID:         model.CatalogSnapshotID,
		Document:   datatypes.JSON(data),
		LastUpdate: c.LastUpdate.Time,
		UpdatedAt:  time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&snap).Error
	})
}
