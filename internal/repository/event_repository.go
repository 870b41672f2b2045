package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/interview-slots/internal/model"
)

type EventRepository interface {
	// Записать событие аудита.
	Record(ctx context.Context, e model.Event) error
	// События пользователя, новые первыми, с пагинацией.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Event, int64, error)
}

// Реализация на GORM.
type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Record(ctx context.Context, e model.Event) error {
	return r.db.WithContext(ctx).Create(&e).Error
}

func (r *GormEventRepository) ListByUser(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]model.Event, int64, error) {
	var (
		events []model.Event
		total  int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
