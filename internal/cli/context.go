package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Leganyst/interview-slots/internal/booking"
	"github.com/Leganyst/interview-slots/internal/calendar"
	"github.com/Leganyst/interview-slots/internal/config"
	"github.com/Leganyst/interview-slots/internal/db"
	"github.com/Leganyst/interview-slots/internal/logger"
	"github.com/Leganyst/interview-slots/internal/model"
	"github.com/Leganyst/interview-slots/internal/repository"
)

// Context — общее окружение команд: конфиг, движок и хранилище.
type Context struct {
	Config *config.Config
	Engine *booking.Engine
	// Events доступен только для sqlite/postgres.
	Events repository.EventRepository
	Out    io.Writer

	closers []func() error
}

// Open собирает хранилище по cfg.Storage и загружает каталог.
func Open(ctx context.Context, cfg *config.Config, out io.Writer, opts ...booking.Option) (*Context, error) {
	c := &Context{Config: cfg, Out: out}

	gateway, err := c.openGateway(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	engineOpts := []booking.Option{
		booking.WithVenue(cfg.Venue),
		booking.WithLocation(cfg.Location),
		booking.WithPolicy(calendar.NewCutoffPolicy(cfg.CancelWindow, cfg.CutoffFailClosed)),
		booking.WithPersistTimeout(cfg.PersistTimeout),
	}
	if c.Events != nil {
		engineOpts = append(engineOpts, booking.WithJournal(c.Events))
	}
	engineOpts = append(engineOpts, opts...)

	engine, err := booking.NewEngine(ctx, gateway, engineOpts...)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.Engine = engine
	return c, nil
}

func (c *Context) openGateway(ctx context.Context) (booking.Gateway, error) {
	cfg := c.Config

	switch cfg.Storage {
	case config.StorageJSON:
		logger.Debug("storage", "driver", cfg.Storage, "path", cfg.DataFile)
		return repository.NewJSONFileGateway(cfg.DataFile), nil

	case config.StorageSQLite, config.StoragePostgres:
		gormDB, err := db.NewGormDB(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("init db: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("sql DB: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)

		if err := model.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		logger.Debug("storage", "driver", cfg.Storage)
		c.Events = repository.NewGormEventRepository(gormDB)
		return repository.NewGormCatalogRepository(gormDB), nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("storage", "driver", cfg.Storage, "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
		return repository.NewRedisCatalogRepository(rdb, repository.WithRedisKey(cfg.Redis.Key)), nil
	}

	return nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
}

// Close освобождает соединения хранилища.
func (c *Context) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// Seeder строит генератор каталога из настроек SEED_*.
func (c *Context) Seeder(opts ...booking.SeederOption) *booking.Seeder {
	s := c.Config.Seed
	return booking.NewSeeder(booking.SeedConfig{
		StartDate:    s.StartDate,
		Days:         s.Days,
		FirstHour:    s.FirstHour,
		LastHour:     s.LastHour,
		SlotDuration: time.Hour,
		MaxCapacity:  s.MaxCapacity,
		Location:     c.Config.Location,
	}, opts...)
}
