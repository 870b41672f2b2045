package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Leganyst/interview-slots/internal/calendar"
	"github.com/Leganyst/interview-slots/internal/logger"
	"github.com/Leganyst/interview-slots/internal/model"
)

// DefaultPersistTimeout ограничивает запись снимка, если таймаут не задан явно.
const DefaultPersistTimeout = 5 * time.Second

// Gateway сохраняет и восстанавливает полный снимок каталога.
type Gateway interface {
	// Load возвращает последний сохранённый каталог или пустой, если снимка ещё нет.
	Load(ctx context.Context) (*model.Catalog, error)
	// Save целиком заменяет предыдущий снимок.
	Save(ctx context.Context, c *model.Catalog) error
}

// Journal принимает события аудита после зафиксированных переходов.
type Journal interface {
	Record(ctx context.Context, e model.Event) error
}

// BookResult — итог успешной записи.
type BookResult struct {
	SlotID    string
	DateLabel string
	TimeLabel string
	Remaining int
	Venue     string
}

// CancelResult — итог успешной отмены.
type CancelResult struct {
	SlotID    string
	DateLabel string
	TimeLabel string
}

// ReservationView — текущая запись пользователя для отображения.
type ReservationView struct {
	SlotID      string
	DateLabel   string
	TimeLabel   string
	DisplayName string
	BookedAt    time.Time
	StartsAt    time.Time
	EndsAt      time.Time
	CanCancel   bool
	Venue       string
}

// Preview содержит данные для экрана подтверждения записи.
type Preview struct {
	SlotID    string
	DateLabel string
	TimeLabel string
	FreeCount int
	Venue     string
}

type Option func(*Engine)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithPolicy(p calendar.CutoffPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithVenue задаёт адрес площадки, который добавляется к ответам.
func WithVenue(venue string) Option {
	return func(e *Engine) { e.venue = venue }
}

// WithLocation задаёт часовой пояс, в котором записаны подписи слотов.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithPersistTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.persistTimeout = d
		}
	}
}

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// Engine — единственный владелец каталога.
// Все изменения выполняются под мьютексом и считаются успешными только после записи снимка.
type Engine struct {
	mu      sync.RWMutex
	catalog *model.Catalog
	slots   *SlotStore
	ledger  *ReservationLedger

	gateway        Gateway
	journal        Journal
	policy         calendar.CutoffPolicy
	venue          string
	loc            *time.Location
	now            func() time.Time
	persistTimeout time.Duration
}

// NewEngine загружает каталог через gateway и возвращает готовый движок.
func NewEngine(ctx context.Context, gateway Gateway, opts ...Option) (*Engine, error) {
	e := &Engine{
		gateway:        gateway,
		policy:         calendar.NewCutoffPolicy(calendar.DefaultCancelWindow, false),
		loc:            time.UTC,
		now:            time.Now,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	c, err := gateway.Load(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if c == nil {
		c = model.NewCatalog()
	}
	normalizeCatalog(c, e.loc)
	e.setCatalog(c)

	logger.Debug("catalog loaded", "slots", e.slots.Len(), "reservations", e.ledger.Len())
	return e, nil
}

func (e *Engine) setCatalog(c *model.Catalog) {
	e.catalog = c
	e.slots = NewSlotStore(c)
	e.ledger = NewReservationLedger(c)
}

// normalizeCatalog дополняет документы старого формата:
// идентификаторы из ключей и моменты начала из подписей.
func normalizeCatalog(c *model.Catalog, loc *time.Location) {
	c.EnsureMaps()

	for id, slot := range c.Slots {
		if slot == nil {
			delete(c.Slots, id)
			continue
		}
		if slot.ID == "" {
			slot.ID = id
		}
		if slot.Users == nil {
			slot.Users = []model.Occupant{}
		}
		if slot.StartsAt.IsZero() {
			tr, err := calendar.ParseSlotLabels(slot.Date, slot.Time, loc)
			if err != nil {
				logger.Warn("slot labels are not parseable", "slot_id", id, "date", slot.Date, "time", slot.Time, "error", err)
				continue
			}
			slot.StartsAt = model.NewTimestamp(tr.Start)
			slot.EndsAt = model.NewTimestamp(tr.End)
		}
	}

	for id, r := range c.Users {
		if r.UserID == "" {
			r.UserID = id
			c.Users[id] = r
		}
	}
}

// Venue возвращает адрес площадки.
func (e *Engine) Venue() string { return e.venue }

// ListDates возвращает подписи дат по возрастанию.
func (e *Engine) ListDates() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots.ListDates()
}

// ListAvailableSlots возвращает слоты даты со свободными местами.
func (e *Engine) ListAvailableSlots(dateLabel string) []Availability {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots.ListAvailable(dateLabel)
}

// PreviewBooking проверяет, что запись возможна, ничего не меняя.
func (e *Engine) PreviewBooking(userID, slotID string) (Preview, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	slot, err := e.slots.Get(slotID)
	if err != nil {
		return Preview{}, err
	}
	if slot.FreeCount() <= 0 {
		return Preview{}, fmt.Errorf("%w: %s", ErrSlotFull, slotID)
	}
	if _, ok := e.ledger.Get(userID); ok {
		return Preview{}, fmt.Errorf("%w: %s", ErrAlreadyBooked, userID)
	}

	return Preview{
		SlotID:    slot.ID,
		DateLabel: slot.Date,
		TimeLabel: slot.Time,
		FreeCount: slot.FreeCount(),
		Venue:     e.venue,
	}, nil
}

// MyReservation возвращает запись пользователя и признак её наличия.
func (e *Engine) MyReservation(userID string) (ReservationView, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r, ok := e.ledger.Get(userID)
	if !ok {
		return ReservationView{}, false
	}

	now := e.now()
	view := ReservationView{
		SlotID:      r.SlotID,
		DateLabel:   r.Date,
		TimeLabel:   r.Time,
		DisplayName: r.UserName,
		BookedAt:    r.BookedAt.Time,
		CanCancel:   e.canCancel(r, now),
		Venue:       e.venue,
	}
	if slot, err := e.slots.Get(r.SlotID); err == nil {
		view.StartsAt = slot.StartsAt.Time
		view.EndsAt = slot.EndsAt.Time
	}
	return view, true
}

// Book записывает пользователя в слот.
func (e *Engine) Book(ctx context.Context, userID, displayName, slotID string) (BookResult, error) {
	res, err := e.book(ctx, userID, displayName, slotID)
	if err != nil {
		logger.Info("booking rejected", "user_id", userID, "slot_id", slotID, "reason", ReasonOf(err))
		return BookResult{}, err
	}

	logger.Info("booking confirmed", "user_id", userID, "slot_id", slotID, "remaining", res.Remaining)
	e.record(ctx, model.Event{
		EventType: model.EventTypeBookingCreated,
		UserID:    userID,
		SlotID:    slotID,
		Details:   fmt.Sprintf("%s %s", res.DateLabel, res.TimeLabel),
	})
	return res, nil
}

func (e *Engine) book(ctx context.Context, userID, displayName, slotID string) (BookResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.ledger.Get(userID); ok {
		return BookResult{}, fmt.Errorf("%w: %s", ErrAlreadyBooked, userID)
	}

	now := e.now()
	remaining, err := e.slots.AddOccupant(slotID, userID, displayName, now)
	if err != nil {
		return BookResult{}, err
	}
	slot, _ := e.slots.Get(slotID)

	reservation := model.Reservation{
		SlotID:   slotID,
		Date:     slot.Date,
		Time:     slot.Time,
		UserName: displayName,
		BookedAt: model.NewTimestamp(now),
	}
	if err := e.ledger.Set(userID, reservation); err != nil {
		e.dropLastOccupant(slot)
		return BookResult{}, err
	}

	if err := e.persist(ctx, now); err != nil {
		_, _ = e.ledger.Clear(userID)
		e.dropLastOccupant(slot)
		logger.Error("booking rolled back", "user_id", userID, "slot_id", slotID, "error", err)
		return BookResult{}, err
	}

	return BookResult{
		SlotID:    slot.ID,
		DateLabel: slot.Date,
		TimeLabel: slot.Time,
		Remaining: remaining,
		Venue:     e.venue,
	}, nil
}

// dropLastOccupant откатывает только что выполненный AddOccupant.
func (e *Engine) dropLastOccupant(slot *model.Slot) {
	if n := len(slot.Users); n > 0 {
		slot.Users = slot.Users[:n-1]
	}
}

// Cancel отменяет запись пользователя, если окно отмены ещё открыто.
func (e *Engine) Cancel(ctx context.Context, userID string) (CancelResult, error) {
	res, err := e.cancel(ctx, userID)
	if err != nil {
		logger.Info("cancellation rejected", "user_id", userID, "reason", ReasonOf(err))
		return CancelResult{}, err
	}

	logger.Info("booking cancelled", "user_id", userID, "slot_id", res.SlotID)
	e.record(ctx, model.Event{
		EventType: model.EventTypeBookingCancelled,
		UserID:    userID,
		SlotID:    res.SlotID,
		Details:   fmt.Sprintf("%s %s", res.DateLabel, res.TimeLabel),
	})
	return res, nil
}

func (e *Engine) cancel(ctx context.Context, userID string) (CancelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.ledger.Get(userID)
	if !ok {
		return CancelResult{}, fmt.Errorf("%w: %s", ErrNoActiveReservation, userID)
	}

	now := e.now()
	if !e.canCancel(r, now) {
		return CancelResult{}, fmt.Errorf("%w: %s %s", ErrCancellationWindowClosed, r.Date, r.Time)
	}

	removed, err := e.ledger.Clear(userID)
	if err != nil {
		return CancelResult{}, err
	}
	occupant, idx, err := e.slots.removeOccupant(r.SlotID, userID)
	switch {
	case errors.Is(err, ErrSlotNotFound):
		// слота больше нет в каталоге: снимаем только запись
		logger.Warn("reservation points to a missing slot, dropping it", "user_id", userID, "slot_id", r.SlotID)
	case err != nil:
		_ = e.ledger.Set(userID, removed)
		return CancelResult{}, err
	}

	if err := e.persist(ctx, now); err != nil {
		e.slots.restoreOccupant(r.SlotID, idx, occupant)
		_ = e.ledger.Set(userID, removed)
		logger.Error("cancellation rolled back", "user_id", userID, "slot_id", r.SlotID, "error", err)
		return CancelResult{}, err
	}

	return CancelResult{
		SlotID:    r.SlotID,
		DateLabel: r.Date,
		TimeLabel: r.Time,
	}, nil
}

// canCancel проверяет окно отмены по структурированному моменту начала слота,
// а при его отсутствии по подписям из записи.
func (e *Engine) canCancel(r model.Reservation, now time.Time) bool {
	if slot, err := e.slots.Get(r.SlotID); err == nil && !slot.StartsAt.IsZero() {
		return e.policy.CanCancel(slot.StartsAt.Time, now)
	}
	return e.policy.CanCancelLabels(r.Date, r.Time, e.loc, now)
}

// Seed заполняет пустой каталог слотами из seeder и сохраняет результат.
// Возвращает количество созданных слотов; 0, если каталог уже был заполнен.
func (e *Engine) Seed(ctx context.Context, seeder *Seeder) (int, error) {
	n, err := e.seed(ctx, seeder)
	if err != nil || n == 0 {
		return n, err
	}

	logger.Info("catalog seeded", "slots", n)
	e.record(ctx, model.Event{
		EventType: model.EventTypeCatalogSeeded,
		Details:   fmt.Sprintf("%d slots", n),
	})
	return n, nil
}

func (e *Engine) seed(ctx context.Context, seeder *Seeder) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.slots.Len() > 0 {
		return 0, nil
	}

	generated, err := seeder.Generate()
	if err != nil {
		return 0, err
	}

	rollback := func() {
		for _, slot := range generated {
			delete(e.catalog.Slots, slot.ID)
		}
	}
	for _, slot := range generated {
		if err := e.slots.Add(slot); err != nil {
			rollback()
			return 0, err
		}
	}

	if err := e.persist(ctx, e.now()); err != nil {
		rollback()
		return 0, err
	}
	return len(generated), nil
}

// Snapshot возвращает глубокую копию каталога.
func (e *Engine) Snapshot() *model.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog.Clone()
}

// persist записывает снимок с ограничением по времени.
// Вызывается под e.mu; при ошибке last_update возвращается к прежнему значению.
func (e *Engine) persist(ctx context.Context, now time.Time) error {
	prev := e.catalog.LastUpdate
	e.catalog.LastUpdate = model.NewTimestamp(now)

	ctx, cancel := context.WithTimeout(ctx, e.persistTimeout)
	defer cancel()

	if err := e.gateway.Save(ctx, e.catalog); err != nil {
		e.catalog.LastUpdate = prev
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (e *Engine) record(ctx context.Context, ev model.Event) {
	if e.journal == nil {
		return
	}
	ev.CreatedAt = e.now().UTC()
	if err := e.journal.Record(ctx, ev); err != nil {
		logger.Warn("audit event not recorded", "event", ev.EventType, "error", err)
	}
}
