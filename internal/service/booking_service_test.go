package service

import (
	"context"
	"math"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/interview-slots/internal/booking"
	"github.com/Leganyst/interview-slots/internal/model"
	"github.com/Leganyst/interview-slots/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	client *BookingClient
	engine *booking.Engine
	clock  *fakeClock
}

// newTestEnv поднимает сервис на bufconn поверх движка с каталогом из seeder.
func newTestEnv(t *testing.T, capacity int, limiter *LimiterStore) *testEnv {
	t.Helper()

	env := &testEnv{clock: &fakeClock{now: time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)}}

	gw := repository.NewJSONFileGateway(filepath.Join(t.TempDir(), "data.json"))
	engine, err := booking.NewEngine(context.Background(), gw,
		booking.WithClock(env.clock.Now),
		booking.WithVenue("Вешняковский проезд, 4"),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	cfg := booking.DefaultSeedConfig(time.UTC)
	cfg.Days = 2
	seeder := booking.NewSeeder(cfg, booking.WithCapacityFunc(func() int { return capacity }))
	if _, err := engine.Seed(context.Background(), seeder); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	env.engine = engine

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(NewBookingService(engine, time.UTC), limiter)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	env.client = NewBookingClient(conn)
	return env
}

func assertCode(t *testing.T, err error, code codes.Code, reason string) {
	t.Helper()
	if status.Code(err) != code {
		t.Fatalf("code = %v, want %v (err=%v)", status.Code(err), code, err)
	}
	if got := ReasonFromError(err); got != reason {
		t.Fatalf("reason = %q, want %q", got, reason)
	}
}

func firstSlot(t *testing.T, env *testEnv) (string, string) {
	t.Helper()
	ctx := context.Background()

	dates, err := env.client.ListDates(ctx)
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	list := dates.GetFields()["dates"].GetListValue().GetValues()
	if len(list) == 0 {
		t.Fatalf("no dates")
	}
	date := list[0].GetStringValue()

	slots, err := env.client.ListAvailableSlots(ctx, date, 1, 5)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	items := slots.GetFields()["slots"].GetListValue().GetValues()
	if len(items) == 0 {
		t.Fatalf("no available slots on %s", date)
	}
	return date, items[0].GetStructValue().GetFields()["slot_id"].GetStringValue()
}

func TestBookingService_ListDatesAndSlots(t *testing.T) {
	env := newTestEnv(t, 2, nil)
	ctx := context.Background()

	dates, err := env.client.ListDates(ctx)
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	list := dates.GetFields()["dates"].GetListValue().GetValues()
	if len(list) != 2 || list[0].GetStringValue() != "01.10.2025(ср)" || list[1].GetStringValue() != "02.10.2025(чт)" {
		t.Fatalf("unexpected dates: %v", list)
	}
	if dates.GetFields()["venue"].GetStringValue() == "" {
		t.Fatalf("venue missing")
	}

	page, err := env.client.ListAvailableSlots(ctx, "01.10.2025(ср)", 2, 5)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	f := page.GetFields()
	if f["total"].GetNumberValue() != 11 || f["pages"].GetNumberValue() != 3 {
		t.Fatalf("unexpected paging: total=%v pages=%v", f["total"], f["pages"])
	}
	if !f["has_next"].GetBoolValue() || !f["has_prev"].GetBoolValue() {
		t.Fatalf("page 2 of 3 must have both neighbours")
	}
	items := f["slots"].GetListValue().GetValues()
	if len(items) != 5 {
		t.Fatalf("items = %d, want 5", len(items))
	}
	if got := items[0].GetStructValue().GetFields()["time"].GetStringValue(); got != "15:00 - 16:00" {
		t.Fatalf("first item on page 2 = %q", got)
	}

	_, err = env.client.ListAvailableSlots(ctx, "", 1, 5)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestBookingService_ListSlotsPageBounds(t *testing.T) {
	env := newTestEnv(t, 2, nil)
	ctx := context.Background()
	date := "01.10.2025(ср)"

	_, err := env.client.ListAvailableSlots(ctx, date, 4_600_000_000_000_000_000, 4)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("huge page: expected InvalidArgument, got %v", err)
	}
	_, err = env.client.ListAvailableSlots(ctx, date, -1, 4)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("negative page: expected InvalidArgument, got %v", err)
	}

	// страница за концом списка пустая
	res, err := env.client.ListAvailableSlots(ctx, date, math.MaxInt32, 4)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	f := res.GetFields()
	if len(f["slots"].GetListValue().GetValues()) != 0 || f["total"].GetNumberValue() != 11 || f["has_next"].GetBoolValue() {
		t.Fatalf("unexpected page past the end: %v", res)
	}

	res, err = env.client.ListAvailableSlots(ctx, date, 1, 1000)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	if got := res.GetFields()["page_size"].GetNumberValue(); got != 100 {
		t.Fatalf("page_size = %v, want 100", got)
	}

	// сервер продолжает отвечать
	if _, err := env.client.ListDates(ctx); err != nil {
		t.Fatalf("ListDates after bad pages: %v", err)
	}
}

func TestBookingService_BookFlow(t *testing.T) {
	env := newTestEnv(t, 1, nil)
	ctx := context.Background()
	_, slotID := firstSlot(t, env)

	preview, err := env.client.PreviewBooking(ctx, "u1", slotID)
	if err != nil {
		t.Fatalf("PreviewBooking: %v", err)
	}
	if preview.GetFields()["free_count"].GetNumberValue() != 1 {
		t.Fatalf("unexpected preview: %v", preview)
	}

	res, err := env.client.Book(ctx, "u1", "Анна", slotID)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if res.GetFields()["remaining"].GetNumberValue() != 0 || res.GetFields()["date"].GetStringValue() != "01.10.2025(ср)" {
		t.Fatalf("unexpected book result: %v", res)
	}

	_, err = env.client.Book(ctx, "u2", "Борис", slotID)
	assertCode(t, err, codes.ResourceExhausted, "SLOT_FULL")

	_, err = env.client.Book(ctx, "u1", "Анна", slotID)
	assertCode(t, err, codes.AlreadyExists, "ALREADY_BOOKED")

	_, err = env.client.Book(ctx, "u3", "Вера", "no-such-slot")
	assertCode(t, err, codes.NotFound, "SLOT_NOT_FOUND")

	_, err = env.client.Book(ctx, "   ", "x", slotID)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	my, err := env.client.MyReservation(ctx, "u1")
	if err != nil {
		t.Fatalf("MyReservation: %v", err)
	}
	f := my.GetFields()
	if !f["found"].GetBoolValue() || f["slot_id"].GetStringValue() != slotID || !f["can_cancel"].GetBoolValue() {
		t.Fatalf("unexpected reservation: %v", my)
	}
	if f["summary"].GetStringValue() != "Среда, 01.10.2025, 10:00–11:00" {
		t.Fatalf("summary = %q", f["summary"].GetStringValue())
	}

	none, err := env.client.MyReservation(ctx, "u2")
	if err != nil {
		t.Fatalf("MyReservation: %v", err)
	}
	if none.GetFields()["found"].GetBoolValue() {
		t.Fatalf("u2 must have no reservation")
	}
}

func TestBookingService_MyReservationSummaryUsesSlotTimes(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	// подпись окна не разбирается, границы берутся только из starts_at/ends_at
	c := model.NewCatalog()
	c.Slots["S"] = &model.Slot{
		ID:       "S",
		Date:     "01.10.2025(ср)",
		Time:     "утро",
		StartsAt: model.NewTimestamp(start),
		EndsAt:   model.NewTimestamp(start.Add(90 * time.Minute)),
		Capacity: 1,
		Users:    []model.Occupant{},
	}
	gw := repository.NewJSONFileGateway(filepath.Join(t.TempDir(), "data.json"))
	if err := gw.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	clock := &fakeClock{now: time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)}
	engine, err := booking.NewEngine(ctx, gw, booking.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := engine.Book(ctx, "u1", "Анна", "S"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	req, err := structpb.NewStruct(map[string]any{"user_id": "u1"})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	res, err := NewBookingService(engine, time.UTC).MyReservation(ctx, req)
	if err != nil {
		t.Fatalf("MyReservation: %v", err)
	}
	f := res.GetFields()
	if got := f["summary"].GetStringValue(); got != "Среда, 01.10.2025, 10:00–11:30" {
		t.Fatalf("summary = %q", got)
	}
	if got := f["ends_at"].GetStringValue(); got != "2025-10-01T11:30:00Z" {
		t.Fatalf("ends_at = %q", got)
	}
}

func TestBookingService_CancelCutoff(t *testing.T) {
	env := newTestEnv(t, 1, nil)
	ctx := context.Background()
	_, slotID := firstSlot(t, env)

	if _, err := env.client.Book(ctx, "u1", "Анна", slotID); err != nil {
		t.Fatalf("Book: %v", err)
	}

	// 2 часа до начала
	env.clock.Set(time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC))
	_, err := env.client.Cancel(ctx, "u1")
	assertCode(t, err, codes.FailedPrecondition, "CANCELLATION_WINDOW_CLOSED")

	// 30 часов до начала
	env.clock.Set(time.Date(2025, 9, 30, 4, 0, 0, 0, time.UTC))
	res, err := env.client.Cancel(ctx, "u1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.GetFields()["slot_id"].GetStringValue() != slotID {
		t.Fatalf("unexpected cancel result: %v", res)
	}

	_, err = env.client.Cancel(ctx, "u1")
	assertCode(t, err, codes.FailedPrecondition, "NO_ACTIVE_RESERVATION")

	if v := env.engine.Verify(); len(v) != 0 {
		t.Fatalf("inconsistent catalog: %v", v)
	}
}

func TestBookingService_RateLimit(t *testing.T) {
	env := newTestEnv(t, 1, NewLimiterStore(0.001, 2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.client.MyReservation(ctx, "u1"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	_, err := env.client.MyReservation(ctx, "u1")
	assertCode(t, err, codes.ResourceExhausted, ReasonRateLimited)

	// смена user_id с того же соединения лимит не обходит
	_, err = env.client.MyReservation(ctx, "u2")
	assertCode(t, err, codes.ResourceExhausted, ReasonRateLimited)
}
