package service

import (
	"context"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/interview-slots/internal/booking"
	"github.com/Leganyst/interview-slots/internal/calendar"
)

// BookingService — реализация slotbooking.v1.BookingService поверх booking.Engine.
//
// Поля запросов:
//
//	ListAvailableSlots {date, page, page_size}
//	PreviewBooking     {user_id, slot_id}
//	Book               {user_id, display_name, slot_id}
//	Cancel             {user_id}
//	MyReservation      {user_id}
type BookingService struct {
	engine *booking.Engine
	loc    *time.Location
}

func NewBookingService(engine *booking.Engine, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{engine: engine, loc: loc}
}

var _ BookingServer = (*BookingService)(nil)

func (s *BookingService) ListDates(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	dates := s.engine.ListDates()
	list := make([]any, 0, len(dates))
	for _, d := range dates {
		list = append(list, d)
	}
	return response(map[string]any{
		"dates": list,
		"venue": s.engine.Venue(),
	})
}

func (s *BookingService) ListAvailableSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date := stringField(req, "date")
	if date == "" {
		return nil, status.Error(codes.InvalidArgument, "date is required")
	}

	pageNum, err := pageField(req, "page")
	if err != nil {
		return nil, err
	}
	pageSize, err := pageField(req, "page_size")
	if err != nil {
		return nil, err
	}

	page := calendar.Paginate(s.engine.ListAvailableSlots(date), pageNum, pageSize)

	slots := make([]any, 0, len(page.Items))
	for _, a := range page.Items {
		slots = append(slots, map[string]any{
			"slot_id":    a.SlotID,
			"time":       a.TimeLabel,
			"free_count": a.FreeCount,
			"starts_at":  formatTime(a.StartsAt),
		})
	}

	return response(map[string]any{
		"date":      date,
		"slots":     slots,
		"page":      page.Page,
		"page_size": page.PageSize,
		"pages":     page.Pages,
		"total":     page.Total,
		"has_next":  page.HasNext,
		"has_prev":  page.HasPrev,
		"venue":     s.engine.Venue(),
	})
}

func (s *BookingService) PreviewBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := calendar.ValidateUser(stringField(req, "user_id"), "")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	slotID := stringField(req, "slot_id")
	if slotID == "" {
		return nil, status.Error(codes.InvalidArgument, "slot_id is required")
	}

	p, err := s.engine.PreviewBooking(user.ID, slotID)
	if err != nil {
		return nil, toStatus(err)
	}
	return response(map[string]any{
		"slot_id":    p.SlotID,
		"date":       p.DateLabel,
		"time":       p.TimeLabel,
		"free_count": p.FreeCount,
		"venue":      p.Venue,
	})
}

func (s *BookingService) Book(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := calendar.ValidateUser(stringField(req, "user_id"), stringField(req, "display_name"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	slotID := stringField(req, "slot_id")
	if slotID == "" {
		return nil, status.Error(codes.InvalidArgument, "slot_id is required")
	}

	res, err := s.engine.Book(ctx, user.ID, user.DisplayName, slotID)
	if err != nil {
		return nil, toStatus(err)
	}
	return response(map[string]any{
		"slot_id":   res.SlotID,
		"date":      res.DateLabel,
		"time":      res.TimeLabel,
		"remaining": res.Remaining,
		"venue":     res.Venue,
	})
}

func (s *BookingService) Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := calendar.ValidateUser(stringField(req, "user_id"), "")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.engine.Cancel(ctx, user.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return response(map[string]any{
		"slot_id": res.SlotID,
		"date":    res.DateLabel,
		"time":    res.TimeLabel,
	})
}

func (s *BookingService) MyReservation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := calendar.ValidateUser(stringField(req, "user_id"), "")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	view, ok := s.engine.MyReservation(user.ID)
	if !ok {
		return response(map[string]any{"found": false})
	}

	out := map[string]any{
		"found":        true,
		"slot_id":      view.SlotID,
		"date":         view.DateLabel,
		"time":         view.TimeLabel,
		"display_name": view.DisplayName,
		"booked_at":    formatTime(view.BookedAt),
		"starts_at":    formatTime(view.StartsAt),
		"can_cancel":   view.CanCancel,
		"venue":        view.Venue,
	}
	if tr, err := calendar.NewTimeRange(view.StartsAt, view.EndsAt); err == nil {
		out["summary"] = calendar.FormatSlotForUser(tr, s.loc)
		out["ends_at"] = formatTime(view.EndsAt)
	}
	return response(out)
}

func response(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// pageField читает неотрицательное целое поле пагинации; отсутствующее поле даёт 0.
func pageField(s *structpb.Struct, key string) (int, error) {
	v := s.GetFields()[key].GetNumberValue()
	if !(v >= 0 && v <= math.MaxInt32) || v != math.Trunc(v) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer in [0, %d]", key, math.MaxInt32)
	}
	return int(v), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
