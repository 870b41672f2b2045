package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leganyst/interview-slots/internal/booking"
	"github.com/Leganyst/interview-slots/internal/calendar"
)

type SeedCmd struct{}

func (cmd *SeedCmd) Run(ctx *Context) error {
	n, err := ctx.Engine.Seed(context.Background(), ctx.Seeder())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(ctx.Out, "Catalog already has slots, nothing to seed.")
		return nil
	}
	fmt.Fprintf(ctx.Out, "Seeded %d slots.\n", n)
	return nil
}

type DatesCmd struct{}

func (cmd *DatesCmd) Run(ctx *Context) error {
	dates := ctx.Engine.ListDates()
	if len(dates) == 0 {
		fmt.Fprintln(ctx.Out, "No dates available. Run 'seed' first.")
		return nil
	}
	for _, d := range dates {
		fmt.Fprintln(ctx.Out, d)
	}
	return nil
}

type SlotsCmd struct {
	Date     string `arg:"" help:"Date label, e.g. 01.10.2025(ср)."`
	Page     int    `help:"Page number." default:"1"`
	PageSize int    `help:"Slots per page." default:"20"`
}

func (cmd *SlotsCmd) Run(ctx *Context) error {
	page := calendar.Paginate(ctx.Engine.ListAvailableSlots(cmd.Date), cmd.Page, cmd.PageSize)
	if page.Total == 0 {
		fmt.Fprintf(ctx.Out, "No free slots on %s.\n", cmd.Date)
		return nil
	}

	fmt.Fprintf(ctx.Out, "%s, %s\n", cmd.Date, ctx.Engine.Venue())
	for _, a := range page.Items {
		fmt.Fprintf(ctx.Out, "  %s  free: %d  id: %s\n", a.TimeLabel, a.FreeCount, a.SlotID)
	}
	if page.Pages > 1 {
		fmt.Fprintf(ctx.Out, "Page %d/%d\n", page.Page, page.Pages)
	}
	return nil
}

type BookCmd struct {
	User string `required:"" help:"Caller user id."`
	Name string `help:"Display name."`
	Slot string `arg:"" help:"Slot id."`
}

func (cmd *BookCmd) Run(ctx *Context) error {
	user, err := calendar.ValidateUser(cmd.User, cmd.Name)
	if err != nil {
		return err
	}

	res, err := ctx.Engine.Book(context.Background(), user.ID, user.DisplayName, cmd.Slot)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(ctx.Out, "Booked %s %s. Free places left: %d.\n", res.DateLabel, res.TimeLabel, res.Remaining)
	if res.Venue != "" {
		fmt.Fprintf(ctx.Out, "Address: %s\n", res.Venue)
	}
	return nil
}

type CancelCmd struct {
	User string `required:"" help:"Caller user id."`
}

func (cmd *CancelCmd) Run(ctx *Context) error {
	user, err := calendar.ValidateUser(cmd.User, "")
	if err != nil {
		return err
	}

	res, err := ctx.Engine.Cancel(context.Background(), user.ID)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(ctx.Out, "Cancelled %s %s.\n", res.DateLabel, res.TimeLabel)
	return nil
}

type MyCmd struct {
	User string `required:"" help:"Caller user id."`
}

func (cmd *MyCmd) Run(ctx *Context) error {
	user, err := calendar.ValidateUser(cmd.User, "")
	if err != nil {
		return err
	}

	view, ok := ctx.Engine.MyReservation(user.ID)
	if !ok {
		fmt.Fprintln(ctx.Out, "No active reservation.")
		return nil
	}

	fmt.Fprintf(ctx.Out, "%s %s (%s)\n", view.DateLabel, view.TimeLabel, view.DisplayName)
	fmt.Fprintf(ctx.Out, "Slot: %s\n", view.SlotID)
	if view.CanCancel {
		fmt.Fprintln(ctx.Out, "Cancellation: available")
	} else {
		fmt.Fprintln(ctx.Out, "Cancellation: closed (less than 24 hours before start)")
	}
	return nil
}

type HistoryCmd struct {
	User  string `required:"" help:"Caller user id."`
	Limit int    `help:"Max events to show." default:"20"`
}

func (cmd *HistoryCmd) Run(ctx *Context) error {
	if ctx.Events == nil {
		return errors.New("history requires sqlite or postgres storage")
	}

	events, total, err := ctx.Events.ListByUser(context.Background(), cmd.User, cmd.Limit, 0)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if total == 0 {
		fmt.Fprintln(ctx.Out, "No events.")
		return nil
	}
	for _, e := range events {
		fmt.Fprintf(ctx.Out, "%s  %-18s %s\n", e.CreatedAt.In(ctx.Config.Location).Format(time.DateTime), e.EventType, e.Details)
	}
	if int64(len(events)) < total {
		fmt.Fprintf(ctx.Out, "... %d of %d shown\n", len(events), total)
	}
	return nil
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Out, "Running diagnostics...")

	snap := ctx.Engine.Snapshot()
	fmt.Fprintf(ctx.Out, "✓ Catalog loaded: %d slots, %d reservations\n", len(snap.Slots), len(snap.Users))

	violations := ctx.Engine.Verify()
	if len(violations) == 0 {
		fmt.Fprintln(ctx.Out, "✓ Invariants: OK")
		return nil
	}

	fmt.Fprintf(ctx.Out, "❌ Invariants: %d violation(s)\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(ctx.Out, "   %s\n", v)
	}
	return errors.New("catalog is inconsistent")
}

// describe добавляет к ошибке движка понятное пользователю пояснение.
func describe(err error) error {
	switch {
	case errors.Is(err, booking.ErrSlotNotFound):
		return fmt.Errorf("slot not found, list free slots with 'slots <date>': %w", err)
	case errors.Is(err, booking.ErrSlotFull):
		return fmt.Errorf("this slot has no free places, pick another one: %w", err)
	case errors.Is(err, booking.ErrAlreadyBooked):
		return fmt.Errorf("you already have a reservation, cancel it first: %w", err)
	case errors.Is(err, booking.ErrNoActiveReservation):
		return fmt.Errorf("nothing to cancel: %w", err)
	case errors.Is(err, booking.ErrCancellationWindowClosed):
		return fmt.Errorf("cancellation is possible no later than 24 hours before the start: %w", err)
	case errors.Is(err, booking.ErrPersistenceFailure):
		return fmt.Errorf("could not save the change, try again: %w", err)
	}
	return err
}
