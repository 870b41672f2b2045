package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLabelLayout = "02.01.2006"
	clockLayout     = "15:04"
	windowSeparator = " - "
)

var ruWeekdaysShort = map[time.Weekday]string{
	time.Monday:    "пн",
	time.Tuesday:   "вт",
	time.Wednesday: "ср",
	time.Thursday:  "чт",
	time.Friday:    "пт",
	time.Saturday:  "сб",
	time.Sunday:    "вск",
}

var ruWeekdays = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

// DateLabel возвращает подпись даты вида "01.10.2025(ср)".
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%s(%s)", t.Format(dateLabelLayout), ruWeekdaysShort[t.Weekday()])
}

// WindowLabel возвращает подпись окна вида "10:00 - 11:00".
func WindowLabel(tr TimeRange) string {
	return tr.Start.Format(clockLayout) + windowSeparator + tr.End.Format(clockLayout)
}

// ParseSlotLabels восстанавливает интервал слота из подписей даты и окна.
// День недели в скобках игнорируется: он производный от даты.
func ParseSlotLabels(dateLabel, windowLabel string, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	datePart, _, _ := strings.Cut(dateLabel, "(")
	startPart, endPart, ok := strings.Cut(windowLabel, windowSeparator)
	if !ok {
		return TimeRange{}, fmt.Errorf("parse window %q: missing %q", windowLabel, windowSeparator)
	}

	day, err := time.ParseInLocation(dateLabelLayout, strings.TrimSpace(datePart), loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse date %q: %w", dateLabel, err)
	}
	start, err := clockOn(day, startPart)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse window %q: %w", windowLabel, err)
	}
	end, err := clockOn(day, endPart)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse window %q: %w", windowLabel, err)
	}

	return NewTimeRange(start, end)
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	d := dateOnly(day)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, d.Location()), nil
}

// FormatSlotForUser форматирует интервал в человекочитаемую строку.
// Если loc != nil, время переводится в указанный часовой пояс.
func FormatSlotForUser(tr TimeRange, loc *time.Location) string {
	start := tr.Start
	end := tr.End

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	return fmt.Sprintf("%s, %s, %s–%s",
		ruWeekdays[start.Weekday()],
		start.Format(dateLabelLayout),
		start.Format(clockLayout),
		end.Format(clockLayout),
	)
}
