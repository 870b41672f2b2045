package calendar

import "time"

// DefaultCancelWindow — за сколько до начала слота отмена ещё разрешена.
const DefaultCancelWindow = 24 * time.Hour

// CutoffPolicy решает, можно ли ещё отменить запись.
type CutoffPolicy struct {
	// Window — минимальный запас времени до начала слота.
	Window time.Duration
	// FailClosed запрещает отмену, если момент начала неизвестен.
	// По умолчанию (false) отмена в этом случае разрешена.
	FailClosed bool
}

// NewCutoffPolicy возвращает политику с окном window (или 24 часа, если window <= 0).
func NewCutoffPolicy(window time.Duration, failClosed bool) CutoffPolicy {
	if window <= 0 {
		window = DefaultCancelWindow
	}
	return CutoffPolicy{Window: window, FailClosed: failClosed}
}

// CanCancel возвращает false, если до startsAt осталось меньше Window.
// Ровно за Window до начала отмена ещё разрешена.
func (p CutoffPolicy) CanCancel(startsAt, now time.Time) bool {
	if startsAt.IsZero() {
		return !p.FailClosed
	}
	window := p.Window
	if window <= 0 {
		window = DefaultCancelWindow
	}
	return startsAt.Sub(now) >= window
}

// AppointmentInstant собирает момент начала слота из подписей даты и окна.
func AppointmentInstant(dateLabel, windowLabel string, loc *time.Location) (time.Time, error) {
	tr, err := ParseSlotLabels(dateLabel, windowLabel, loc)
	if err != nil {
		return time.Time{}, err
	}
	return tr.Start, nil
}

// CanCancelLabels работает как CanCancel, но собирает момент начала из подписей слота.
func (p CutoffPolicy) CanCancelLabels(dateLabel, windowLabel string, loc *time.Location, now time.Time) bool {
	startsAt, err := AppointmentInstant(dateLabel, windowLabel, loc)
	if err != nil {
		return !p.FailClosed
	}
	return p.CanCancel(startsAt, now)
}
