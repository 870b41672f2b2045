package booking

import (
	"errors"
	"fmt"
)

// Kind — класс ошибки движка записи.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindCapacityExceeded
	KindConflictingState
	KindPolicyViolation
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindConflictingState:
		return "conflicting_state"
	case KindPolicyViolation:
		return "policy_violation"
	case KindPersistenceFailure:
		return "persistence_failure"
	default:
		return "unknown"
	}
}

// Error описывает типизированный исход операции движка.
type Error struct {
	Kind   Kind
	Reason string
	msg    string
}

func (e *Error) Error() string { return e.msg }

var (
	ErrSlotNotFound              = &Error{Kind: KindNotFound, Reason: "SLOT_NOT_FOUND", msg: "slot not found"}
	ErrSlotFull                  = &Error{Kind: KindCapacityExceeded, Reason: "SLOT_FULL", msg: "slot is full"}
	ErrAlreadyBooked             = &Error{Kind: KindConflictingState, Reason: "ALREADY_BOOKED", msg: "user already has a reservation"}
	ErrNoActiveReservation       = &Error{Kind: KindConflictingState, Reason: "NO_ACTIVE_RESERVATION", msg: "user has no active reservation"}
	ErrCancellationWindowClosed  = &Error{Kind: KindPolicyViolation, Reason: "CANCELLATION_WINDOW_CLOSED", msg: "cancellation window is closed"}
	ErrPersistenceFailure        = &Error{Kind: KindPersistenceFailure, Reason: "PERSISTENCE_FAILURE", msg: "persistence failure"}
	errDuplicateSlotID           = errors.New("duplicate slot id")
	errDanglingReservationTarget = errors.New("reservation points to a missing slot")
)

// PersistenceError оборачивает сбой записи или чтения снимка каталога.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistenceFailure.msg, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is позволяет проверять errors.Is(err, ErrPersistenceFailure).
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

// KindOf возвращает класс ошибки или KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return KindPersistenceFailure
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// ReasonOf возвращает машинно-читаемую причину ошибки или пустую строку.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return ErrPersistenceFailure.Reason
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Reason
	}
	return ""
}
