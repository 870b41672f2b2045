package service

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/interview-slots/internal/booking"
)

// errorDomain — домен в ErrorInfo всех ошибок сервиса.
const errorDomain = "slotbooking"

// ReasonRateLimited — причина отказа интерсептора ограничения частоты.
const ReasonRateLimited = "RATE_LIMITED"

// toStatus переводит ошибку движка в gRPC-статус с ErrorInfo.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	code := codes.Internal
	msg := err.Error()
	switch booking.KindOf(err) {
	case booking.KindNotFound:
		code = codes.NotFound
	case booking.KindCapacityExceeded:
		code = codes.ResourceExhausted
	case booking.KindConflictingState:
		code = codes.FailedPrecondition
		if errors.Is(err, booking.ErrAlreadyBooked) {
			code = codes.AlreadyExists
		}
	case booking.KindPolicyViolation:
		code = codes.FailedPrecondition
	case booking.KindPersistenceFailure:
		code = codes.Unavailable
		msg = "booking could not be saved, try again later"
	}

	return statusWithReason(code, msg, booking.ReasonOf(err))
}

func statusWithReason(code codes.Code, msg, reason string) error {
	st := status.New(code, msg)
	if reason == "" {
		return st.Err()
	}
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// ReasonFromError извлекает причину из ErrorInfo ответа сервиса.
func ReasonFromError(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
