package calendar

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Ошибки валидации идентификатора вызывающего.
var (
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrInvalidDisplayName = errors.New("invalid display name")
)

const (
	maxUserIDLen      = 64
	maxDisplayNameLen = 255
)

// ValidatedUser — нормализованные данные вызывающего.
type ValidatedUser struct {
	ID          string
	DisplayName string
}

// ValidateUser:
//   - проверяет, что идентификатор непустой и помещается в хранилище;
//   - обрезает пробелы у имени;
//   - если имя пустое, подставляет идентификатор.
func ValidateUser(userID, displayName string) (*ValidatedUser, error) {
	id := strings.TrimSpace(userID)
	if id == "" || len(id) > maxUserIDLen {
		return nil, ErrInvalidUserID
	}

	name := strings.TrimSpace(displayName)
	if !utf8.ValidString(name) || utf8.RuneCountInString(name) > maxDisplayNameLen {
		return nil, ErrInvalidDisplayName
	}
	if name == "" {
		name = id
	}

	return &ValidatedUser{ID: id, DisplayName: name}, nil
}
