package mapview

import (
	"errors"
	"fmt"
)

// ErrGeolocationUnavailable сигнализирует, что позицию пользователя получить
// не удалось. Восстанавливается автоматически подстановкой DefaultLocation
var ErrGeolocationUnavailable = errors.New("geolocation unavailable")

// ValidationError - ошибка локальной проверки ввода.
// Возникает до любого сетевого вызова
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// StoreError - ошибка обращения к хранилищу инцидентов (чтение или вставка).
// Операция повторяема тем же действием пользователя
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InitFailure - карта не смогла запуститься (нет или неверный токен).
// Поверхность остается неинициализированной, частично живой карты не бывает
type InitFailure struct {
	Cause string
	Err   error
}

func (e *InitFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("map initialization failed: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("map initialization failed: %s", e.Cause)
}

func (e *InitFailure) Unwrap() error {
	return e.Err
}
