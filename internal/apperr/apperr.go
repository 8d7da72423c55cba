// Package apperr определяет классификацию ошибок уровня приложения
// и их отображение в HTTP статусы.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Базовые ошибки приложения.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)

// PolicyBlocked возвращается, когда смена имени заблокирована политикой.
// Несёт количество оставшихся дней ожидания.
type PolicyBlocked struct {
	DaysRemaining int
}

func (e *PolicyBlocked) Error() string {
	return fmt.Sprintf("name change limit exceeded, wait %d more days", e.DaysRemaining)
}

// RateLimited возвращается при превышении частоты повторной отправки письма.
type RateLimited struct {
	MinutesRemaining int
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("too many requests, wait %d more minutes", e.MinutesRemaining)
}

// ProcessorError оборачивает ошибку внешнего платёжного провайдера.
type ProcessorError struct {
	Message string
}

func (e *ProcessorError) Error() string {
	return "payment processor error: " + e.Message
}

// HTTPStatus отображает ошибку приложения в HTTP статус.
func HTTPStatus(err error) int {
	var policy *PolicyBlocked
	var limited *RateLimited
	var processor *ProcessorError

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &policy):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &processor):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
