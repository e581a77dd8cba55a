package errors

import (
	stderrors "errors"
	"fmt"
)

// Типизированные ошибки Sotkanet API. Их порождает только клиент;
// каждый слой выше ловит их на своей границе и превращает в
// деградированный, но валидный результат.

// TimeoutError - запрос не уложился в таймаут после всех попыток
type TimeoutError struct {
	URL      string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %d attempts: %s", e.Attempts, e.URL)
}

// HTTPError - сервер ответил ошибочным статусом, исчерпав бюджет повторов
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// NotFoundError - ресурс не существует (HTTP 404), повторы не выполняются
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// InvalidResponseError - тело ответа не является корректным JSON
type InvalidResponseError struct {
	URL string
	Err error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid JSON response from %s: %v", e.URL, e.Err)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// ConnectionError - сетевая ошибка до получения ответа
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsTimeout проверяет, что ошибка - таймаут после исчерпания попыток
func IsTimeout(err error) bool {
	var target *TimeoutError
	return stderrors.As(err, &target)
}

// IsNotFound проверяет, что ресурс отсутствует в API
func IsNotFound(err error) bool {
	var target *NotFoundError
	return stderrors.As(err, &target)
}

// IsInvalidResponse проверяет, что API вернул не-JSON тело
func IsInvalidResponse(err error) bool {
	var target *InvalidResponseError
	return stderrors.As(err, &target)
}

// HTTPStatus возвращает статус из HTTPError, 0 если ошибка другого типа
func HTTPStatus(err error) int {
	var target *HTTPError
	if stderrors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}
