package myerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type httpErrorCoder interface {
	error
	GetHTTPErrorCode() int
}

type httpError struct {
	httpCode int
	err      error
}

func (e httpError) Error() string {
	return fmt.Sprintf("status: %d, err: %s", e.httpCode, e.err.Error())
}

func (e httpError) GetHTTPErrorCode() int {
	return e.httpCode
}

func (e httpError) Unwrap() error {
	return e.err
}

func newError(httpCode int, err error) *httpError {
	return &httpError{
		httpCode: httpCode,
		err:      err,
	}
}

// NewInvalidInputError signals malformed user input, such as a bad login code or an empty import.
func NewInvalidInputError(err error) *httpError {
	return newError(http.StatusBadRequest, err)
}

func NewInvalidInputErrorf(format string, args ...interface{}) *httpError {
	return NewInvalidInputError(fmt.Errorf(format, args...))
}

// NewAuthRequiredError signals a gated action by a user that is not logged in.
func NewAuthRequiredError(err error) *httpError {
	return newError(http.StatusUnauthorized, err)
}

// NewForbiddenError signals a privileged action by a non-privileged identity.
func NewForbiddenError(err error) *httpError {
	return newError(http.StatusForbidden, err)
}

func NewNotFoundError(err error) *httpError {
	return newError(http.StatusNotFound, err)
}

func NewInternalError(err error) *httpError {
	return newError(http.StatusInternalServerError, err)
}

// NewUnavailableError signals that the backend could not be reached at all.
func NewUnavailableError(err error) *httpError {
	return newError(http.StatusServiceUnavailable, err)
}

// FromHTTPStatus maps a non-2xx status received from the backend onto the taxonomy.
func FromHTTPStatus(status int, err error) error {
	switch status {
	case http.StatusBadRequest:
		return NewInvalidInputError(err)
	case http.StatusUnauthorized:
		return NewAuthRequiredError(err)
	case http.StatusForbidden:
		return NewForbiddenError(err)
	case http.StatusNotFound:
		return NewNotFoundError(err)
	case http.StatusServiceUnavailable:
		return NewUnavailableError(err)
	default:
		return NewInternalError(err)
	}
}

func GetHTTPStatus(err error) int {
	var coder httpErrorCoder
	if err != nil && errors.As(err, &coder) {
		return coder.GetHTTPErrorCode()
	}
	return http.StatusInternalServerError
}

func IsInvalidInput(err error) bool {
	return err != nil && GetHTTPStatus(err) == http.StatusBadRequest
}

func IsAuthRequired(err error) bool {
	return err != nil && GetHTTPStatus(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return err != nil && GetHTTPStatus(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return err != nil && GetHTTPStatus(err) == http.StatusNotFound
}

func IsUnavailable(err error) bool {
	return err != nil && GetHTTPStatus(err) == http.StatusServiceUnavailable
}
