package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes carried alongside the HTTP status so
// callers and tests can match on the rejection kind, not the message.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeVoucherInvalid       = "VOUCHER_INVALID"
	CodeVoucherNotApplicable = "VOUCHER_NOT_APPLICABLE"
	CodeVoucherAlreadyUsed   = "VOUCHER_ALREADY_USED"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInvalidSignature     = "INVALID_SIGNATURE"
	CodeUpstreamFailure      = "UPSTREAM_FAILURE"
	CodeInternal             = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Code == code
}

func errInvalidRequest(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeInvalidRequest, msg)
}

func errNotFound(msg string) error {
	return NewHTTPError(http.StatusNotFound, CodeNotFound, msg)
}

func errForbidden(msg string) error {
	return NewHTTPError(http.StatusForbidden, CodeForbidden, msg)
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
}

func errInsufficientStock(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeInsufficientStock, msg)
}

func errVoucherInvalid(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeVoucherInvalid, msg)
}

func errVoucherNotApplicable(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeVoucherNotApplicable, msg)
}

func errVoucherAlreadyUsed() error {
	return NewHTTPError(http.StatusBadRequest, CodeVoucherAlreadyUsed, "voucher already used")
}

func errInvalidStatus(msg string) error {
	return NewHTTPError(http.StatusBadRequest, CodeInvalidStatus, msg)
}

func errInvalidTransition(msg string) error {
	return NewHTTPError(http.StatusConflict, CodeInvalidTransition, msg)
}

func errInvalidSignature() error {
	return NewHTTPError(http.StatusBadRequest, CodeInvalidSignature, "invalid signature")
}

func errUpstreamFailure(msg string) error {
	return NewHTTPError(http.StatusBadGateway, CodeUpstreamFailure, msg)
}

func errDB() error {
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
}
