// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a ServiceError. Callers are expected to switch on it to
// decide how to react (fix configuration, back off, fix the payload, ...).
type Kind int

const (
	KindGeneric Kind = iota
	KindAuthentication
	KindNotFound
	KindRateLimit
	KindValidation
)

// String returns the short name of the Kind
func (o Kind) String() string {
	switch o {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not-found"
	case KindRateLimit:
		return "rate-limit"
	case KindValidation:
		return "validation"
	default:
		return "generic"
	}
}

func (o Kind) description() string {
	switch o {
	case KindAuthentication:
		return "authentication failed"
	case KindNotFound:
		return "resource not found"
	case KindRateLimit:
		return "rate limit exceeded"
	case KindValidation:
		return "validation error"
	default:
		return "API error"
	}
}

// ServiceError is the single error type surfaced by the client. It is built
// once at the failure site and never modified afterwards.
type ServiceError struct {
	Kind    Kind
	Message string
	// StatusCode is the HTTP status of the failed response, or 0 when the
	// failure happened before (or instead of) receiving one.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface
func (o *ServiceError) Error() string {
	s := fmt.Sprintf("%s: %s", o.Kind.description(), o.Message)
	if o.StatusCode != 0 {
		s += fmt.Sprintf(" (status %d)", o.StatusCode)
	}
	return s
}

// Unwrap returns the underlying cause
func (o *ServiceError) Unwrap() error {
	return o.Err
}

// Is makes errors.Is(err, ErrNotFound) and friends match on Kind alone.
func (o *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}

	return t.Message == "" && t.StatusCode == 0 && t.Err == nil && t.Kind == o.Kind
}

// Kind-only sentinels for use with errors.Is.
var (
	ErrGeneric        = &ServiceError{Kind: KindGeneric}
	ErrAuthentication = &ServiceError{Kind: KindAuthentication}
	ErrNotFound       = &ServiceError{Kind: KindNotFound}
	ErrRateLimit      = &ServiceError{Kind: KindRateLimit}
	ErrValidation     = &ServiceError{Kind: KindValidation}
)

// NewError creates a ServiceError of the given kind
func NewError(kind Kind, statusCode int, cause error, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
		Err:        cause,
	}
}

// KindForStatus maps a non-2xx HTTP status code onto a Kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthentication
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindGeneric
	}
}

// KindOf returns the Kind of the first ServiceError in err's chain. Errors
// that are not ServiceErrors are reported as KindGeneric.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindGeneric
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimit checks if the error is a rate limit error.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
