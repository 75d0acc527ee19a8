package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation")
	ErrEmptyCart          = errors.New("empty cart")
	ErrCheckoutRejected   = errors.New("checkout rejected")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// FieldErrors carries per-field validation messages. It wraps
// ErrValidation so callers can both match with errors.Is and address
// individual fields.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// FieldErrorsFrom extracts the per-field detail from err, if any.
func FieldErrorsFrom(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
