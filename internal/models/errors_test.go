package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors_WrapsValidation(t *testing.T) {
	t.Parallel()

	err := error(FieldErrors{"customer_email": "invalid email address"})
	assert.ErrorIs(t, err, ErrValidation)

	fe, ok := FieldErrorsFrom(err)
	require.True(t, ok)
	assert.Equal(t, "invalid email address", fe["customer_email"])
}

func TestFieldErrors_StableMessage(t *testing.T) {
	t.Parallel()

	err := FieldErrors{"b": "two", "a": "one"}
	assert.Equal(t, "validation: a: one; b: two", err.Error())
}

func TestFieldErrorsFrom_WrappedDeeper(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("checkout: %w", FieldErrors{"customer_name": "name is required"})
	require.ErrorIs(t, err, ErrValidation)

	fe, ok := FieldErrorsFrom(err)
	require.True(t, ok)
	assert.Contains(t, fe, "customer_name")
}

func TestSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotAuthenticated, ErrForbidden, ErrNotFound,
		ErrValidation, ErrEmptyCart, ErrCheckoutRejected, ErrBackendUnavailable,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}
