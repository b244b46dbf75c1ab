package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error is storage", err: cause, want: EStorage},
		{name: "not found", err: ErrGardenNotFound("g1"), want: ENotFound},
		{name: "plant not found", err: ErrPlantNotFound("g1", "rose"), want: ENotFound},
		{name: "not owner", err: ErrNotOwner("g1"), want: EUnauthorized},
		{name: "no caller", err: ErrNoCaller, want: EUnauthorized},
		{name: "duplicate", err: ErrDuplicatePlant("g1", "rose"), want: EConflict},
		{name: "invalid", err: ErrInvalid("id must not be empty"), want: EInvalid},
		{name: "storage", err: ErrStorage("insert", cause), want: EStorage},
		{name: "wrapped coded error", err: fmt.Errorf("outer: %w", ErrGardenNotFound("g1")), want: ENotFound},
		{name: "uncoded wrapper falls through", err: &Error{Op: "get", Err: ErrNotOwner("g1")}, want: EUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("disk full")

	assert.Equal(t, "garden with id=g1 not found", ErrGardenNotFound("g1").Error())
	assert.Equal(t, "insert: store operation failed: disk full", ErrStorage("insert", cause).Error())
	assert.Equal(t, "<conflict>", (&Error{Code: EConflict}).Error())
	assert.ErrorIs(t, ErrStorage("insert", cause), cause)
}
