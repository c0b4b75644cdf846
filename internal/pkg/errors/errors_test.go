package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create user: %w", ErrConflict)
	require.Equal(t, KindConflict, KindOf(err))
	require.True(t, IsConflict(err))
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestTransientKeepsCause(t *testing.T) {
	err := Transient("send mail", context.DeadlineExceeded)
	require.True(t, IsTransient(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, KindTransient, KindOf(err))
}

func TestValidationMessage(t *testing.T) {
	err := Validation("email: must be a valid email address.")
	e, ok := As(err)
	require.True(t, ok)
	require.Equal(t, KindValidation, e.Kind())
	require.Equal(t, "invalid", e.Code())
	require.Equal(t, "email: must be a valid email address.", e.Error())
}
