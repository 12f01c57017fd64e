package models

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	t.Run("message trims kind check", func(t *testing.T) {
		err := InvalidTransitionErrorf("cannot cancel PR in status %v", PRStatusApproved)
		require.True(t, errors.Is(err, ErrInvalidTransition))
		require.Equal(t, "cannot cancel PR in status Approved", Message(err))
		require.Equal(t, "invalid transition", Kind(err))
	})
	t.Run("wrapped twice check", func(t *testing.T) {
		err := errors.Wrap(NotFoundErrorf("item %s", "i-1"), "update item")
		require.True(t, errors.Is(err, ErrNotFound))
		require.Equal(t, "not found", Kind(err))
	})
	t.Run("plain error check", func(t *testing.T) {
		err := errors.New("connection refused")
		require.Equal(t, "connection refused", Message(err))
		require.Equal(t, "internal", Kind(err))
		require.Equal(t, "", Message(nil))
	})
}
