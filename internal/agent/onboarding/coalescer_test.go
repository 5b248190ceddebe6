package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoalescer_SwapCancelsPreviousAttempt(t *testing.T) {
	c := NewCoalescer(context.Background())

	first := c.Swap()
	require.NoError(t, first.Err())

	second := c.Swap()
	require.ErrorIs(t, first.Err(), context.Canceled, "older attempt must be cancelled before the new one starts")
	require.NoError(t, second.Err())
}

func TestCoalescer_BaseCancellationPropagates(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	c := NewCoalescer(base)

	attempt := c.Swap()
	cancel()
	require.ErrorIs(t, attempt.Err(), context.Canceled)
}

func TestCoalescer_CloseCancelsCurrentAndFuture(t *testing.T) {
	c := NewCoalescer(context.Background())

	current := c.Swap()
	c.Close()
	require.ErrorIs(t, current.Err(), context.Canceled)

	next := c.Swap()
	require.ErrorIs(t, next.Err(), context.Canceled, "attempts after Close start cancelled")
}
