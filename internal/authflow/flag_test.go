package authflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlagRaiseAndConsume(t *testing.T) {
	t.Parallel()
	f := NewFlag()

	require.False(t, f.TryConsume(), "fresh flag is unraised")

	f.Raise()
	require.True(t, f.TryConsume())
	require.False(t, f.TryConsume(), "consuming resets the flag")
}

func TestFlagRaiseIsIdempotent(t *testing.T) {
	t.Parallel()
	f := NewFlag()

	// Overlapping failures raise concurrently; only one redirect results.
	f.Raise()
	f.Raise()
	f.Raise()

	require.True(t, f.TryConsume())
	require.False(t, f.TryConsume(), "repeat raises do not stack")
}

func TestFlagChannelConsumer(t *testing.T) {
	t.Parallel()
	f := NewFlag()
	f.Raise()

	select {
	case <-f.Raised():
	default:
		t.Fatal("raised flag should be receivable")
	}
	require.False(t, f.TryConsume(), "channel receive consumed the signal")
}
