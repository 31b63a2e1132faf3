package mock_test

import (
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/multiverse"
	"github.com/fwojciec/multiverse/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Next(t *testing.T) {
	t.Parallel()
	t.Run("delegates to NextFn", func(t *testing.T) {
		t.Parallel()
		want := multiverse.EventTextDelta{Delta: "hello"}
		s := mock.Stream{
			NextFn: func() (multiverse.Event, error) {
				return want, nil
			},
		}
		got, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("returns EOF", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{
			NextFn: func() (multiverse.Event, error) {
				return nil, io.EOF
			},
		}
		_, err := s.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("panics when NextFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Next()
		})
	})
}

func TestStream_State(t *testing.T) {
	t.Parallel()
	t.Run("delegates to StateFn", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{
			StateFn: func() multiverse.StreamState {
				return multiverse.StreamStateComplete
			},
		}
		assert.Equal(t, multiverse.StreamStateComplete, s.State())
	})

	t.Run("returns StreamStateNew when StateFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Equal(t, multiverse.StreamStateNew, s.State())
	})
}

func TestStream_Completion(t *testing.T) {
	t.Parallel()
	t.Run("delegates to CompletionFn", func(t *testing.T) {
		t.Parallel()
		want := multiverse.Completion{
			Text:       "A wandering elf mage.",
			StopReason: multiverse.StopEndTurn,
		}
		s := mock.Stream{
			CompletionFn: func() (multiverse.Completion, error) {
				return want, nil
			},
		}
		got, err := s.Completion()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when CompletionFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.Panics(t, func() {
			_, _ = s.Completion()
		})
	})
}

func TestStream_Close(t *testing.T) {
	t.Parallel()
	t.Run("delegates to CloseFn", func(t *testing.T) {
		t.Parallel()
		called := false
		s := mock.Stream{
			CloseFn: func() error {
				called = true
				return nil
			},
		}
		err := s.Close()
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("close error")
		s := mock.Stream{
			CloseFn: func() error {
				return wantErr
			},
		}
		err := s.Close()
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("returns nil when CloseFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.Stream{}
		assert.NoError(t, s.Close())
	})
}
