package panther_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-panther"
)

// seqOf builds an iterator that yields the given values, then optionally an error.
func seqOf(values []int, tailErr error) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for _, v := range values {
			if !yield(v, nil) {
				return
			}
		}
		if tailErr != nil {
			yield(0, tailErr)
		}
	}
}

func TestCollect(t *testing.T) {
	t.Run("gathers all items", func(t *testing.T) {
		items, err := panther.Collect(seqOf([]int{1, 2, 3}, nil))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, items)
	})

	t.Run("returns items collected before the error", func(t *testing.T) {
		boom := errors.New("boom")
		items, err := panther.Collect(seqOf([]int{1, 2}, boom))
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []int{1, 2}, items)
	})

	t.Run("empty iterator", func(t *testing.T) {
		items, err := panther.Collect(seqOf(nil, nil))
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestCollectN(t *testing.T) {
	items, err := panther.CollectN(seqOf([]int{1, 2, 3, 4, 5}, nil), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, items)
}

func TestFirst(t *testing.T) {
	t.Run("returns first item", func(t *testing.T) {
		item, err := panther.First(seqOf([]int{7, 8}, nil))
		require.NoError(t, err)
		assert.Equal(t, 7, item)
	})

	t.Run("empty iterator", func(t *testing.T) {
		_, err := panther.First(seqOf(nil, nil))
		require.ErrorIs(t, err, panther.ErrEmptyIterator)
	})
}

func TestTake(t *testing.T) {
	items, err := panther.Collect(panther.Take(seqOf([]int{1, 2, 3, 4}, nil), 2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, items)
}
