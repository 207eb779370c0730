package planner

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Load(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := NewCache()
		var calls atomic.Int32

		var wg sync.WaitGroup
		results := make([]any, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.Load(func() (any, error) {
					calls.Add(1)
					return "pch", nil
				}, "pch", "/src/Prefix.h", "arm64")
				assert.NoError(t, err)
				results[i] = v
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, v := range results {
			assert.Equal(t, "pch", v)
		}
	})
}

func TestCache_KeyParts(t *testing.T) {
	c := NewCache()

	a, err := c.Load(func() (any, error) { return "a", nil }, "ab", "c")
	require.NoError(t, err)
	b, err := c.Load(func() (any, error) { return "b", nil }, "a", "bc")
	require.NoError(t, err)

	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")

	_, err := c.Load(func() (any, error) { return nil, boom }, "key")
	require.ErrorIs(t, err, boom)

	v, err := c.Load(func() (any, error) { return "ok", nil }, "key")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
