package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should accept worker ids within the 10 bit range", func(t *testing.T) {
		for _, id := range []int64{0, 1, 1023} {
			_, err := New(id)
			assert.NoError(t, err)
		}
	})

	t.Run("should reject worker ids outside the range", func(t *testing.T) {
		for _, id := range []int64{-1, 1024} {
			_, err := New(id)
			assert.Error(t, err)
		}
	})
}

func TestSnowflake_Generate(t *testing.T) {
	t.Run("should produce strictly increasing ids", func(t *testing.T) {
		gen, err := New(1)
		require.NoError(t, err)

		prev := gen.Generate()
		for i := 0; i < 10000; i++ {
			next := gen.Generate()
			require.Greater(t, next, prev)
			prev = next
		}
	})

	t.Run("should produce unique ids under concurrency", func(t *testing.T) {
		gen, err := New(1)
		require.NoError(t, err)

		const workers = 8
		const perWorker = 2000

		var wg sync.WaitGroup
		ids := make([][]int64, workers)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				batch := make([]int64, 0, perWorker)
				for i := 0; i < perWorker; i++ {
					batch = append(batch, gen.Generate())
				}
				ids[w] = batch
			}(w)
		}
		wg.Wait()

		seen := make(map[int64]struct{}, workers*perWorker)
		for _, batch := range ids {
			for _, id := range batch {
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %d", id)
				seen[id] = struct{}{}
			}
		}
	})

	t.Run("different workers never collide in the same millisecond", func(t *testing.T) {
		genA, err := New(1)
		require.NoError(t, err)
		genB, err := New(2)
		require.NoError(t, err)

		a := genA.Generate()
		b := genB.Generate()

		assert.NotEqual(t, a, b)
	})
}

func TestSnowflake_GenerateTradeNo(t *testing.T) {
	gen, err := New(1)
	require.NoError(t, err)

	t.Run("should carry the CRG prefix and fixed length", func(t *testing.T) {
		tradeNo := gen.GenerateTradeNo()

		assert.True(t, strings.HasPrefix(tradeNo, "CRG"))
		// CRG + 14 digit timestamp + 8 digit suffix
		assert.Len(t, tradeNo, 25)
	})

	t.Run("should produce distinct references", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			tradeNo := gen.GenerateTradeNo()
			_, dup := seen[tradeNo]
			require.False(t, dup, "duplicate trade no %s", tradeNo)
			seen[tradeNo] = struct{}{}
		}
	})
}
