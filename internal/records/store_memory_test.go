package records

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/pkg/sentinel"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get round-trips the value", func(t *testing.T) {
		store := NewMemoryStore()
		value := json.RawMessage(`{"latitude":12.97,"longitude":77.59}`)

		require.NoError(t, store.Set(ctx, "user:u1:location", value))

		got, err := store.Get(ctx, "user:u1:location")
		require.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("missing key is not found", func(t *testing.T) {
		store := NewMemoryStore()

		_, err := store.Get(ctx, "user:nobody:location")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("stored null is a present value", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "user:u1:university", json.RawMessage(`null`)))

		got, err := store.Get(ctx, "user:u1:university")
		require.NoError(t, err)
		assert.Equal(t, "null", string(got))
	})

	t.Run("second write wins", func(t *testing.T) {
		store := NewMemoryStore()
		key := UserKey("u1", KindLocation)

		require.NoError(t, store.Set(ctx, key, json.RawMessage(`{"latitude":1}`)))
		require.NoError(t, store.Set(ctx, key, json.RawMessage(`{"latitude":2}`)))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"latitude":2}`, string(got))
	})

	t.Run("scan returns only matching prefix", func(t *testing.T) {
		store := NewMemoryStore()
		now := time.Now()

		require.NoError(t, store.Set(ctx, FeedbackKey("D1", now, "u1"), json.RawMessage(`{"rating":5}`)))
		require.NoError(t, store.Set(ctx, FeedbackKey("D1", now.Add(time.Second), "u2"), json.RawMessage(`{"rating":3}`)))
		require.NoError(t, store.Set(ctx, FeedbackKey("D2", now, "u1"), json.RawMessage(`{"rating":1}`)))

		got, err := store.Scan(ctx, FeedbackPrefix("D1"))
		require.NoError(t, err)
		assert.Len(t, got, 2)
		for _, v := range got {
			assert.NotContains(t, string(v), `"rating":1`)
		}
	})

	t.Run("scan with no matches returns empty slice", func(t *testing.T) {
		store := NewMemoryStore()

		got, err := store.Scan(ctx, FeedbackPrefix("nobody"))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("mutating a returned value does not touch the store", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "k", json.RawMessage(`"aa"`)))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		got[1] = 'z'

		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `"aa"`, string(again))
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 50
	base := time.Now()
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			key := FeedbackKey("D1", base.Add(time.Duration(n)*time.Millisecond), "author")
			assert.NoError(t, store.Set(ctx, key, json.RawMessage(`{"rating":4}`)))
			_, err := store.Scan(ctx, FeedbackPrefix("D1"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.Scan(ctx, FeedbackPrefix("D1"))
	require.NoError(t, err)
	assert.Len(t, got, goroutines)
}
