package feedback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/internal/audit"
	"buslink/internal/records"
	dErrors "buslink/pkg/domain-errors"
)

type capturingRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *capturingRecorder) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the feedback and audits it", func(t *testing.T) {
		recorder := &capturingRecorder{}
		svc := NewService(records.NewMemoryStore(), recorder)

		entry, err := svc.Submit(ctx, "author-1", "driver-1", 4, "on time")
		require.NoError(t, err)
		assert.Equal(t, 4, entry.Rating)
		assert.False(t, entry.CreatedAt.IsZero())

		require.Len(t, recorder.events, 1)
		assert.Equal(t, audit.ActionFeedbackSubmitted, recorder.events[0].Action)
		assert.Equal(t, "driver-1", recorder.events[0].Subject)
	})

	t.Run("rating outside 1..5 is rejected", func(t *testing.T) {
		svc := NewService(records.NewMemoryStore(), nil)

		for _, rating := range []int{0, 6, -1} {
			_, err := svc.Submit(ctx, "author-1", "driver-1", rating, "")
			assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "rating %d", rating)
		}

		list, err := svc.ListForDriver(ctx, "driver-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("same author can submit repeatedly without overwriting", func(t *testing.T) {
		svc := NewService(records.NewMemoryStore(), nil)
		base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
		n := 0
		svc.now = func() time.Time {
			n++
			return base.Add(time.Duration(n) * time.Millisecond)
		}

		for i := 1; i <= 3; i++ {
			_, err := svc.Submit(ctx, "author-1", "driver-1", i, "")
			require.NoError(t, err)
		}

		list, err := svc.ListForDriver(ctx, "driver-1")
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})
}

func TestListForDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver yields empty list", func(t *testing.T) {
		svc := NewService(records.NewMemoryStore(), nil)

		list, err := svc.ListForDriver(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("driver id prefixes do not bleed into each other", func(t *testing.T) {
		svc := NewService(records.NewMemoryStore(), nil)

		_, err := svc.Submit(ctx, "author-1", "D1", 5, "")
		require.NoError(t, err)
		_, err = svc.Submit(ctx, "author-1", "D10", 1, "")
		require.NoError(t, err)

		list, err := svc.ListForDriver(ctx, "D1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "D1", list[0].DriverID)
	})

	t.Run("concurrent submissions are all retained", func(t *testing.T) {
		svc := NewService(records.NewMemoryStore(), nil)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := svc.Submit(ctx, "author-"+string(rune('a'+n)), "driver-1", 3, "")
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		list, err := svc.ListForDriver(ctx, "driver-1")
		require.NoError(t, err)
		assert.Len(t, list, 20)
	})
}
