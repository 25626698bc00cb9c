package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buslink/internal/audit"
	"buslink/internal/identity"
	"buslink/internal/records"
	dErrors "buslink/pkg/domain-errors"
)

type profileProvider struct {
	identity.Provider
	user identity.Identity
	err  error
}

func (p *profileProvider) GetUser(context.Context, string) (identity.Identity, error) {
	return p.user, p.err
}

type capturingRecorder struct {
	events []audit.Event
}

func (r *capturingRecorder) Record(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func newService(t *testing.T, provider identity.Provider, recorder audit.Recorder) (*Service, *records.MemoryStore) {
	t.Helper()
	store := records.NewMemoryStore()
	svc := NewService(store, provider, recorder)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestSavePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("saves overwrite in place and are audited", func(t *testing.T) {
		recorder := &capturingRecorder{}
		svc, store := newService(t, nil, recorder)

		require.NoError(t, svc.SaveUniversity(ctx, "u1", "mit"))
		require.NoError(t, svc.SaveUniversity(ctx, "u1", "stanford"))

		raw, err := store.Get(ctx, records.UserKey("u1", records.KindUniversity))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "stanford")

		require.Len(t, recorder.events, 2)
		assert.Equal(t, audit.ActionPreferenceSaved, recorder.events[0].Action)
		assert.Equal(t, records.KindUniversity, recorder.events[0].Subject)
	})

	t.Run("location and route are stored under separate keys", func(t *testing.T) {
		svc, store := newService(t, nil, nil)

		require.NoError(t, svc.SaveLocation(ctx, "u1", Location{Latitude: 12.9, Longitude: 77.6}))
		require.NoError(t, svc.SavePickupRoute(ctx, "u1", PickupRoute{BusID: "bus-7", PickupLatitude: 12.9, PickupLongitude: 77.6}))

		_, err := store.Get(ctx, records.UserKey("u1", records.KindLocation))
		require.NoError(t, err)
		_, err = store.Get(ctx, records.UserKey("u1", records.KindPickupRoute))
		require.NoError(t, err)
	})

	t.Run("zero coordinates are stored as given", func(t *testing.T) {
		svc, _ := newService(t, nil, nil)

		require.NoError(t, svc.SaveLocation(ctx, "u1", Location{Latitude: 0, Longitude: 0}))

		route, err := svc.PickupRoute(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, route)
	})
}

func TestPickupRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when never saved", func(t *testing.T) {
		svc, _ := newService(t, nil, nil)

		route, err := svc.PickupRoute(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, route)
	})

	t.Run("round-trips the saved route", func(t *testing.T) {
		svc, _ := newService(t, nil, nil)
		require.NoError(t, svc.SavePickupRoute(ctx, "u1", PickupRoute{BusID: "bus-7", PickupLatitude: 1.5, PickupLongitude: -2.5}))

		route, err := svc.PickupRoute(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, route)
		assert.Equal(t, "bus-7", route.BusID)
		assert.Equal(t, 1.5, route.PickupLatitude)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	ident := identity.Identity{ID: "u1", Email: "rider@campus.edu", Name: "Rider", Role: identity.RoleStudent}

	t.Run("absent records leave nil fields", func(t *testing.T) {
		svc, _ := newService(t, &profileProvider{user: ident}, nil)

		profile, err := svc.Profile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "rider@campus.edu", profile.Email)
		assert.Nil(t, profile.University)
		assert.Nil(t, profile.Location)
	})

	t.Run("composes identity with stored records", func(t *testing.T) {
		svc, _ := newService(t, &profileProvider{user: ident}, nil)
		require.NoError(t, svc.SaveUniversity(ctx, "u1", "mit"))
		require.NoError(t, svc.SaveLocation(ctx, "u1", Location{Latitude: 12.9, Longitude: 77.6}))

		profile, err := svc.Profile(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, profile.University)
		assert.Equal(t, "mit", profile.University.UniversityID)
		require.NotNil(t, profile.Location)
		assert.Equal(t, 12.9, profile.Location.Latitude)
	})

	t.Run("provider failure surfaces as internal", func(t *testing.T) {
		svc, _ := newService(t, &profileProvider{err: errors.New("provider down")}, nil)

		_, err := svc.Profile(ctx, "u1")
		assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	})

	t.Run("another user's records never leak in", func(t *testing.T) {
		svc, _ := newService(t, &profileProvider{user: ident}, nil)
		require.NoError(t, svc.SaveUniversity(ctx, "someone-else", "mit"))

		profile, err := svc.Profile(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, profile.University)
	})
}
