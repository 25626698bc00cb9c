// Package user stores per-user preferences: university, location, and pickup
// route. Each preference is one record addressed by the verified identity id,
// so a caller can only ever touch its own data.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"buslink/internal/audit"
	"buslink/internal/identity"
	"buslink/internal/records"
	dErrors "buslink/pkg/domain-errors"
	"buslink/pkg/sentinel"
)

type Service struct {
	records  records.Store
	provider identity.Provider
	audit    audit.Recorder
	now      func() time.Time
}

func NewService(store records.Store, provider identity.Provider, recorder audit.Recorder) *Service {
	return &Service{records: store, provider: provider, audit: recorder, now: time.Now}
}

// SaveUniversity fully replaces the user's university preference.
func (s *Service) SaveUniversity(ctx context.Context, userID, universityID string) error {
	pref := UniversityPreference{UniversityID: universityID, UpdatedAt: s.now()}
	return s.save(ctx, userID, records.KindUniversity, pref)
}

// SaveLocation fully replaces the user's saved location.
func (s *Service) SaveLocation(ctx context.Context, userID string, loc Location) error {
	loc.UpdatedAt = s.now()
	return s.save(ctx, userID, records.KindLocation, loc)
}

// SavePickupRoute fully replaces the user's pickup route.
func (s *Service) SavePickupRoute(ctx context.Context, userID string, route PickupRoute) error {
	route.CreatedAt = s.now()
	return s.save(ctx, userID, records.KindPickupRoute, route)
}

func (s *Service) save(ctx context.Context, userID, kind string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "encode record", err)
	}
	if err := s.records.Set(ctx, records.UserKey(userID, kind), encoded); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
	}
	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{Action: audit.ActionPreferenceSaved, UserID: userID, Subject: kind})
	}
	return nil
}

// PickupRoute returns the user's route, or nil when none was ever saved.
func (s *Service) PickupRoute(ctx context.Context, userID string) (*PickupRoute, error) {
	var route PickupRoute
	found, err := s.load(ctx, userID, records.KindPickupRoute, &route)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &route, nil
}

// Profile composes identity fields from the provider with the university and
// location records. The three reads are independent, so they run
// concurrently; an absent record is a nil field, not a failure.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	var (
		ident identity.Identity
		uni   UniversityPreference
		loc   Location

		hasUni, hasLoc bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ident, err = s.provider.GetUser(gctx, userID)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "identity provider failure", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		hasUni, err = s.load(gctx, userID, records.KindUniversity, &uni)
		return err
	})
	g.Go(func() error {
		var err error
		hasLoc, err = s.load(gctx, userID, records.KindLocation, &loc)
		return err
	})
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ID:    ident.ID,
		Email: ident.Email,
		Name:  ident.Name,
		Role:  ident.Role,
	}
	if hasUni {
		profile.University = &uni
	}
	if hasLoc {
		profile.Location = &loc
	}
	return profile, nil
}

func (s *Service) load(ctx context.Context, userID, kind string, out any) (bool, error) {
	value, err := s.records.Get(ctx, records.UserKey(userID, kind))
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
	}
	if err := json.Unmarshal(value, out); err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "decode record", err)
	}
	return true, nil
}
