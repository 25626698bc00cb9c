// Package university serves the read-only campus catalog backed by the
// record store.
package university

import (
	"context"
	"encoding/json"

	"buslink/internal/records"
	dErrors "buslink/pkg/domain-errors"
)

type Service struct {
	records records.Store
}

func NewService(store records.Store) *Service {
	return &Service{records: store}
}

// List returns every seeded university. An unseeded store yields an empty
// slice, never an error.
func (s *Service) List(ctx context.Context) ([]University, error) {
	values, err := s.records.Scan(ctx, records.UniversityPrefix())
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
	}

	results := make([]University, 0, len(values))
	for _, value := range values {
		var uni University
		if err := json.Unmarshal(value, &uni); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "decode university", err)
		}
		results = append(results, uni)
	}
	return results, nil
}

// Seed writes the given universities into the catalog namespace. Used by
// local development and tests.
func (s *Service) Seed(ctx context.Context, universities []University) error {
	for _, uni := range universities {
		encoded, err := json.Marshal(uni)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "encode university", err)
		}
		if err := s.records.Set(ctx, records.UniversityKey(uni.ID), encoded); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
		}
	}
	return nil
}
