// Package feedback collects driver ratings. Each submission gets its own key
// built from driver id, submission time, and author id, so concurrent
// submissions never collide.
package feedback

import (
	"context"
	"encoding/json"
	"time"

	"buslink/internal/audit"
	"buslink/internal/records"
	dErrors "buslink/pkg/domain-errors"
)

type Service struct {
	records records.Store
	audit   audit.Recorder
	now     func() time.Time
}

func NewService(store records.Store, recorder audit.Recorder) *Service {
	return &Service{records: store, audit: recorder, now: time.Now}
}

// Submit appends one feedback record for the driver. The rating must already
// be range-checked by the caller; this guard is the last line of defense.
func (s *Service) Submit(ctx context.Context, authorID, driverID string, rating int, comment string) (Feedback, error) {
	if rating < 1 || rating > 5 {
		return Feedback{}, dErrors.New(dErrors.CodeBadRequest, "rating must be between 1 and 5")
	}

	entry := Feedback{
		DriverID:  driverID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return Feedback{}, dErrors.Wrap(dErrors.CodeInternal, "encode feedback", err)
	}

	key := records.FeedbackKey(driverID, entry.CreatedAt, authorID)
	if err := s.records.Set(ctx, key, encoded); err != nil {
		return Feedback{}, dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{Action: audit.ActionFeedbackSubmitted, UserID: authorID, Subject: driverID})
	}
	return entry, nil
}

// ListForDriver returns every feedback record for the driver. A driver with
// no feedback yields an empty slice, never an error.
func (s *Service) ListForDriver(ctx context.Context, driverID string) ([]Feedback, error) {
	values, err := s.records.Scan(ctx, records.FeedbackPrefix(driverID))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "storage failure", err)
	}

	results := make([]Feedback, 0, len(values))
	for _, value := range values {
		var entry Feedback
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "decode feedback", err)
		}
		results = append(results, entry)
	}
	return results, nil
}
