package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"buslink/internal/records"
)

// RecordSink appends audit events to the record store under the audit
// namespace. Keys embed the event timestamp and a fresh UUID so concurrent
// appends never collide.
type RecordSink struct {
	records records.Store
}

func NewRecordSink(store records.Store) *RecordSink {
	return &RecordSink{records: store}
}

func (s *RecordSink) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.records.Set(ctx, records.AuditKey(event.Timestamp, uuid.NewString()), value)
}
