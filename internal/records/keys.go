package records

import (
	"strconv"
	"strings"
	"time"
)

// delimiter separates the namespace segments of a key. Variable segments are
// sanitized so the delimiter can never occur inside them; otherwise a prefix
// scan could leak records across namespaces or split one record's key into
// another's prefix.
const delimiter = ":"

// Kinds of per-user singleton records.
const (
	KindUniversity  = "university"
	KindLocation    = "location"
	KindPickupRoute = "pickuproute"
)

func sanitize(segment string) string {
	return strings.ReplaceAll(segment, delimiter, "-")
}

// UserKey addresses a per-user singleton record. The key embeds the verified
// identity id, so a caller can only ever reach its own records.
func UserKey(userID, kind string) string {
	return "user" + delimiter + sanitize(userID) + delimiter + kind
}

// FeedbackKey addresses one immutable feedback submission. Embedding the
// timestamp and author id makes concurrent submissions collision-free by
// construction.
func FeedbackKey(driverID string, ts time.Time, authorID string) string {
	return "feedback" + delimiter + sanitize(driverID) + delimiter +
		strconv.FormatInt(ts.UnixNano(), 10) + delimiter + sanitize(authorID)
}

// FeedbackPrefix scans every feedback record for one driver. The trailing
// delimiter keeps driver "D1" from matching "D10".
func FeedbackPrefix(driverID string) string {
	return "feedback" + delimiter + sanitize(driverID) + delimiter
}

// UniversityKey addresses one university directory entry.
func UniversityKey(id string) string {
	return "university" + delimiter + sanitize(id)
}

// UniversityPrefix scans the whole university directory.
func UniversityPrefix() string {
	return "university" + delimiter
}

// AuditKey addresses one append-only audit event.
func AuditKey(ts time.Time, id string) string {
	return "audit" + delimiter + strconv.FormatInt(ts.UnixNano(), 10) + delimiter + sanitize(id)
}

// AuditPrefix scans the audit trail.
func AuditPrefix() string {
	return "audit" + delimiter
}
