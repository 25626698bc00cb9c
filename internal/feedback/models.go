package feedback

import "time"

// Feedback is one rider's rating of one driver. Records are append-only;
// nothing in the API updates or deletes them.
type Feedback struct {
	DriverID  string    `json:"driver_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
