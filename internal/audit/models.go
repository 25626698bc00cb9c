package audit

import "time"

// Action classifies an audit event.
type Action string

const (
	ActionUserSignedUp      Action = "user_signed_up"
	ActionAuthFailed        Action = "auth_failed"
	ActionPreferenceSaved   Action = "preference_saved"
	ActionFeedbackSubmitted Action = "feedback_submitted"
)

// Event is emitted from handlers and services to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	// Subject names what was acted on: a preference kind, a driver id.
	Subject   string `json:"subject,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Device    string `json:"device,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
}
