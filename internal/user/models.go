package user

import "time"

// UniversityPreference is the per-user singleton naming the rider's campus.
type UniversityPreference struct {
	UniversityID string    `json:"university_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Location is the rider's last saved location. Overwritten in place on every
// save; there is no history.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PickupRoute records which bus the rider boards and where.
type PickupRoute struct {
	BusID           string    `json:"bus_id"`
	PickupLatitude  float64   `json:"pickup_latitude"`
	PickupLongitude float64   `json:"pickup_longitude"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile composes provider-owned identity fields with the user's stored
// records. Absent records stay nil rather than erroring.
type Profile struct {
	ID         string                `json:"id"`
	Email      string                `json:"email"`
	Name       string                `json:"name"`
	Role       string                `json:"role"`
	University *UniversityPreference `json:"university"`
	Location   *Location             `json:"location"`
}
