package university

// University is a campus served by the bus network. The catalog is seeded out
// of band; the API only reads it.
type University struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}
