package identity

// Roles a principal can sign up with.
const (
	RoleStudent = "student"
	RoleParent  = "parent"
)

// Identity is the minimal descriptor of a principal owned by the identity
// provider. This service only ever reads it.
type Identity struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	RollNumber     string `json:"roll_number,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	EmergencyPhone string `json:"emergency_phone,omitempty"`
}

// NewUser carries the fields needed to create an identity at the provider.
type NewUser struct {
	Email          string
	Password       string
	Name           string
	Role           string
	RollNumber     string
	PhoneNumber    string
	EmergencyPhone string
}
