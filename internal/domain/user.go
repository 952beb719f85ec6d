package domain

// Role differentiates end-user vs admin sessions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Profile is the identity data the attendance service returns on login.
type Profile struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	RegisterNumber string `json:"RegisterNumber"`
	Department     string `json:"department"`
	Role           Role   `json:"role"`
}
