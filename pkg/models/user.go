package models

import "time"

// Role controls which dashboard actions a logged-in user may perform.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStandard    Role = "standard"
	RoleSalesperson Role = "salesperson"
	RoleLRUser      Role = "lr_user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandard, RoleSalesperson, RoleLRUser:
		return true
	}
	return false
}

// AdminProfile is the logged-in user's view of themselves, returned by login
// and mirrored into the client session.
type AdminProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
	Role        Role   `json:"role"`
}

// User is a store-side account record. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Salesperson is the accountable party whose password gates forward status
// transitions on an order.
type Salesperson struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DefaultUnits string    `json:"defaultUnits"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	Location string `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Profile *AdminProfile `json:"profile,omitempty"`
	Token   string        `json:"token,omitempty"`
}
