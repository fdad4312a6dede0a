package domain

import "time"

// Role is the closed set of access levels an agent can hold.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleBoss          Role = "boss"
	RoleGroupBoss     Role = "group_boss"
	RoleAgent         Role = "agent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleBoss, RoleGroupBoss, RoleAgent:
		return true
	}
	return false
}

// Subgroup splits the sales force in two halves; only group bosses and agents
// carry one.
type Subgroup string

const (
	SubgroupA Subgroup = "A"
	SubgroupB Subgroup = "B"
)

// Valid reports whether s is a known subgroup.
func (s Subgroup) Valid() bool {
	return s == SubgroupA || s == SubgroupB
}

// Agent models an authenticatable sales agent account.
type Agent struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Zone         string    `json:"zone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Subgroup     Subgroup  `json:"subgroup,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
