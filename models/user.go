package models

import "strings"

// UserRole is the platform-wide role carried in the session token.
type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RoleRestaurantOwner UserRole = "restaurant_owner"
	RoleChef            UserRole = "chef"
	RoleWaiter          UserRole = "waiter"
	RoleDeliveryPerson  UserRole = "delivery_person"
	RoleCustomer        UserRole = "customer"
	RoleVisitor         UserRole = "visitor"
)

// ValidRole reports whether r is one of the enumerated platform roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleRestaurantOwner, RoleChef, RoleWaiter, RoleDeliveryPerson, RoleCustomer, RoleVisitor:
		return true
	}
	return false
}

type Profile struct {
	Base
	Name         string   `json:"name" gorm:"not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role" gorm:"not null;default:'customer'"`
	Phone        string   `json:"phone"`
}

// Tenant-scoped member roles.
const (
	MemberOwner    = "dono"
	MemberChef     = "chef"
	MemberWaiter   = "garcom"
	MemberDelivery = "entregador"
)

// StaffRoles lists every member role allowed on staff pages.
var StaffRoles = []string{MemberOwner, MemberChef, MemberWaiter, MemberDelivery}

// NormalizeRole trims and lower-cases a role for comparison.
func NormalizeRole(r string) string {
	return strings.ToLower(strings.TrimSpace(r))
}

// TeamMember binds a profile to a team with a tenant-scoped role.
type TeamMember struct {
	Base
	TeamID string  `json:"team_id" gorm:"size:36;not null;uniqueIndex:idx_member"`
	UserID string  `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_member"`
	User   Profile `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role   string  `json:"role" gorm:"not null"`
}
