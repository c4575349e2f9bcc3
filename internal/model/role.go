package model

import "strings"

// Role is the normalized access level of a session.
type Role string

const (
	RoleGuest         Role = "guest"
	RoleClient        Role = "client"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// ParseRole resolves a stored role label. The legacy database carries the
// Russian labels. Only the guest labels map to guest: an existing user with an
// empty or unknown label is a client.
func ParseRole(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "guest", "гость":
		return RoleGuest
	case "manager", "менеджер":
		return RoleManager
	case "admin", "administrator", "администратор":
		return RoleAdministrator
	default:
		return RoleClient
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleClient, RoleManager, RoleAdministrator:
		return true
	}
	return false
}

// CanFilterCatalog reports whether search, supplier filter and sorting apply.
func (r Role) CanFilterCatalog() bool {
	return r == RoleManager || r == RoleAdministrator
}

func (r Role) CanViewOrders() bool {
	return r == RoleManager || r == RoleAdministrator
}

// CanManage covers product, order and user mutations.
func (r Role) CanManage() bool {
	return r == RoleAdministrator
}
