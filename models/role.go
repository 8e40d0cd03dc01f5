package models

// Role is the single-valued view of the two storage flags is_admin/is_employee.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// RoleFromFlags maps the storage representation to a Role. A row with both
// flags set logs in as admin, matching the admin login filter.
func RoleFromFlags(isAdmin, isEmployee bool) Role {
	switch {
	case isAdmin:
		return RoleAdmin
	case isEmployee:
		return RoleEmployee
	default:
		return RoleCustomer
	}
}

// Flags returns the is_admin/is_employee pair stored for the role.
func (r Role) Flags() (isAdmin, isEmployee bool) {
	switch r {
	case RoleAdmin:
		return true, false
	case RoleEmployee:
		return false, true
	default:
		return false, false
	}
}

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleEmployee || r == RoleAdmin
}

// IsStaff reports whether the role may act on orders as an employee.
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleAdmin
}
