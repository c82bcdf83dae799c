package domain

// Role is the role of an authenticated caller
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

// Identity is the caller resolved by the upstream gateway
type Identity struct {
	UserID int64
	Role   Role
	Email  *string
	Phone  *string
}

// IsVendor returns true for vendor accounts
func (i *Identity) IsVendor() bool {
	return i != nil && i.Role == RoleVendor
}
