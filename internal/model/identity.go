package model

// Capability names a privileged action.
type Capability string

const (
	CapManageCatalog Capability = "catalog:manage"
	CapManageOrders  Capability = "orders:manage"
	CapViewCustomers Capability = "customers:view"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {CapManageCatalog, CapManageOrders, CapViewCustomers},
}

// Authorizer answers capability checks.
type Authorizer interface {
	Can(c Capability) bool
}

// Identity is the authenticated caller passed into every cart, order and
// admin operation.
type Identity struct {
	CustomerID int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Phone      string `json:"-"`
	Role       Role   `json:"role"`
}

// IdentityOf builds the identity for a loaded customer.
func IdentityOf(c *Customer) Identity {
	return Identity{
		CustomerID: c.ID,
		Email:      c.Email,
		Username:   c.Username,
		Phone:      c.Phone,
		Role:       c.Role,
	}
}

// Can reports whether the identity's role grants c.
func (i Identity) Can(c Capability) bool {
	for _, granted := range roleCapabilities[i.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Anonymous reports whether no customer is attached.
func (i Identity) Anonymous() bool {
	return i.CustomerID == 0
}

var _ Authorizer = Identity{}
