package auth

import (
	"fmt"
	"sort"
	"strings"

	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

// The fixed capability vocabulary. Seed data installs these names;
// routes declare their requirements from this list.
const (
	PermOverviewAccess     = "overview-access"
	PermOrderManagement    = "order-management"
	PermInventory          = "inventory-management"
	PermPOSSales           = "pos-sales"
	PermWarehouse          = "warehouse-management"
	PermCustomerManagement = "customer-management"
	PermSupplierManagement = "supplier-management"
	PermCashFlow           = "cash-flow-management"
	PermReporting          = "reporting"
	PermSystemSettings     = "system-settings"
)

// EffectivePermissions walks every active UserRole and every active
// RolePermission under its role, collecting permission names into a
// deduplicated set. It is a pure function over the loaded graph; the
// soft-delete filter is applied again at each hop even though the
// repository already filters, so a stale or wider load can never widen
// the result.
func EffectivePermissions(u *userDatamodel.User) []string {
	if u == nil || !u.IsActive() {
		return nil
	}

	seen := make(map[string]struct{})
	for _, ur := range u.UserRoles {
		if !ur.IsActive() {
			continue
		}
		for _, rp := range ur.Role.RolePermissions {
			if !rp.IsActive() {
				continue
			}
			seen[rp.Permission.Name] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	perms := make([]string, 0, len(seen))
	for name := range seen {
		perms = append(perms, name)
	}
	sort.Strings(perms)
	return perms
}

// PermissionDeniedError reports which permissions an endpoint required.
// It deliberately does not reveal which permissions the caller holds.
type PermissionDeniedError struct {
	Required []string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("access denied. required permissions: %s", strings.Join(e.Required, ", "))
}

// Authorize is the request gate. An endpoint with no declared
// permissions is open; otherwise the caller must be authenticated and
// hold at least one of the required permissions (OR semantics).
func Authorize(identity *Identity, required ...string) error {
	if len(required) == 0 {
		return nil
	}
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.HasAnyPermission(required) {
		return nil
	}
	return &PermissionDeniedError{Required: required}
}
