package auth

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/thanhldv/store-backoffice/internal/core/datamodel/rbac"
	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

// graph builders keep the test bodies readable
func activeAssignment(roleID int64, roleName string, perms ...string) rbac.UserRole {
	role := rbac.Role{ID: roleID, Name: roleName}
	for i, p := range perms {
		role.RolePermissions = append(role.RolePermissions, rbac.RolePermission{
			ID:           roleID*100 + int64(i),
			RoleID:       roleID,
			PermissionID: int64(i + 1),
			Permission:   rbac.Permission{ID: int64(i + 1), Name: p},
		})
	}
	return rbac.UserRole{ID: roleID, RoleID: roleID, Role: role}
}

func deletedAt(t time.Time) *time.Time { return &t }

var _ = ginkgo.Describe("EffectivePermissions", func() {
	var now time.Time

	ginkgo.BeforeEach(func() {
		now = time.Now()
	})

	ginkgo.It("should return nil for a nil user", func() {
		gomega.Expect(EffectivePermissions(nil)).To(gomega.BeNil())
	})

	ginkgo.It("should return nil for a soft-deleted user regardless of the graph", func() {
		u := &userDatamodel.User{
			ID:        1,
			DeletedAt: deletedAt(now),
			UserRoles: []rbac.UserRole{activeAssignment(1, "manager", PermOverviewAccess)},
		}
		gomega.Expect(EffectivePermissions(u)).To(gomega.BeNil())
	})

	ginkgo.It("should union permissions across roles and deduplicate", func() {
		u := &userDatamodel.User{
			ID: 1,
			UserRoles: []rbac.UserRole{
				activeAssignment(1, "sales-staff", PermOverviewAccess, PermPOSSales, PermOrderManagement),
				activeAssignment(2, "cashier", PermOverviewAccess, PermPOSSales, PermCashFlow),
			},
		}

		perms := EffectivePermissions(u)
		gomega.Expect(perms).To(gomega.ConsistOf(
			PermOverviewAccess, PermPOSSales, PermOrderManagement, PermCashFlow,
		))
	})

	ginkgo.It("should exclude every permission under a soft-deleted role assignment", func() {
		revoked := activeAssignment(1, "manager", PermInventory, PermWarehouse)
		revoked.DeletedAt = deletedAt(now)

		u := &userDatamodel.User{
			ID: 1,
			UserRoles: []rbac.UserRole{
				revoked,
				activeAssignment(2, "cashier", PermPOSSales),
			},
		}

		gomega.Expect(EffectivePermissions(u)).To(gomega.ConsistOf(PermPOSSales))
	})

	ginkgo.It("should exclude a soft-deleted role-permission link but keep its siblings", func() {
		assignment := activeAssignment(1, "manager", PermInventory, PermReporting)
		assignment.Role.RolePermissions[0].DeletedAt = deletedAt(now)

		u := &userDatamodel.User{
			ID:        1,
			UserRoles: []rbac.UserRole{assignment},
		}

		gomega.Expect(EffectivePermissions(u)).To(gomega.ConsistOf(PermReporting))
	})

	ginkgo.It("should keep a permission reachable through another active path", func() {
		revoked := activeAssignment(1, "manager", PermOverviewAccess)
		revoked.Role.RolePermissions[0].DeletedAt = deletedAt(now)

		u := &userDatamodel.User{
			ID: 1,
			UserRoles: []rbac.UserRole{
				revoked,
				activeAssignment(2, "cashier", PermOverviewAccess),
			},
		}

		gomega.Expect(EffectivePermissions(u)).To(gomega.ConsistOf(PermOverviewAccess))
	})

	ginkgo.It("should return nil when no active path remains", func() {
		u := &userDatamodel.User{ID: 1}
		gomega.Expect(EffectivePermissions(u)).To(gomega.BeNil())
	})
})

var _ = ginkgo.Describe("Authorize", func() {
	identityWith := func(perms ...string) *Identity {
		return &Identity{ID: 1, Code: "admin", Permissions: perms}
	}

	ginkgo.It("should allow any identity through an endpoint with no requirements", func() {
		gomega.Expect(Authorize(identityWith())).To(gomega.Succeed())
		gomega.Expect(Authorize(nil)).To(gomega.Succeed())
	})

	ginkgo.It("should reject a missing identity on a protected endpoint", func() {
		gomega.Expect(Authorize(nil, PermReporting)).To(gomega.MatchError(ErrUnauthenticated))
	})

	ginkgo.It("should allow when at least one required permission is held", func() {
		id := identityWith(PermOverviewAccess, PermPOSSales)
		gomega.Expect(Authorize(id, PermPOSSales)).To(gomega.Succeed())
		gomega.Expect(Authorize(id, PermPOSSales, PermSystemSettings)).To(gomega.Succeed())
	})

	ginkgo.It("should deny when none of the required permissions are held", func() {
		id := identityWith(PermOverviewAccess, PermPOSSales)

		err := Authorize(id, PermSystemSettings)
		var denied *PermissionDeniedError
		gomega.Expect(err).To(gomega.BeAssignableToTypeOf(denied))
	})

	ginkgo.It("should report only the required permissions in the denial", func() {
		id := identityWith(PermOverviewAccess)

		err := Authorize(id, PermSystemSettings, PermReporting)
		denied, ok := err.(*PermissionDeniedError)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(denied.Required).To(gomega.Equal([]string{PermSystemSettings, PermReporting}))
		gomega.Expect(denied.Error()).To(gomega.ContainSubstring("required permissions: system-settings, reporting"))
		gomega.Expect(denied.Error()).ToNot(gomega.ContainSubstring(PermOverviewAccess))
	})
})
