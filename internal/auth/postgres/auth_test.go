package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thanhldv/store-backoffice/internal/auth"
	authPostgres "github.com/thanhldv/store-backoffice/internal/auth/postgres"
	"github.com/thanhldv/store-backoffice/internal/core/datamodel/rbac"
	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

func TestAuthPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Postgres Suite")
}

var _ = Describe("Auth Repository", func() {
	var (
		db   *gorm.DB
		repo auth.RepositoryAPI
		ctx  context.Context
	)

	// seeded ids
	var (
		adminID     int64
		ownerRoleID int64
		permIDs     map[string]int64
	)

	seedGraph := func() {
		store := &userDatamodel.Store{Name: "Main Store", Code: "main"}
		Expect(db.Create(store).Error).To(Succeed())

		permIDs = map[string]int64{}
		for _, name := range []string{auth.PermOverviewAccess, auth.PermPOSSales, auth.PermSystemSettings} {
			p := &rbac.Permission{Name: name}
			Expect(db.Create(p).Error).To(Succeed())
			permIDs[name] = p.ID
		}

		owner := &rbac.Role{Name: "store-owner"}
		Expect(db.Create(owner).Error).To(Succeed())
		ownerRoleID = owner.ID

		for _, name := range []string{auth.PermOverviewAccess, auth.PermPOSSales, auth.PermSystemSettings} {
			Expect(db.Create(&rbac.RolePermission{
				RoleID:       ownerRoleID,
				PermissionID: permIDs[name],
			}).Error).To(Succeed())
		}

		admin := &userDatamodel.User{
			Name:         "Administrator",
			Code:         "admin",
			PasswordHash: "irrelevant-here",
			StoreID:      &store.ID,
			Language:     "vi",
		}
		Expect(db.Omit("Store", "UserRoles").Create(admin).Error).To(Succeed())
		adminID = admin.ID

		Expect(db.Omit("Role").Create(&rbac.UserRole{
			UserID: adminID,
			RoleID: ownerRoleID,
		}).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&userDatamodel.Store{},
			&userDatamodel.User{},
			&rbac.Role{},
			&rbac.Permission{},
			&rbac.UserRole{},
			&rbac.RolePermission{},
		)
		Expect(err).NotTo(HaveOccurred())

		seedGraph()
		repo = authPostgres.NewRepository(db)
	})

	Describe("FindByCode", func() {
		It("should load the user with its full active graph", func() {
			u, err := repo.FindByCode(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).NotTo(BeNil())
			Expect(u.Code).To(Equal("admin"))
			Expect(u.Store).NotTo(BeNil())
			Expect(u.Store.Name).To(Equal("Main Store"))
			Expect(u.UserRoles).To(HaveLen(1))
			Expect(u.UserRoles[0].Role.Name).To(Equal("store-owner"))
			Expect(u.UserRoles[0].Role.RolePermissions).To(HaveLen(3))

			Expect(auth.EffectivePermissions(u)).To(ConsistOf(
				auth.PermOverviewAccess, auth.PermPOSSales, auth.PermSystemSettings,
			))
		})

		It("should return nil without error for an unknown code", func() {
			u, err := repo.FindByCode(ctx, "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())
		})

		It("should treat a soft-deleted user as absent", func() {
			now := time.Now()
			Expect(db.Model(&userDatamodel.User{}).
				Where("id = ?", adminID).
				Update("deleted_at", now).Error).To(Succeed())

			u, err := repo.FindByCode(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())
		})

		It("should drop a soft-deleted role assignment from the graph", func() {
			now := time.Now()
			Expect(db.Model(&rbac.UserRole{}).
				Where("user_id = ?", adminID).
				Update("deleted_at", now).Error).To(Succeed())

			u, err := repo.FindByCode(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).NotTo(BeNil())
			Expect(u.UserRoles).To(BeEmpty())
			Expect(auth.EffectivePermissions(u)).To(BeEmpty())
		})

		It("should drop a soft-deleted role-permission link but keep the rest", func() {
			now := time.Now()
			Expect(db.Model(&rbac.RolePermission{}).
				Where("role_id = ? AND permission_id = ?", ownerRoleID, permIDs[auth.PermSystemSettings]).
				Update("deleted_at", now).Error).To(Succeed())

			u, err := repo.FindByCode(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).NotTo(BeNil())
			Expect(auth.EffectivePermissions(u)).To(ConsistOf(
				auth.PermOverviewAccess, auth.PermPOSSales,
			))
		})

		It("should see a permission restored through a second role", func() {
			cashier := &rbac.Role{Name: "cashier"}
			Expect(db.Create(cashier).Error).To(Succeed())
			Expect(db.Create(&rbac.RolePermission{
				RoleID:       cashier.ID,
				PermissionID: permIDs[auth.PermPOSSales],
			}).Error).To(Succeed())
			Expect(db.Omit("Role").Create(&rbac.UserRole{
				UserID: adminID,
				RoleID: cashier.ID,
			}).Error).To(Succeed())

			now := time.Now()
			Expect(db.Model(&rbac.UserRole{}).
				Where("user_id = ? AND role_id = ?", adminID, ownerRoleID).
				Update("deleted_at", now).Error).To(Succeed())

			u, err := repo.FindByCode(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.EffectivePermissions(u)).To(ConsistOf(auth.PermPOSSales))
		})
	})
})
