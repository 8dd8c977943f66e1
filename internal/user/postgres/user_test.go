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

	"github.com/thanhldv/store-backoffice/internal/core/datamodel/rbac"
	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
	"github.com/thanhldv/store-backoffice/internal/user"
	userPostgres "github.com/thanhldv/store-backoffice/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User Repository", func() {
	var (
		db   *gorm.DB
		repo user.RepositoryAPI
		ctx  context.Context
	)

	var testUserID int64

	// activeRoles returns role ids with a live assignment, and the total
	// row count per role id including soft-deleted rows.
	activeRoles := func(userID int64) (map[int64]int, map[int64]int) {
		var rows []rbac.UserRole
		Expect(db.Where("user_id = ?", userID).Find(&rows).Error).To(Succeed())

		active := map[int64]int{}
		total := map[int64]int{}
		for _, row := range rows {
			total[row.RoleID]++
			if row.DeletedAt == nil {
				active[row.RoleID]++
			}
		}
		return active, total
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

		for _, name := range []string{"store-owner", "manager", "sales-staff"} {
			Expect(db.Create(&rbac.Role{Name: name}).Error).To(Succeed())
		}

		u := &userDatamodel.User{
			Name:         "Sales One",
			Code:         "sales01",
			PasswordHash: "hash",
			Language:     "vi",
		}
		Expect(db.Omit("Store", "UserRoles").Create(u).Error).To(Succeed())
		testUserID = u.ID

		repo = userPostgres.NewUserRepository(db)
		Expect(repo.ReplaceRoles(ctx, testUserID, []int64{1, 2})).To(Succeed())
	})

	Describe("ReplaceRoles", func() {
		It("should leave exactly one active row per assigned role", func() {
			active, _ := activeRoles(testUserID)
			Expect(active).To(Equal(map[int64]int{1: 1, 2: 1}))
		})

		It("should soft-delete removed roles and insert added ones", func() {
			Expect(repo.ReplaceRoles(ctx, testUserID, []int64{3})).To(Succeed())

			active, total := activeRoles(testUserID)
			Expect(active).To(Equal(map[int64]int{3: 1}))

			// the old assignments stay as history rows
			Expect(total[1]).To(Equal(1))
			Expect(total[2]).To(Equal(1))
		})

		It("should insert a fresh row for a retained role, never reactivate", func() {
			Expect(repo.ReplaceRoles(ctx, testUserID, []int64{1, 3})).To(Succeed())

			active, total := activeRoles(testUserID)
			Expect(active).To(Equal(map[int64]int{1: 1, 3: 1}))
			Expect(total[1]).To(Equal(2))
		})

		It("should revoke everything for an empty role list", func() {
			Expect(repo.ReplaceRoles(ctx, testUserID, []int64{})).To(Succeed())

			active, total := activeRoles(testUserID)
			Expect(active).To(BeEmpty())
			Expect(total[1]).To(Equal(1))
			Expect(total[2]).To(Equal(1))
		})

		It("should accumulate history across repeated identical calls", func() {
			Expect(repo.ReplaceRoles(ctx, testUserID, []int64{1, 2})).To(Succeed())
			Expect(repo.ReplaceRoles(ctx, testUserID, []int64{1, 2})).To(Succeed())

			active, total := activeRoles(testUserID)
			Expect(active).To(Equal(map[int64]int{1: 1, 2: 1}))
			Expect(total[1]).To(Equal(3))
			Expect(total[2]).To(Equal(3))
		})
	})

	Describe("SoftDelete", func() {
		It("should hide the user and cascade over role assignments", func() {
			Expect(repo.SoftDelete(ctx, testUserID)).To(Succeed())

			u, err := repo.GetByID(ctx, testUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())

			active, _ := activeRoles(testUserID)
			Expect(active).To(BeEmpty())
		})

		It("should free the code for a new account", func() {
			Expect(repo.SoftDelete(ctx, testUserID)).To(Succeed())

			u, err := repo.GetByCode(ctx, "sales01")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())

			replacement := &userDatamodel.User{
				Name:         "Sales Two",
				Code:         "sales01",
				PasswordHash: "hash2",
				Language:     "vi",
			}
			Expect(repo.Create(ctx, replacement)).To(Succeed())

			found, err := repo.GetByCode(ctx, "sales01")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.ID).To(Equal(replacement.ID))
		})
	})

	Describe("GetByID", func() {
		It("should preload only active role assignments", func() {
			now := time.Now()
			Expect(db.Model(&rbac.UserRole{}).
				Where("user_id = ? AND role_id = ?", testUserID, 2).
				Update("deleted_at", now).Error).To(Succeed())

			u, err := repo.GetByID(ctx, testUserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.UserRoles).To(HaveLen(1))
			Expect(u.UserRoles[0].RoleID).To(Equal(int64(1)))
		})
	})

	Describe("GetAll", func() {
		It("should skip soft-deleted users", func() {
			other := &userDatamodel.User{
				Name:         "Cashier",
				Code:         "cashier01",
				PasswordHash: "hash",
				Language:     "vi",
			}
			Expect(repo.Create(ctx, other)).To(Succeed())
			Expect(repo.SoftDelete(ctx, other.ID)).To(Succeed())

			users, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Code).To(Equal("sales01"))
		})
	})
})
