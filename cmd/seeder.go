package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var clearData bool

// rolePermissions declares which permission each seeded role carries.
// store-owner gets everything; the rest get the subset their job needs.
var seedRolePermissions = map[string][]string{
	"store-owner": {
		"overview-access", "order-management", "inventory-management",
		"pos-sales", "warehouse-management", "customer-management",
		"supplier-management", "cash-flow-management", "reporting",
		"system-settings",
	},
	"manager": {
		"overview-access", "order-management", "inventory-management",
		"pos-sales", "warehouse-management", "customer-management",
		"supplier-management", "cash-flow-management", "reporting",
	},
	"sales-staff": {
		"overview-access", "order-management", "pos-sales",
		"customer-management",
	},
	"warehouse-manager": {
		"overview-access", "inventory-management", "warehouse-management",
		"supplier-management", "reporting",
	},
	"cashier": {
		"overview-access", "pos-sales", "cash-flow-management",
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission vocabulary and an admin user",
	Long:  `Seed the database with the default store, permissions, roles and an admin account for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
			Conn: sqlxDB.DB,
		}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_roles", "role_permissions", "users", "roles", "permissions", "stores"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := seedAll(db); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}

		fmt.Println("Seeding complete")
	},
}

func seedAll(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO stores (name, code, created_at, updated_at) VALUES (?, ?, now(), now()) ON CONFLICT (code) DO NOTHING",
			"Main Store", "main",
		).Error; err != nil {
			return fmt.Errorf("seed store: %w", err)
		}

		var storeID int64
		if err := tx.Raw("SELECT id FROM stores WHERE code = ?", "main").Scan(&storeID).Error; err != nil {
			return fmt.Errorf("lookup store: %w", err)
		}

		for _, name := range seedRolePermissions["store-owner"] {
			if err := tx.Exec(
				"INSERT INTO permissions (name, created_at) VALUES (?, now()) ON CONFLICT (name) DO NOTHING",
				name,
			).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", name, err)
			}
		}

		for roleName, permNames := range seedRolePermissions {
			if err := tx.Exec(
				"INSERT INTO roles (name, created_at) VALUES (?, now()) ON CONFLICT (name) DO NOTHING",
				roleName,
			).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", roleName, err)
			}

			for _, permName := range permNames {
				if err := tx.Exec(`
					INSERT INTO role_permissions (role_id, permission_id, created_at)
					SELECT r.id, p.id, now()
					FROM roles r, permissions p
					WHERE r.name = ? AND p.name = ?
					  AND NOT EXISTS (
						SELECT 1 FROM role_permissions rp
						WHERE rp.role_id = r.id AND rp.permission_id = p.id
						  AND rp.deleted_at IS NULL
					  )`,
					roleName, permName,
				).Error; err != nil {
					return fmt.Errorf("link %s to %s: %w", roleName, permName, err)
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}

		var exists int
		row := tx.Raw("SELECT 1 FROM users WHERE code = ? AND deleted_at IS NULL", "admin").Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists; skipping")
			return nil
		}

		if err := tx.Exec(
			"INSERT INTO users (name, code, password_hash, store_id, language, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
			"Administrator", "admin", string(hash), storeID, "vi",
		).Error; err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}

		if err := tx.Exec(`
			INSERT INTO user_roles (user_id, role_id, created_at)
			SELECT u.id, r.id, now()
			FROM users u, roles r
			WHERE u.code = ? AND r.name = ?`,
			"admin", "store-owner",
		).Error; err != nil {
			return fmt.Errorf("assign store-owner to admin: %w", err)
		}

		fmt.Println("Seeded admin user: admin")
		return nil
	})
}
