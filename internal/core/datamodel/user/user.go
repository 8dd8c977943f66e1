package user

import (
	"time"

	"github.com/thanhldv/store-backoffice/internal/core/datamodel/rbac"
)

const DefaultLanguage = "vi"

// User is the persistence model for a back-office account. Deletion is
// always logical: DeletedAt non-nil means the row is inactive but kept
// for history. Uniqueness of Code is only guaranteed among active rows.
type User struct {
	ID           int64           `gorm:"primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Code         string          `gorm:"column:code;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	StoreID      *int64          `gorm:"column:store_id"`
	Store        *Store          `gorm:"foreignKey:StoreID"`
	Language     string          `gorm:"column:language;default:vi"`
	UserRoles    []rbac.UserRole `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
	DeletedAt    *time.Time      `gorm:"column:deleted_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.DeletedAt == nil
}

// Store is shared reference data; user rows carry an optional affiliation.
type Store struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Address   string    `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Store) TableName() string {
	return "stores"
}
