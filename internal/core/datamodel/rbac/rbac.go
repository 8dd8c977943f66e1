package rbac

import "time"

// Role is static reference data seeded at bootstrap. RolePermissions is
// the association used for eager loading a role's grants; callers must
// filter it on deleted_at themselves.
type Role struct {
	ID              int64            `gorm:"primaryKey"`
	Name            string           `gorm:"column:name;uniqueIndex;not null"`
	Description     string           `gorm:"column:description"`
	RolePermissions []RolePermission `gorm:"foreignKey:RoleID"`
	CreatedAt       time.Time        `gorm:"column:created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is a flat named capability, the unit authorization
// decisions are made against.
type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// UserRole links a user to a role. The join row carries its own
// soft-delete marker, independent of the user's. At most one active row
// may exist per (user, role) pair; reassignment soft-deletes the old row
// and inserts a fresh one, it never reactivates.
type UserRole struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null"`
	RoleID    int64      `gorm:"column:role_id;not null"`
	Role      Role       `gorm:"foreignKey:RoleID"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (ur *UserRole) IsActive() bool {
	return ur.DeletedAt == nil
}

// RolePermission links a role to a permission with the same soft-delete
// discipline as UserRole.
type RolePermission struct {
	ID           int64      `gorm:"primaryKey"`
	RoleID       int64      `gorm:"column:role_id;not null"`
	PermissionID int64      `gorm:"column:permission_id;not null"`
	Permission   Permission `gorm:"foreignKey:PermissionID"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

func (rp *RolePermission) IsActive() bool {
	return rp.DeletedAt == nil
}
