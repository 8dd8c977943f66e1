package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

// Repository loads the identity graph with GORM. Every hop of the
// User → UserRole → Role → RolePermission → Permission chain is filtered
// on its own deleted_at independently.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode fetches the active user for code with its active role and
// permission graph eagerly loaded. Returns (nil, nil) when no active
// user matches.
func (r *Repository) FindByCode(ctx context.Context, code string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("UserRoles", "deleted_at IS NULL").
		Preload("UserRoles.Role").
		Preload("UserRoles.Role.RolePermissions", "deleted_at IS NULL").
		Preload("UserRoles.Role.RolePermissions.Permission").
		Where("code = ? AND deleted_at IS NULL", code).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
