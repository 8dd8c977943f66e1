package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	rbacDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/rbac"
	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

// UserRepository implements the user.RepositoryAPI interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("UserRoles", "deleted_at IS NULL").
		Preload("UserRoles.Role").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByCode(ctx context.Context, code string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
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

func (r *UserRepository) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("UserRoles", "deleted_at IS NULL").
		Preload("UserRoles.Role").
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Omit("Store", "UserRoles").Create(u).Error
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	u.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Omit("Store", "UserRoles").Save(u).Error
}

// SoftDelete marks the user deleted and cascades a soft delete over its
// active role assignments. Both writes happen in one transaction so a
// concurrent graph read never sees a deleted user with live roles.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&userDatamodel.User{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&rbacDatamodel.UserRole{}).
			Where("user_id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", now).Error
	})
}

// ReplaceRoles soft-deletes every active assignment and inserts fresh
// rows for roleIDs inside one transaction. A repeated identical call
// still inserts new rows; soft-deleted rows are never reactivated.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rbacDatamodel.UserRole{}).
			Where("user_id = ? AND deleted_at IS NULL", userID).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		if len(roleIDs) == 0 {
			return nil
		}

		assignments := make([]rbacDatamodel.UserRole, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			assignments = append(assignments, rbacDatamodel.UserRole{
				UserID:    userID,
				RoleID:    roleID,
				CreatedAt: now,
			})
		}
		return tx.Omit("Role").Create(&assignments).Error
	})
}
