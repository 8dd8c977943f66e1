package user

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrCodeConflict = errors.New("user with this code already exists")
)

// RepositoryAPI is the credential-store contract for user management.
// All reads see only active rows; all deletes are logical.
type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByCode(ctx context.Context, code string) (*userDatamodel.User, error)
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	// SoftDelete marks the user deleted and cascades a soft delete over
	// its active role assignments inside one transaction.
	SoftDelete(ctx context.Context, id int64) error
	// ReplaceRoles soft-deletes the user's active role rows and inserts
	// fresh rows for roleIDs, atomically. Previously soft-deleted rows
	// are never reactivated.
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

// PasswordHasher is satisfied by the auth service; user management never
// touches bcrypt directly.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Response is the API view of a user. The password hash never leaves the
// service layer.
type Response struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	StoreID   *int64     `json:"store_id,omitempty"`
	Store     *StoreRef  `json:"store,omitempty"`
	Language  string     `json:"language"`
	Roles     []RoleRef  `json:"roles"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type StoreRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type RoleRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToResponse flattens the persistence model, keeping only active role
// assignments.
func ToResponse(u *userDatamodel.User) *Response {
	resp := &Response{
		ID:        u.ID,
		Name:      u.Name,
		Code:      u.Code,
		StoreID:   u.StoreID,
		Language:  u.Language,
		Roles:     make([]RoleRef, 0, len(u.UserRoles)),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if u.Store != nil {
		resp.Store = &StoreRef{
			ID:      u.Store.ID,
			Name:    u.Store.Name,
			Address: u.Store.Address,
		}
	}

	for _, ur := range u.UserRoles {
		if !ur.IsActive() {
			continue
		}
		resp.Roles = append(resp.Roles, RoleRef{
			ID:          ur.Role.ID,
			Name:        ur.Role.Name,
			Description: ur.Role.Description,
		})
	}

	return resp
}
