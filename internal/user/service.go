package user

import (
	"context"
	"fmt"

	"github.com/thanhldv/store-backoffice/internal/core/events"

	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	bus    *events.EventBus
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, bus *events.EventBus) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		bus:    bus,
	}
}

// Create registers a new user. The code must be unique among active
// users; soft-deleted rows do not block reuse.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, fmt.Errorf("check code uniqueness: %w", err)
	}
	if existing != nil {
		return nil, ErrCodeConflict
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	language := dto.Language
	if language == "" {
		language = userDatamodel.DefaultLanguage
	}

	u := &userDatamodel.User{
		Name:         dto.Name,
		Code:         dto.Code,
		PasswordHash: hash,
		StoreID:      dto.StoreID,
		Language:     language,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if len(dto.RoleIDs) > 0 {
		if err := s.repo.ReplaceRoles(ctx, u.ID, dto.RoleIDs); err != nil {
			return nil, fmt.Errorf("assign roles: %w", err)
		}
		s.publishRolesReassigned(ctx, u.ID, dto.RoleIDs)
	}

	return s.reload(ctx, u.ID)
}

// Update mutates profile fields and, when RoleIDs is provided, replaces
// the user's role assignments.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*Response, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}

	if dto.Code != nil && *dto.Code != u.Code {
		conflict, err := s.repo.GetByCode(ctx, *dto.Code)
		if err != nil {
			return nil, fmt.Errorf("check code uniqueness: %w", err)
		}
		if conflict != nil && conflict.ID != id {
			return nil, ErrCodeConflict
		}
		u.Code = *dto.Code
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.StoreID != nil {
		u.StoreID = dto.StoreID
	}
	if dto.Language != nil {
		u.Language = *dto.Language
	}
	if dto.Password != nil {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if dto.RoleIDs != nil {
		if err := s.repo.ReplaceRoles(ctx, id, *dto.RoleIDs); err != nil {
			return nil, fmt.Errorf("replace roles: %w", err)
		}
		s.publishRolesReassigned(ctx, id, *dto.RoleIDs)
	}

	return s.reload(ctx, id)
}

// Delete soft-deletes the user; its active role assignments are
// soft-deleted in the same transaction by the repository.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return ErrNotFound
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewUserDeletedEvent(id))
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Response, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return ToResponse(u), nil
}

func (s *Service) GetAll(ctx context.Context) ([]*Response, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*Response, 0, len(users))
	for _, u := range users {
		out = append(out, ToResponse(u))
	}
	return out, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*Response, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return ToResponse(u), nil
}

func (s *Service) publishRolesReassigned(ctx context.Context, userID int64, roleIDs []int64) {
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewRolesReassignedEvent(userID, roleIDs))
	}
}
