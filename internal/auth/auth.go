package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/thanhldv/store-backoffice/internal/core/datamodel/user"
)

// Identity is the fully-typed authenticated principal attached to a
// request after token verification and identity re-resolution. It is an
// immutable per-request snapshot of the user's role/permission graph,
// never shared across requests.
type Identity struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Store       *StoreRef `json:"store,omitempty"`
	Language    string    `json:"language"`
	Roles       []RoleRef `json:"roles"`
	Permissions []string  `json:"-"`
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

// HasAnyPermission reports whether the identity holds at least one of the
// given permissions.
func (i *Identity) HasAnyPermission(permissions []string) bool {
	for _, have := range i.Permissions {
		for _, want := range permissions {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (i *Identity) HasPermission(permission string) bool {
	return i.HasAnyPermission([]string{permission})
}

// Claims is the minimal identity payload embedded in a bearer token:
// employee code plus registered sub/iat/exp.
type Claims struct {
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into the numeric user id.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// RepositoryAPI is the narrow contract with the credential store: load an
// active user by code together with its active role/permission graph.
// An absent user is (nil, nil), not an error.
type RepositoryAPI interface {
	FindByCode(ctx context.Context, code string) (*userDatamodel.User, error)
}

// TokenGeneratorAPI issues and verifies bearer tokens. Verification is a
// pure cryptographic/structural check and never touches storage.
type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// ServiceAPI is what the HTTP layer depends on.
type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	IdentityByCode(ctx context.Context, code string) (*Identity, error)
	HashPassword(password string) (string, error)
}

type LoginResult struct {
	AccessToken string
	Identity    *Identity
}

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// VerifyPassword compares a bcrypt hash against a candidate password in
// constant time.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IdentityFromModel flattens a loaded user graph into a per-request
// Identity snapshot. Only active role assignments contribute roles, and
// the permission set is the deduplicated union over all active paths.
func IdentityFromModel(u *userDatamodel.User) *Identity {
	if u == nil {
		return nil
	}

	id := &Identity{
		ID:          u.ID,
		Code:        u.Code,
		Name:        u.Name,
		Language:    u.Language,
		Roles:       make([]RoleRef, 0, len(u.UserRoles)),
		Permissions: EffectivePermissions(u),
	}

	if u.Store != nil {
		id.Store = &StoreRef{
			ID:      u.Store.ID,
			Name:    u.Store.Name,
			Address: u.Store.Address,
		}
	}

	for _, ur := range u.UserRoles {
		if !ur.IsActive() {
			continue
		}
		id.Roles = append(id.Roles, RoleRef{
			ID:          ur.Role.ID,
			Name:        ur.Role.Name,
			Description: ur.Role.Description,
		})
	}

	return id
}

// tokenTTLDefault is the validity window used when none is configured.
const tokenTTLDefault = 24 * time.Hour
