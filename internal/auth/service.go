package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/thanhldv/store-backoffice/internal/core/events"
)

// Service is the credential verifier and identity resolver front.
type Service struct {
	repo       RepositoryAPI
	tokenGen   TokenGeneratorAPI
	bcryptCost int
	bus        *events.EventBus
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, bus *events.EventBus) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		bus:        bus,
	}
}

// Authenticate validates a code/password pair and issues an access token.
// Unknown code and wrong password are indistinguishable in the returned
// error; the password hash comparison is skipped for absent users,
// matching the reference behavior.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByCode(ctx, dto.Code)
	if err != nil {
		return nil, fmt.Errorf("load user for login: %w", err)
	}

	if u == nil {
		s.publishLoginFailed(ctx, dto.Code)
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.publishLoginFailed(ctx, dto.Code)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenGen.GenerateAccessToken(u.ID, u.Code)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewLoginSucceededEvent(u.ID, u.Code))
	}

	return &LoginResult{
		AccessToken: token,
		Identity:    IdentityFromModel(u),
	}, nil
}

// ValidateAccessToken verifies signature and expiry and returns the
// decoded claim. No storage access happens here.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// IdentityByCode re-resolves the current role/permission graph for an
// authenticated claim. It is called on every protected request so that a
// revocation takes effect on the very next request. Absent or deleted
// user yields (nil, nil); the caller decides semantics.
func (s *Service) IdentityByCode(ctx context.Context, code string) (*Identity, error) {
	u, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return IdentityFromModel(u), nil
}

// HashPassword creates a bcrypt hash with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) publishLoginFailed(ctx context.Context, code string) {
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewLoginFailedEvent(code))
	}
}

// JWTTokenGenerator signs and verifies HS256 bearer tokens. The clock is
// injectable so expiry boundaries can be tested deterministically.
type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = tokenTTLDefault
	}
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the generator's time source. Test hook.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

// GenerateAccessToken embeds the minimal claim {code, sub} plus
// issued-at and expiry.
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, code string) (string, error) {
	issuedAt := j.now()

	claims := &Claims{
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken parses and verifies a token, distinguishing malformed,
// tampered and expired tokens. The distinction is for diagnostics;
// callers surface all three uniformly as an authentication failure.
// A token checked at exactly its expiry instant counts as expired.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrInvalidToken
		}
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
