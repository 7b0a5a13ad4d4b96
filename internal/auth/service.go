package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	FindAdmin(ctx context.Context, name string) (Credential, error)
	SaveAdmin(ctx context.Context, name, passwordHash string) (Admin, error)
}

// Revoker is satisfied by *redisx.Denylist.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

var errBadCredentials = apperr.Auth("Invalid username or password")

// Service checks admin credentials and issues HS256 session tokens.
// Revoked is optional; without it logout only ends the client session.
type Service struct {
	Store   Store
	Revoked Revoker
	Secret  []byte
	TTL     time.Duration
	Issuer  string
	Cost    int
	Now     func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// Login verifies username and password and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (Admin, Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Admin{}, Token{}, apperr.Validation("Username and password are required")
	}

	cred, err := s.Store.FindAdmin(ctx, username)
	if errors.Is(err, ErrNoAdmin) {
		// keep unknown-user timing close to a wrong password
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return Admin{}, Token{}, errBadCredentials
	}
	if err != nil {
		return Admin{}, Token{}, apperr.Store("Server error during login", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return Admin{}, Token{}, errBadCredentials
	}

	tok, err := s.issue(cred.Admin)
	if err != nil {
		return Admin{}, Token{}, apperr.Store("Server error during login", err)
	}
	return cred.Admin, tok, nil
}

// Verify parses and validates a token and checks it has not been logged out.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	if len(s.Secret) == 0 {
		return nil, apperr.Auth("Invalid or expired token")
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, apperr.Auth("Invalid or expired token")
	}

	if s.Revoked != nil {
		revoked, err := s.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.Store("Error checking session", err)
		}
		if revoked {
			return nil, apperr.Auth("Session has been logged out")
		}
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.Revoked == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.Revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Store("Error logging out", err)
	}
	return nil
}

// SetPassword stores a bcrypt hash for name, creating the admin if needed.
func (s *Service) SetPassword(ctx context.Context, name, password string) (Admin, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Admin{}, apperr.Validation("Username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return Admin{}, apperr.Validation("Password cannot be hashed: " + err.Error())
	}
	a, err := s.Store.SaveAdmin(ctx, name, string(hash))
	if err != nil {
		return Admin{}, apperr.Wrap("Error saving admin", err)
	}
	return a, nil
}

func (s *Service) issue(a Admin) (Token, error) {
	if len(s.Secret) == 0 {
		return Token{}, errors.New("no signing secret configured")
	}
	now := s.now()
	exp := now.Add(s.TTL)
	claims := Claims{
		UserID: a.ID,
		Name:   a.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.Issuer,
			Subject:   a.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) cost() int {
	if s.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return s.Cost
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost())
	})
	return s.dummyHash
}
