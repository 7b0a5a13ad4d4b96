package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/ariefcatur/go-custom-goods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newService(now *time.Time) (*auth.Service, *testutil.Denylist) {
	deny := &testutil.Denylist{}
	return &auth.Service{
		Store:   testutil.NewAdminStore("admin", "s3cret"),
		Revoked: deny,
		Secret:  []byte("test-secret"),
		TTL:     time.Hour,
		Issuer:  "storefront-api",
		Cost:    bcrypt.MinCost,
		Now:     func() time.Time { return *now },
	}, deny
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	now := t0

	t.Run("valid credentials", func(t *testing.T) {
		svc, _ := newService(&now)

		admin, tok, err := svc.Login(ctx, " admin ", "s3cret")

		require.NoError(t, err)
		assert.Equal(t, "admin", admin.Name)
		assert.NotZero(t, admin.ID)
		assert.NotEmpty(t, tok.Value)
		assert.Equal(t, t0.Add(time.Hour), tok.ExpiresAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newService(&now)

		admin, tok, err := svc.Login(ctx, "admin", "wrong")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrAuth)
		assert.Equal(t, auth.Admin{}, admin)
		assert.Empty(t, tok.Value)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newService(&now)

		_, _, err := svc.Login(ctx, "root", "s3cret")

		assert.ErrorIs(t, err, apperr.ErrAuth)
		assert.Equal(t, "Invalid username or password", apperr.Message(err, ""))
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newService(&now)

		_, _, err := svc.Login(ctx, "admin", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, _, err = svc.Login(ctx, "  ", "s3cret")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, _ := newService(&now)
		svc.Store.(*testutil.AdminStore).Err = errors.New("connection refused")

		_, _, err := svc.Login(ctx, "admin", "s3cret")

		assert.ErrorIs(t, err, apperr.ErrStore)
		assert.Equal(t, "Server error during login", apperr.Message(err, ""))
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	now := t0
	svc, _ := newService(&now)

	_, tok, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Name)
	assert.Equal(t, "storefront-api", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	t.Run("foreign signature", func(t *testing.T) {
		other, _ := newService(&now)
		other.Secret = []byte("another-secret")
		_, forged, err := other.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)

		_, err = svc.Verify(ctx, forged.Value)
		assert.ErrorIs(t, err, apperr.ErrAuth)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, apperr.ErrAuth)
	})

	t.Run("expired", func(t *testing.T) {
		now = t0.Add(2 * time.Hour)
		defer func() { now = t0 }()

		_, err := svc.Verify(ctx, tok.Value)
		assert.ErrorIs(t, err, apperr.ErrAuth)
	})
}

func TestEmptySecretRejectsTokens(t *testing.T) {
	ctx := context.Background()
	now := t0
	svc, _ := newService(&now)
	_, tok, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)

	svc.Secret = nil
	_, err = svc.Verify(ctx, tok.Value)
	assert.ErrorIs(t, err, apperr.ErrAuth)

	_, _, err = svc.Login(ctx, "admin", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrStore)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	now := t0
	svc, deny := newService(&now)

	_, tok, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	claims, err := svc.Verify(ctx, tok.Value)
	require.NoError(t, err)

	now = t0.Add(15 * time.Minute)
	require.NoError(t, svc.Logout(ctx, claims))

	assert.Equal(t, 45*time.Minute, deny.Revoked[claims.ID])
	_, err = svc.Verify(ctx, tok.Value)
	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Equal(t, "Session has been logged out", apperr.Message(err, ""))
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	now := t0
	svc, _ := newService(&now)

	_, err := svc.SetPassword(ctx, "admin", "rotated")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "admin", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrAuth)
	_, _, err = svc.Login(ctx, "admin", "rotated")
	assert.NoError(t, err)

	_, err = svc.SetPassword(ctx, "", "x")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
