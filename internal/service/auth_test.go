package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/orderdesk/internal/auth/token"
	"github.com/orderdesk/orderdesk/internal/cache"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/support/hash"
)

type authFixture struct {
	auth   AuthService
	admins AdminService
	audit  *recordingAudit
	rid    int64
}

func newAuthFixture(t *testing.T, loginLimit int) authFixture {
	t.Helper()
	store, fx := seeded(t)
	hasher, err := hash.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := token.NewManager(token.Options{SigningKey: []byte("secret"), Issuer: "orderdesk", TTL: time.Hour, Now: fixedNow})
	require.NoError(t, err)
	rate, err := security.NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	audit := &recordingAudit{}

	auth, err := NewAuthService(AuthOptions{
		Admins:     store.Admins(),
		Hasher:     hasher,
		Tokens:     tokens,
		Rate:       rate,
		Audit:      audit,
		LoginLimit: loginLimit,
		Now:        fixedNow,
	})
	require.NoError(t, err)
	admins := NewAdminService(store, hasher, fixedNow)
	_, err = admins.Create(context.Background(), CreateAdminInput{
		RestaurantID: fx.RestaurantID,
		Email:        "Chef@Example.com",
		Password:     "correct horse",
	})
	require.NoError(t, err)
	return authFixture{auth: auth, admins: admins, audit: audit, rid: fx.RestaurantID}
}

func TestLoginIssuesScopedToken(t *testing.T) {
	f := newAuthFixture(t, 5)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, LoginInput{Email: " chef@example.com ", Password: "correct horse", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, f.rid, res.RestaurantID)
	assert.Equal(t, fixedNow().Add(time.Hour).UTC(), res.ExpiresAt.UTC())

	scope, err := f.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.rid, scope.RestaurantID)
	assert.Equal(t, res.AdminID, scope.AdminID)
	assert.Equal(t, "chef@example.com", scope.Email)
	assert.Contains(t, f.audit.kinds(), security.KindLoginSucceeded)

	list, err := f.admins.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fixedNow().UTC(), list[0].LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t, 5)
	_, err := f.auth.Login(context.Background(), LoginInput{Email: "chef@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{security.KindLoginFailed, security.KindLoginFailed}, f.audit.kinds())
}

func TestLoginRateLimited(t *testing.T) {
	f := newAuthFixture(t, 2)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.auth.Login(ctx, LoginInput{Email: "chef@example.com", Password: "bad"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := f.auth.Login(ctx, LoginInput{Email: "chef@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t, 5)
	_, err := f.auth.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.auth.Verify(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdminCreateValidates(t *testing.T) {
	f := newAuthFixture(t, 5)
	ctx := context.Background()

	_, err := f.admins.Create(ctx, CreateAdminInput{RestaurantID: f.rid, Email: "chef@example.com", Password: "another one"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, err = f.admins.Create(ctx, CreateAdminInput{RestaurantID: f.rid, Email: "bad", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.admins.Create(ctx, CreateAdminInput{RestaurantID: f.rid, Email: "a@b.co", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.admins.Create(ctx, CreateAdminInput{RestaurantID: 999, Email: "a@b.co", Password: "long enough"})
	assert.ErrorIs(t, err, ErrNotFound)
}
