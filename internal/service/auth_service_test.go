package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontask/internal/core/auth"
	"neontask/internal/core/cache"
	"neontask/internal/domain"
	"neontask/internal/repo"
	"neontask/internal/testutil"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTer) {
	t.Helper()
	j := testutil.NewJWTer()
	return NewAuthService(repo.NewUserRepo(testutil.NewDB(t)), j, nil, time.Minute), j
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, j := newAuthService(t)

	reg, err := svc.Register(ctx, RegisterInput{Email: "trinity@zion.net", Password: "red-pill", Handle: "trinity"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.User.ID)
	assert.Equal(t, "trinity", reg.User.Handle)
	assert.False(t, reg.User.CreatedAt.IsZero())

	uid, err := j.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	login, err := svc.Login(ctx, "trinity@zion.net", "red-pill")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	uid, err = j.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)
}

func TestRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{Email: "a@zion.net", Password: "pw", Handle: "alpha"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@zion.net", Password: "pw", Handle: "beta"})
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.EqualError(t, err, domain.MsgConflict)

	_, err = svc.Register(ctx, RegisterInput{Email: "b@zion.net", Password: "pw", Handle: "alpha"})
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	tests := []RegisterInput{
		{Email: " ", Password: "pw", Handle: "h"},
		{Email: "e@x.io", Password: "pw", Handle: ""},
		{Email: "e@x.io", Password: "", Handle: "h"},
	}
	for _, in := range tests {
		_, err := svc.Register(context.Background(), in)
		assert.True(t, domain.IsKind(err, domain.KindValidation), "input %+v", in)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	_, err := svc.Register(ctx, RegisterInput{Email: "morpheus@zion.net", Password: "choose", Handle: "morpheus"})
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "morpheus@zion.net", "blue-pill")
	_, noUser := svc.Login(ctx, "cypher@zion.net", "choose")

	require.Error(t, wrongPw)
	require.Error(t, noUser)
	assert.Equal(t, domain.KindInvalidCredentials, domain.KindOf(wrongPw))
	assert.Equal(t, domain.KindOf(wrongPw), domain.KindOf(noUser))
	assert.Equal(t, wrongPw.Error(), noUser.Error())
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, j := newAuthService(t)
	reg, err := svc.Register(ctx, RegisterInput{Email: "oracle@zion.net", Password: "cookies", Handle: "oracle"})
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: reg.User.ID, Email: "oracle@zion.net", Handle: "oracle"}, id)

	_, err = svc.Authenticate(ctx, "")
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	assert.EqualError(t, err, domain.MsgNoToken)

	_, err = svc.Authenticate(ctx, reg.Token+"x")
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	ghost, err := j.Issue("no-such-user")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))

	expired := *j
	expired.TTL = -time.Hour
	old, err := expired.Issue(reg.User.ID)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, old)
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

type countingUsers struct {
	domain.UserRepository
	byID int
	err  error
}

func (c *countingUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	c.byID++
	if c.err != nil {
		return nil, c.err
	}
	return c.UserRepository.FindByID(ctx, id)
}

func TestAuthenticateUsesIdentityCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	users := &countingUsers{UserRepository: repo.NewUserRepo(testutil.NewDB(t))}
	svc := NewAuthService(users, testutil.NewJWTer(), c, time.Minute)

	reg, err := svc.Register(ctx, RegisterInput{Email: "tank@zion.net", Password: "op", Handle: "tank"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		id, err := svc.Authenticate(ctx, reg.Token)
		require.NoError(t, err)
		assert.Equal(t, "tank", id.Handle)
	}
	assert.Equal(t, 1, users.byID)
	assert.True(t, mr.Exists("neontask:identity:"+reg.User.ID))
}

func TestAuthenticateStoreFailure(t *testing.T) {
	ctx := context.Background()
	users := &countingUsers{UserRepository: repo.NewUserRepo(testutil.NewDB(t)), err: errors.New("db down")}
	j := testutil.NewJWTer()
	svc := NewAuthService(users, j, nil, time.Minute)

	tok, err := j.Issue("u1")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, tok)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isDupKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, isDupKey(errors.New("connection reset")))
}
