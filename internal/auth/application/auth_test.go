package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/auth/application"
	authredis "github.com/wyfcoding/storefront/internal/auth/infrastructure/persistence/redis"
	"github.com/wyfcoding/storefront/internal/auth/infrastructure/security"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	usermysql "github.com/wyfcoding/storefront/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/pkg/db/dbtest"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/outbox"
)

type fixture struct {
	auth  *application.AuthService
	users *userapp.UserService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := dbtest.New(t, &userdomain.User{}, &outbox.Message{})
	users := userapp.NewUserService(usermysql.NewUserRepository(database.DB), outbox.NewManager(database.DB), database)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	auth := application.NewAuthService(
		users,
		security.NewBcryptHasher(security.MinBcryptCost),
		security.NewJWTManager("0123456789abcdef0123456789abcdef", "storefront", time.Hour),
		authredis.NewRevocationRedisRepository(client),
	)
	return fixture{auth: auth, users: users}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, application.RegisterCommand{
		Email:    "client@example.com",
		Password: "secret-pw",
		Name:     "Client",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, userdomain.RoleClient, res.User.Role)
	assert.NotEqual(t, "secret-pw", res.User.PasswordHash)

	id, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, userdomain.RoleClient, id.Role)

	login, err := f.auth.Login(ctx, application.LoginCommand{Email: "CLIENT@example.com", Password: "secret-pw"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	me, err := f.auth.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", me.Email)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := application.RegisterCommand{Email: "dup@example.com", Password: "secret-pw", Name: "Dup"}
	_, err := f.auth.Register(ctx, cmd)
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, cmd)
	require.ErrorIs(t, err, errorx.ErrConflict)

	_, total, err := f.users.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, application.RegisterCommand{Email: "x@example.com", Password: "secret-pw", Name: "X"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, application.LoginCommand{Email: "x@example.com", Password: "wrong-pw"})
	require.ErrorIs(t, err, errorx.ErrUnauthenticated)

	_, err = f.auth.Login(ctx, application.LoginCommand{Email: "nobody@example.com", Password: "secret-pw"})
	require.ErrorIs(t, err, errorx.ErrUnauthenticated)

	inactive := false
	_, err = f.users.UpdateUser(ctx, userapp.UpdateUserCommand{ID: res.User.ID, Active: &inactive})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, application.LoginCommand{Email: "x@example.com", Password: "secret-pw"})
	require.ErrorIs(t, err, errorx.ErrUnauthenticated)

	_, err = f.auth.Login(ctx, application.LoginCommand{})
	require.ErrorIs(t, err, errorx.ErrValidation)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, application.RegisterCommand{Email: "y@example.com", Password: "secret-pw", Name: "Y"})
	require.NoError(t, err)

	id, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, id))

	_, err = f.auth.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, errorx.ErrUnauthenticated)
}

func TestVerifyCredentialsAndLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, application.RegisterCommand{
		Email:    "lookup@example.com",
		Password: "secret-pw",
		Name:     "Lookup",
	})
	require.NoError(t, err)

	u, err := f.auth.VerifyCredentials(ctx, "lookup@example.com", "secret-pw")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, res.User.ID, u.ID)

	u, err = f.auth.VerifyCredentials(ctx, "lookup@example.com", "wrong-pw")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.auth.VerifyCredentials(ctx, "nobody@example.com", "secret-pw")
	require.NoError(t, err)
	assert.Nil(t, u)

	byEmail, err := f.auth.FindByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byID, err := f.auth.FindByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, byEmail.Email, byID.Email)
}
