package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/user/application"
	"github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/pkg/db/dbtest"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/outbox"
	"github.com/wyfcoding/storefront/pkg/utils"
)

func newService(t *testing.T) *application.UserService {
	t.Helper()
	database := dbtest.New(t, &domain.User{}, &outbox.Message{})
	return application.NewUserService(
		mysql.NewUserRepository(database.DB),
		outbox.NewManager(database.DB),
		database,
	)
}

func TestCreateUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, application.CreateUserCommand{
		Email:        "  Alice@Example.com ",
		PasswordHash: "hash",
		Name:         "Alice",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleClient, u.Role)
	assert.True(t, u.Active)

	found, err := svc.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cmd := application.CreateUserCommand{Email: "bob@example.com", PasswordHash: "hash", Name: "Bob"}
	_, err := svc.CreateUser(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, cmd)
	require.ErrorIs(t, err, errorx.ErrConflict)

	users, total, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)
}

func TestCreateUserRejectsDeletedEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cmd := application.CreateUserCommand{Email: "carol@example.com", PasswordHash: "hash", Name: "Carol"}
	u, err := svc.CreateUser(ctx, cmd)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, u.ID))

	_, err = svc.GetUser(ctx, u.ID)
	require.ErrorIs(t, err, errorx.ErrNotFound)

	_, err = svc.CreateUser(ctx, cmd)
	require.ErrorIs(t, err, errorx.ErrConflict)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateUser(context.Background(), application.CreateUserCommand{Email: "not-an-email", PasswordHash: "x", Name: "X"})
	require.ErrorIs(t, err, errorx.ErrValidation)
}

func TestUpdateUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.CreateUser(ctx, application.CreateUserCommand{Email: "a@example.com", PasswordHash: "h", Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, application.CreateUserCommand{Email: "b@example.com", PasswordHash: "h", Name: "B"})
	require.NoError(t, err)

	role := domain.RoleAdmin
	updated, err := svc.UpdateUser(ctx, application.UpdateUserCommand{
		ID:    a.ID,
		Name:  utils.Ptr("Anna"),
		Role:  &role,
		Phone: utils.Ptr("555"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.True(t, updated.IsAdmin())
	assert.Equal(t, "555", updated.Phone)

	_, err = svc.UpdateUser(ctx, application.UpdateUserCommand{ID: a.ID, Email: utils.Ptr("b@example.com")})
	require.ErrorIs(t, err, errorx.ErrConflict)

	_, err = svc.UpdateUser(ctx, application.UpdateUserCommand{ID: 999, Name: utils.Ptr("x")})
	require.ErrorIs(t, err, errorx.ErrNotFound)
}
