package repository

import (
	"context"
	"testing"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCustomerRepository(pool, zerolog.Nop())

	c := &model.Customer{Email: "jane@example.com", Username: "jane", Phone: "254700000000"}
	require.NoError(t, c.SetPassword("secret1"))
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)
	assert.Equal(t, model.RoleCustomer, c.Role)
	assert.False(t, c.JoinedAt.IsZero())

	t.Run("Duplicate email leaves no second row", func(t *testing.T) {
		dup := &model.Customer{Email: "jane@example.com", Username: "other", PasswordHash: "x"}
		err := repo.Create(ctx, dup)
		require.ErrorIs(t, err, model.ErrPersistence)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("GetByEmail and GetByID", func(t *testing.T) {
		byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.True(t, byEmail.VerifyPassword("secret1"))

		byID, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "254700000000", byID.Phone)

		missing, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UpdatePasswordHash", func(t *testing.T) {
		updated := *c
		require.NoError(t, updated.SetPassword("newpass"))
		require.NoError(t, repo.UpdatePasswordHash(ctx, c.ID, updated.PasswordHash))

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, got.VerifyPassword("newpass"))

		err = repo.UpdatePasswordHash(ctx, 999999, "x")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("SetRole", func(t *testing.T) {
		require.NoError(t, repo.SetRole(ctx, "jane@example.com", model.RoleAdmin))

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, got.Role)

		assert.ErrorIs(t, repo.SetRole(ctx, "nobody@example.com", model.RoleAdmin), model.ErrNotFound)
		assert.ErrorIs(t, repo.SetRole(ctx, "jane@example.com", model.Role("root")), model.ErrValidation)
	})
}
