package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories/memory"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultData_CreatesMissingStaffOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()

	created, err := CreateDefaultData(ctx, repos, "Admin@1234", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultStaff), created)

	for _, account := range DefaultStaff {
		user, err := repos.Users.GetByEmail(ctx, account.Email)
		require.NoError(t, err)
		assert.Equal(t, account.Role, user.Role)
		assert.Equal(t, models.UserStatusActive, user.Status)
		assert.True(t, jwtauth.CheckPassword(user.Password, "Admin@1234"))
	}

	created, err = CreateDefaultData(ctx, repos, "Other@5678", zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, created)

	admin, err := repos.Users.GetByEmail(ctx, "admin@bobasi.go.ke")
	require.NoError(t, err)
	assert.True(t, jwtauth.CheckPassword(admin.Password, "Admin@1234"), "existing password is kept")
}

func TestCreateDefaultData_EmptyPassword(t *testing.T) {
	_, err := CreateDefaultData(context.Background(), memory.NewStore().Repos(), "", zerolog.Nop())
	assert.Error(t, err)
}

func TestCreateDefaultData_ReportsCreateFailures(t *testing.T) {
	store := memory.NewStore()
	store.SetFault("Users.Create", errors.New("db down"))

	created, err := CreateDefaultData(context.Background(), store.Repos(), "Admin@1234", zerolog.Nop())
	assert.Error(t, err)
	assert.Zero(t, created)
}
