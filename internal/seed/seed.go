package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// StaffAccount is one default staff user created at startup
type StaffAccount struct {
	Name  string
	Email string
	Role  models.RoleType
}

// DefaultStaff are the accounts every installation starts with
var DefaultStaff = []StaffAccount{
	{Name: "System Administrator", Email: "admin@bobasi.go.ke", Role: models.RoleAdmin},
	{Name: "Finance Officer", Email: "finance@bobasi.go.ke", Role: models.RoleFinanceOfficer},
	{Name: "Review Committee", Email: "review@bobasi.go.ke", Role: models.RoleReviewCommittee},
}

// CreateDefaultData creates the default staff accounts that don't exist yet.
// Existing accounts are left untouched, including their passwords.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, password string, lgr zerolog.Logger) (int, error) {
	if password == "" {
		return 0, errors.New("default staff password is empty")
	}

	lgr.Info().Msg("Checking/Creating default staff accounts...")
	var finalErr error
	created := 0

	for _, account := range DefaultStaff {
		_, err := repos.Users.GetByEmail(ctx, account.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			lgr.Error().Err(err).Str("email", account.Email).Msg("Error looking up default user")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		hash, err := jwtauth.HashPassword(password)
		if err != nil {
			return created, fmt.Errorf("failed to hash default password: %w", err)
		}

		user := &models.User{
			Name:     account.Name,
			Email:    account.Email,
			Password: hash,
			Role:     account.Role,
			Status:   models.UserStatusActive,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			lgr.Error().Err(err).Str("email", account.Email).Msg("Error creating default user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
		lgr.Info().Str("email", account.Email).Str("role", string(account.Role)).Msg("Default user created")
	}

	if finalErr != nil {
		lgr.Warn().Err(finalErr).Msg("Default data creation finished with errors")
	}
	return created, finalErr
}
