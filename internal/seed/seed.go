package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/skillpivot/api/internal/app/models"
	"github.com/skillpivot/api/internal/pkg/apperrors"
	"github.com/skillpivot/api/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start.
type AdminAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserCreator is the part of the user repository the seed needs.
type UserCreator interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (int64, error)
}

// CreateDefaultAdmin creates the configured admin user unless an account with
// that email already exists. An empty email or password disables seeding.
func CreateDefaultAdmin(ctx context.Context, users UserCreator, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Info().Msg("No admin account configured, skipping admin seed")
		return nil
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hashedPassword, err := auth.HashPassword(account.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Email:      email,
		Password:   hashedPassword,
		Role:       models.RoleAdmin,
		FirstName:  account.FirstName,
		LastName:   account.LastName,
		IsVerified: true,
	}

	adminID, err := users.Create(ctx, admin)
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		// another instance won the race
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")
	return nil
}
