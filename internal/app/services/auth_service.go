package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Define custom error types for auth service
var (
	ErrInvalidCredentials = apperrors.NewCustomError(apperrors.ErrAuthentication, "invalid email or password")
	ErrAccountDisabled    = apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is not active")
)

// AuthService handles registration, login, token authentication and user
// administration
type AuthService struct {
	repos      *repositories.Repositories
	tx         repositories.TxManager
	jwtService *jwtauth.JWTService
	now        Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repos *repositories.Repositories, tx repositories.TxManager, jwtService *jwtauth.JWTService, clock Clock, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repos:      repos,
		tx:         tx,
		jwtService: jwtService,
		now:        clock,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// validateEmail validates an email address
func (s *AuthService) validateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validation.NewStringValidation(email).WithPattern(validation.CompiledPatterns.Email).Validate() {
		return apperrors.NewInvalidInputError("invalid email format")
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if !validation.NewStringValidation(password).WithMinLength(validation.PasswordMinLength).Validate() {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("password must be at least %d characters long", validation.PasswordMinLength))
	}
	return nil
}

// validateName checks a display name
func (s *AuthService) validateName(name string) error {
	v := validation.NewStringValidation(strings.TrimSpace(name)).
		WithMinLength(validation.NameMinLength).
		WithMaxLength(validation.NameMaxLength)
	if !v.Validate() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("name must be between %d and %d characters",
			validation.NameMinLength, validation.NameMaxLength))
	}
	return nil
}

// validatePhone accepts an empty phone or a Kenyan mobile number
func (s *AuthService) validatePhone(phone *string) error {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if !validation.IsKenyanPhone(*phone) {
		return apperrors.NewInvalidInputError("phone must be a valid Kenyan mobile number")
	}
	return nil
}

func (s *AuthService) validateAccount(name, email, password string, phone *string) error {
	if err := s.validateName(name); err != nil {
		return err
	}
	if err := s.validateEmail(email); err != nil {
		return err
	}
	if err := s.validatePassword(password); err != nil {
		return err
	}
	return s.validatePhone(phone)
}

// Register creates a student account and its profile atomically and logs the
// student in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := s.validateAccount(req.Name, req.Email, req.Password, req.Phone); err != nil {
		return nil, err
	}

	hashedPassword, err := jwtauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashedPassword,
		Phone:    trimmedOrNil(req.Phone),
		Role:     models.RoleStudent,
		Status:   models.UserStatusActive,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Students.Create(ctx, &models.Student{
			UserID:          user.ID,
			FullName:        user.Name,
			AdmissionNumber: trimmedOrNil(req.AdmissionNumber),
			Institution:     strings.TrimSpace(req.Institution),
			Course:          strings.TrimSpace(req.Course),
			LevelOfStudy:    strings.TrimSpace(req.LevelOfStudy),
			Phone:           user.Phone,
			SubCounty:       trimmedOrNil(req.SubCounty),
			Ward:            trimmedOrNil(req.Ward),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Student registered")
	return s.generateTokenResponse(user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !jwtauth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("email", user.Email).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountDisabled
	}

	now := s.now()
	if err := s.repos.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Could not record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.generateTokenResponse(user)
}

func (s *AuthService) generateTokenResponse(user *models.User) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        dto.NewUserResponse(user),
	}, nil
}

// Authenticate turns a bearer token into an Actor. The user is reloaded so a
// deactivated or suspended account is refused even with a valid token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Actor, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpiredToken) {
			return auth.Actor{}, apperrors.NewCustomError(apperrors.ErrTokenExpired, "token has expired")
		}
		return auth.Actor{}, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "invalid token")
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return auth.Actor{}, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "invalid token")
		}
		return auth.Actor{}, err
	}
	if !user.IsActive() {
		return auth.Actor{}, ErrAccountDisabled
	}

	return auth.Actor{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

// Profile returns the actor's account and, for students, their profile
func (s *AuthService) Profile(ctx context.Context, actor auth.Actor) (*models.User, *models.Student, error) {
	user, err := s.repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.RoleStudent {
		return user, nil, nil
	}
	student, err := s.repos.Students.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, err
	}
	return user, student, nil
}

// ChangePassword replaces the actor's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, actor auth.Actor, req dto.ChangePasswordRequest) error {
	if err := auth.Authorize(actor, auth.OpChangePassword); err != nil {
		return err
	}
	user, err := s.repos.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !jwtauth.CheckPassword(user.Password, req.CurrentPassword) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Password change with wrong current password")
		return apperrors.NewInvalidInputError("current password is incorrect")
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewInvalidInputError("new passwords do not match")
	}
	if err := s.validatePassword(req.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := jwtauth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repos.Users.UpdatePassword(ctx, user.ID, hashedPassword, s.now()); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}

// ListUsers returns a page of accounts, newest first
func (s *AuthService) ListUsers(ctx context.Context, actor auth.Actor, filter dto.UserFilterRequest) ([]*models.User, int64, error) {
	if err := auth.Authorize(actor, auth.OpManageUsers); err != nil {
		return nil, 0, err
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid role %q", filter.Role))
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid account status %q", filter.Status))
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Users.List(ctx, repositories.UserFilter{
		Role:     filter.Role,
		Status:   filter.Status,
		Page:     page,
		PageSize: size,
	})
}

// CreateStaffUser creates an admin, finance officer or committee account
func (s *AuthService) CreateStaffUser(ctx context.Context, actor auth.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := auth.Authorize(actor, auth.OpManageUsers); err != nil {
		return nil, err
	}
	if !req.Role.IsStaff() {
		return nil, apperrors.NewInvalidInputError("role must be admin, finance_officer or review_committee")
	}
	if err := s.validateAccount(req.Name, req.Email, req.Password, req.Phone); err != nil {
		return nil, err
	}

	hashedPassword, err := jwtauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashedPassword,
		Phone:    trimmedOrNil(req.Phone),
		Role:     req.Role,
		Status:   models.UserStatusActive,
	}
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		return repos.Users.Create(ctx, user)
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Stringer("actor", actor).Msg("Staff user created")
	return user, nil
}

// SetUserStatus activates, deactivates or suspends an account. Admins cannot
// change their own status.
func (s *AuthService) SetUserStatus(ctx context.Context, actor auth.Actor, userID int64, status models.UserStatus) error {
	if err := auth.Authorize(actor, auth.OpManageUsers); err != nil {
		return err
	}
	if !status.IsValid() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("invalid account status %q", status))
	}
	if userID == actor.UserID {
		return apperrors.NewInvalidInputError("you cannot change your own account status")
	}
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		return repos.Users.UpdateStatus(ctx, userID, status)
	}); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Str("status", string(status)).Stringer("actor", actor).Msg("User status changed")
	return nil
}

// DeleteUser removes an account together with everything it owns
func (s *AuthService) DeleteUser(ctx context.Context, actor auth.Actor, userID int64) error {
	if err := auth.Authorize(actor, auth.OpManageUsers); err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperrors.NewInvalidInputError("you cannot delete your own account")
	}
	if err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		return repos.Users.Delete(ctx, userID)
	}); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Stringer("actor", actor).Msg("User deleted")
	return nil
}
