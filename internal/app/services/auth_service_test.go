package services

import (
	"errors"
	"testing"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(email string) dto.RegisterRequest {
	phone := "0712 345-678"
	return dto.RegisterRequest{
		Name:         "Mercy Kemunto",
		Email:        email,
		Password:     "secret123",
		Phone:        &phone,
		Institution:  "Kisii National Polytechnic",
		Course:       "Diploma in ICT",
		LevelOfStudy: "college",
	}
}

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	registered, err := env.svc.Auth.Register(env.ctx, registerRequest("Mercy@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "Bearer", registered.TokenType)
	assert.Equal(t, 3600, registered.ExpiresIn)
	assert.Equal(t, "mercy@example.com", registered.User.Email)
	assert.Equal(t, models.RoleStudent, registered.User.Role)

	profile, err := env.repos.Students.GetByUserID(env.ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mercy Kemunto", profile.FullName)
	assert.Equal(t, "Diploma in ICT", profile.Course)

	loggedIn, err := env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "MERCY@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, loggedIn.User.LastLoginAt)
	assert.Equal(t, fixedNow, *loggedIn.User.LastLoginAt)

	actor, err := env.svc.Auth.Authenticate(env.ctx, loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, actor.UserID)
	assert.Equal(t, models.RoleStudent, actor.Role)
	assert.Equal(t, "Mercy Kemunto", actor.Name)

	user, student, err := env.svc.Auth.Profile(env.ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, user.ID)
	require.NotNil(t, student)
	assert.Equal(t, profile.ID, student.ID)
}

func TestAuthService_RegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Auth.Register(env.ctx, registerRequest("JANE@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	bad := registerRequest("new@example.com")
	phone := "12345"
	bad.Phone = &phone
	_, err = env.svc.Auth.Register(env.ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	bad = registerRequest("new@example.com")
	bad.Password = "short"
	_, err = env.svc.Auth.Register(env.ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	bad = registerRequest("not-an-email")
	_, err = env.svc.Auth.Register(env.ctx, bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAuthService_RegisterIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetFault("Students.Create", errors.New("boom"))

	_, err := env.svc.Auth.Register(env.ctx, registerRequest("mercy@example.com"))
	require.Error(t, err)

	_, err = env.repos.Users.GetByEmail(env.ctx, "mercy@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	registered, err := env.svc.Auth.Register(env.ctx, registerRequest("mercy@example.com"))
	require.NoError(t, err)

	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mercy@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, apperrors.ErrAuthentication)
	assert.Equal(t, "invalid email or password", err.Error())

	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	require.NoError(t, env.svc.Auth.SetUserStatus(env.ctx, env.admin, registered.User.ID, models.UserStatusSuspended))
	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mercy@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAuthService_AuthenticateRefusesDisabledOrUnknown(t *testing.T) {
	env := newTestEnv(t)
	registered, err := env.svc.Auth.Register(env.ctx, registerRequest("mercy@example.com"))
	require.NoError(t, err)

	require.NoError(t, env.svc.Auth.SetUserStatus(env.ctx, env.admin, registered.User.ID, models.UserStatusInactive))
	_, err = env.svc.Auth.Authenticate(env.ctx, registered.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	require.NoError(t, env.svc.Auth.DeleteUser(env.ctx, env.admin, registered.User.ID))
	_, err = env.svc.Auth.Authenticate(env.ctx, registered.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = env.svc.Auth.Authenticate(env.ctx, "not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestAuthService_CreateStaffUser(t *testing.T) {
	env := newTestEnv(t)
	req := dto.CreateUserRequest{Name: "Tom Finance", Email: "tom@bobasi.go.ke", Password: "secret123", Role: models.RoleFinanceOfficer}

	_, err := env.svc.Auth.CreateStaffUser(env.ctx, env.committee, req)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	studentReq := req
	studentReq.Role = models.RoleStudent
	_, err = env.svc.Auth.CreateStaffUser(env.ctx, env.admin, studentReq)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	user, err := env.svc.Auth.CreateStaffUser(env.ctx, env.admin, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFinanceOfficer, user.Role)

	token, err := env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "tom@bobasi.go.ke", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, token.User.ID)
}

func TestAuthService_UserAdministrationGuards(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Auth.SetUserStatus(env.ctx, env.admin, env.admin.UserID, models.UserStatusInactive)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = env.svc.Auth.SetUserStatus(env.ctx, env.admin, env.student.UserID, "banned")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = env.svc.Auth.DeleteUser(env.ctx, env.admin, env.admin.UserID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = env.svc.Auth.DeleteUser(env.ctx, env.finance, env.student.UserID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = env.svc.Auth.DeleteUser(env.ctx, env.admin, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthService_DeleteUserCascadesAndProtectsHistory(t *testing.T) {
	env := newTestEnv(t)
	app := env.approve(t, env.submit(t, "15000"), "12000")
	_, err := env.svc.Reviews.Record(env.ctx, env.committee, app.ID, dto.RecordReviewRequest{Decision: models.DecisionRecommendApproval})
	require.NoError(t, err)
	_, err = env.svc.Disbursements.Disburse(env.ctx, env.finance, disburseRequest(app, "12000"))
	require.NoError(t, err)

	err = env.svc.Auth.DeleteUser(env.ctx, env.admin, env.finance.UserID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	err = env.svc.Auth.DeleteUser(env.ctx, env.admin, env.committee.UserID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, env.svc.Auth.DeleteUser(env.ctx, env.admin, env.student.UserID))

	_, err = env.repos.Applications.GetByID(env.ctx, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.repos.Students.GetByID(env.ctx, env.profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, env.disbursementCount(t))
	assert.Zero(t, env.grantCount(t))
	assert.Empty(t, env.notifications(t, env.student))

	require.NoError(t, env.svc.Auth.DeleteUser(env.ctx, env.admin, env.finance.UserID))
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	registered, err := env.svc.Auth.Register(env.ctx, registerRequest("mercy@example.com"))
	require.NoError(t, err)
	actor, err := env.svc.Auth.Authenticate(env.ctx, registered.AccessToken)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.ChangePasswordRequest
		msg  string
	}{
		{"wrong current password", dto.ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "newsecret", ConfirmPassword: "newsecret"},
			"current password is incorrect"},
		{"confirmation differs", dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret", ConfirmPassword: "newsecre7"},
			"new passwords do not match"},
		{"too short", dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "abc", ConfirmPassword: "abc"},
			"password must be at least 6 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.Auth.ChangePassword(env.ctx, actor, tt.req)
			require.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mercy@example.com", Password: "secret123"})
	require.NoError(t, err, "failed attempts must leave the password alone")

	require.NoError(t, env.svc.Auth.ChangePassword(env.ctx, actor, dto.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	}))

	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mercy@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	_, err = env.svc.Auth.Login(env.ctx, dto.LoginRequest{Email: "mercy@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestAuthService_ListUsers(t *testing.T) {
	env := newTestEnv(t)

	users, total, err := env.svc.Auth.ListUsers(env.ctx, env.admin, dto.UserFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, users, 4)
	assert.Equal(t, env.student.UserID, users[0].ID, "newest account first")

	admins, total, err := env.svc.Auth.ListUsers(env.ctx, env.admin, dto.UserFilterRequest{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, admins, 1)
	assert.Equal(t, env.admin.UserID, admins[0].ID)

	page, total, err := env.svc.Auth.ListUsers(env.ctx, env.admin, dto.UserFilterRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 1)
	assert.Equal(t, env.admin.UserID, page[0].ID)

	_, _, err = env.svc.Auth.ListUsers(env.ctx, env.admin, dto.UserFilterRequest{Role: "superuser"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = env.svc.Auth.ListUsers(env.ctx, env.committee, dto.UserFilterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
