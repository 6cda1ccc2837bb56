package services

import (
	"context"
	"testing"
	"time"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/app/repositories/memory"
	jwtauth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/bobasi/bursary/internal/pkg/filestorage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

type testEnv struct {
	ctx        context.Context
	store      *memory.Store
	repos      *repositories.Repositories
	svc        *Services
	storageDir string

	admin     auth.Actor
	committee auth.Actor
	finance   auth.Actor
	student   auth.Actor
	profile   *models.Student
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir, "", 1<<20)
	require.NoError(t, err)

	env := &testEnv{
		ctx:        context.Background(),
		store:      store,
		repos:      store.Repos(),
		storageDir: dir,
	}
	env.svc = NewServices(Dependencies{
		Repos: env.repos,
		Tx:    store,
		JWT: jwtauth.NewJWTService(jwtauth.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenExp: time.Hour,
			TokenIssuer:    "bobasi-test",
		}),
		Storage:  storage,
		Settings: DefaultBursarySettings(),
		Clock:    func() time.Time { return fixedNow },
		Logger:   zerolog.Nop(),
	})

	env.admin = env.createStaff(t, "Grace Admin", "admin@bobasi.go.ke", models.RoleAdmin)
	env.committee = env.createStaff(t, "Peter Committee", "review@bobasi.go.ke", models.RoleReviewCommittee)
	env.finance = env.createStaff(t, "Mary Finance", "finance@bobasi.go.ke", models.RoleFinanceOfficer)
	env.student, env.profile = env.createStudent(t, "Jane Moraa", "jane@example.com")
	return env
}

func (e *testEnv) createStaff(t *testing.T, name, email string, role models.RoleType) auth.Actor {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "x", Role: role, Status: models.UserStatusActive}
	require.NoError(t, e.repos.Users.Create(e.ctx, user))
	return auth.Actor{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func (e *testEnv) createStudent(t *testing.T, name, email string) (auth.Actor, *models.Student) {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "x", Role: models.RoleStudent, Status: models.UserStatusActive}
	require.NoError(t, e.repos.Users.Create(e.ctx, user))
	profile := &models.Student{UserID: user.ID, FullName: name, Institution: "Old School", Course: "Old Course", LevelOfStudy: "college"}
	require.NoError(t, e.repos.Students.Create(e.ctx, profile))
	return auth.Actor{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, profile
}

func submitRequest(amount string) dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		RequestedAmount: dto.NumericInput(amount),
		Institution:     "Kisii University",
		Course:          "BSc. Nursing",
		LevelOfStudy:    "university",
		Purpose:         "Tuition fees balance",
	}
}

func (e *testEnv) submit(t *testing.T, amount string) *models.Application {
	t.Helper()
	app, err := e.svc.Applications.Submit(e.ctx, e.student, submitRequest(amount))
	require.NoError(t, err)
	return app
}

func (e *testEnv) approve(t *testing.T, app *models.Application, amount string) *models.Application {
	t.Helper()
	updated, err := e.svc.Applications.UpdateStatus(e.ctx, e.admin, app.ID, dto.UpdateStatusRequest{
		Status:         models.StatusApproved,
		ApprovedAmount: dto.NumericInput(amount),
	})
	require.NoError(t, err)
	return updated
}

func (e *testEnv) notifications(t *testing.T, actor auth.Actor) []*models.Notification {
	t.Helper()
	items, err := e.repos.Notifications.ListByUser(e.ctx, actor.UserID, false, 0)
	require.NoError(t, err)
	return items
}

func (e *testEnv) applicationCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.repos.Applications.Count(e.ctx)
	require.NoError(t, err)
	return n
}

// assertDecisionInvariants checks that approved_amount and rejection_reason
// are present exactly for the statuses that carry them.
func assertDecisionInvariants(t *testing.T, app *models.Application) {
	t.Helper()
	require.Equal(t, app.Status.HoldsApprovedAmount(), app.ApprovedAmount != nil,
		"approved amount presence for status %s", app.Status)
	require.Equal(t, app.Status == models.StatusRejected, app.RejectionReason != nil,
		"rejection reason presence for status %s", app.Status)
}
