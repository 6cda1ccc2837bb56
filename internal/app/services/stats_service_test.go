package services

import (
	"fmt"
	"testing"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Summary(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "1000")
	paid := env.approve(t, env.submit(t, "15000"), "12000")
	_, err := env.svc.Disbursements.Disburse(env.ctx, env.finance, disburseRequest(paid, "12000"))
	require.NoError(t, err)

	summary, err := env.svc.Stats.Summary(env.ctx, env.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalApplications)
	assert.Equal(t, int64(1), summary.ByStatus[models.StatusPending])
	assert.Equal(t, int64(1), summary.ByStatus[models.StatusDisbursed])
	assert.Zero(t, summary.ByStatus[models.StatusCompleted])
	assert.Equal(t, int64(1), summary.DisbursementCount)
	assert.True(t, summary.TotalDisbursed.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, int64(2), summary.UnreadNotifications)

	_, err = env.svc.Stats.Summary(env.ctx, env.student)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func (e *testEnv) createStudentIn(t *testing.T, name, email, subCounty string) auth.Actor {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "x", Role: models.RoleStudent, Status: models.UserStatusActive}
	require.NoError(t, e.repos.Users.Create(e.ctx, user))
	profile := &models.Student{UserID: user.ID, FullName: name, Institution: "Old School", SubCounty: &subCounty}
	require.NoError(t, e.repos.Students.Create(e.ctx, profile))
	return auth.Actor{UserID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

// groupRows renders totals as name:applications:approved for comparison
func groupRows(totals []models.GroupTotal) []string {
	rows := make([]string, 0, len(totals))
	for _, g := range totals {
		rows = append(rows, fmt.Sprintf("%s:%d:%s", g.Name, g.Applications, g.ApprovedTotal))
	}
	return rows
}

func TestStatsService_Report(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "1000")
	paid := env.approve(t, env.submit(t, "15000"), "12000")
	_, err := env.svc.Disbursements.Disburse(env.ctx, env.finance, disburseRequest(paid, "12000"))
	require.NoError(t, err)

	brian := env.createStudentIn(t, "Brian Nyakundi", "brian@example.com", "Masige")
	env.createStudentIn(t, "Carol Kwamboka", "carol@example.com", "Masige")
	env.createStudentIn(t, "Dennis Ondieki", "dennis@example.com", "Sameta")

	req := submitRequest("8000")
	req.Institution = "Kisii National Polytechnic"
	app, err := env.svc.Applications.Submit(env.ctx, brian, req)
	require.NoError(t, err)
	env.approve(t, app, "5000")

	report, err := env.svc.Stats.Report(env.ctx, env.committee)
	require.NoError(t, err)

	assert.Equal(t, []string{
		UnspecifiedSubCounty + ":2:12000",
		"Masige:1:5000",
		"Sameta:0:0",
	}, groupRows(report.BySubCounty))
	assert.Equal(t, []string{
		"Kisii University:2:12000",
		"Kisii National Polytechnic:1:5000",
	}, groupRows(report.TopInstitutions))

	assert.Equal(t, int64(1), report.ByStatus[models.StatusPending])
	assert.Equal(t, int64(1), report.ByStatus[models.StatusApproved])
	assert.Equal(t, int64(1), report.ByStatus[models.StatusDisbursed])
	assert.True(t, report.TotalDisbursed.Equal(decimal.NewFromInt(12000)))

	_, err = env.svc.Stats.Report(env.ctx, env.finance)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
