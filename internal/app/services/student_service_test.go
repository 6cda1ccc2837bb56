package services

import (
	"testing"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentService_ListSearches(t *testing.T) {
	env := newTestEnv(t)
	env.createStudent(t, "Brian Nyakundi", "brian@example.com")

	user := &models.User{Name: "Carol Kwamboka", Email: "carol@example.com", Password: "x", Role: models.RoleStudent, Status: models.UserStatusActive}
	require.NoError(t, env.repos.Users.Create(env.ctx, user))
	admission := "SCT221-0042/2024"
	carol := &models.Student{UserID: user.ID, FullName: user.Name, AdmissionNumber: &admission, Institution: "Kisii University"}
	require.NoError(t, env.repos.Students.Create(env.ctx, carol))

	all, total, err := env.svc.Students.List(env.ctx, env.committee, dto.StudentFilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, carol.ID, all[0].ID, "newest profile first")

	tests := []struct {
		search string
		want   []string
	}{
		{"brian", []string{"Brian Nyakundi"}},
		{"  sct221-0042 ", []string{"Carol Kwamboka"}},
		{"KISII", []string{"Carol Kwamboka"}},
		{"old school", []string{"Brian Nyakundi", "Jane Moraa"}},
		{"nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			found, total, err := env.svc.Students.List(env.ctx, env.admin, dto.StudentFilterRequest{Search: tt.search})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			names := []string{}
			for _, s := range found {
				names = append(names, s.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, _, err = env.svc.Students.List(env.ctx, env.finance, dto.StudentFilterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, _, err = env.svc.Students.List(env.ctx, env.student, dto.StudentFilterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestStudentService_GetIncludesApplications(t *testing.T) {
	env := newTestEnv(t)
	first := env.submit(t, "10000")
	second := env.submit(t, "20000")

	student, apps, err := env.svc.Students.Get(env.ctx, env.admin, env.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Moraa", student.FullName)
	assert.Equal(t, "Kisii University", student.Institution)
	require.Len(t, apps, 2)
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, []int64{apps[0].ID, apps[1].ID})

	_, _, err = env.svc.Students.Get(env.ctx, env.committee, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = env.svc.Students.Get(env.ctx, env.finance, env.profile.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
