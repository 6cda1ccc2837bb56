package auth

import (
	"testing"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestCan_RoleMatrix(t *testing.T) {
	tests := []struct {
		op      Operation
		allowed []models.RoleType
		denied  []models.RoleType
	}{
		{OpSubmitApplication, []models.RoleType{models.RoleStudent}, []models.RoleType{models.RoleAdmin, models.RoleFinanceOfficer, models.RoleReviewCommittee}},
		{OpUploadDocument, []models.RoleType{models.RoleStudent}, []models.RoleType{models.RoleAdmin}},
		{OpRecordReview, []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}, []models.RoleType{models.RoleStudent, models.RoleFinanceOfficer}},
		{OpUpdateApplicationStatus, []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}, []models.RoleType{models.RoleStudent, models.RoleFinanceOfficer}},
		{OpDisburse, []models.RoleType{models.RoleAdmin, models.RoleFinanceOfficer}, []models.RoleType{models.RoleStudent, models.RoleReviewCommittee}},
		{OpViewDisbursements, []models.RoleType{models.RoleAdmin, models.RoleFinanceOfficer}, []models.RoleType{models.RoleStudent, models.RoleReviewCommittee}},
		{OpManageUsers, []models.RoleType{models.RoleAdmin}, []models.RoleType{models.RoleStudent, models.RoleFinanceOfficer, models.RoleReviewCommittee}},
		{OpViewAnyApplication, []models.RoleType{models.RoleAdmin, models.RoleFinanceOfficer, models.RoleReviewCommittee}, []models.RoleType{models.RoleStudent}},
		{OpReadNotifications, []models.RoleType{models.RoleStudent, models.RoleAdmin, models.RoleFinanceOfficer, models.RoleReviewCommittee}, nil},
		{OpChangePassword, []models.RoleType{models.RoleStudent, models.RoleAdmin, models.RoleFinanceOfficer, models.RoleReviewCommittee}, nil},
		{OpViewReports, []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}, []models.RoleType{models.RoleStudent, models.RoleFinanceOfficer}},
		{OpViewStudents, []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}, []models.RoleType{models.RoleStudent, models.RoleFinanceOfficer}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for _, role := range tt.allowed {
				assert.True(t, Can(role, tt.op), "%s should be allowed", role)
			}
			for _, role := range tt.denied {
				assert.False(t, Can(role, tt.op), "%s should be denied", role)
			}
		})
	}
}

func TestCan_UnknownOperationOrRole(t *testing.T) {
	assert.False(t, Can(models.RoleAdmin, Operation("drop_tables")))
	assert.False(t, Can(models.RoleType("superuser"), OpDisburse))
}

func TestAuthorize(t *testing.T) {
	finance := Actor{UserID: 7, Name: "Finance", Role: models.RoleFinanceOfficer}

	assert.NoError(t, Authorize(finance, OpDisburse))

	err := Authorize(finance, OpRecordReview)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "access denied", err.Error())

	anonymous := Actor{Role: models.RoleAdmin}
	assert.ErrorIs(t, Authorize(anonymous, OpDisburse), apperrors.ErrUnauthorized)
}
