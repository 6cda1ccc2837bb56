package auth

import (
	"fmt"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
)

// Actor is the authenticated caller of a service operation. It is passed
// explicitly into every operation.
type Actor struct {
	UserID int64
	Name   string
	Email  string
	Role   models.RoleType
}

// Is reports whether the actor holds role
func (a Actor) Is(role models.RoleType) bool {
	return a.Role == role
}

// IsStaff reports whether the actor is admin, finance or committee
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// Operation names a capability checked before a service operation runs
type Operation string

const (
	OpSubmitApplication       Operation = "submit_application"
	OpViewOwnApplications     Operation = "view_own_applications"
	OpUploadDocument          Operation = "upload_document"
	OpViewOwnGrants           Operation = "view_own_grants"
	OpViewAllApplications     Operation = "view_all_applications"
	OpViewAnyApplication      Operation = "view_any_application"
	OpRecordReview            Operation = "record_review"
	OpUpdateApplicationStatus Operation = "update_application_status"
	OpDisburse                Operation = "disburse"
	OpViewDisbursements       Operation = "view_disbursements"
	OpViewStatistics          Operation = "view_statistics"
	OpViewReports             Operation = "view_reports"
	OpViewStudents            Operation = "view_students"
	OpManageUsers             Operation = "manage_users"
	OpReadNotifications       Operation = "read_notifications"
	OpChangePassword          Operation = "change_password"
)

var (
	studentOnly   = []models.RoleType{models.RoleStudent}
	reviewers     = []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}
	finance       = []models.RoleType{models.RoleAdmin, models.RoleFinanceOfficer}
	staff         = []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee, models.RoleFinanceOfficer}
	adminOnly     = []models.RoleType{models.RoleAdmin}
	everyone      = []models.RoleType{models.RoleStudent, models.RoleAdmin, models.RoleReviewCommittee, models.RoleFinanceOfficer}
	permittedRole = map[Operation][]models.RoleType{
		OpSubmitApplication:       studentOnly,
		OpViewOwnApplications:     studentOnly,
		OpUploadDocument:          studentOnly,
		OpViewOwnGrants:           studentOnly,
		OpViewAllApplications:     reviewers,
		OpViewAnyApplication:      staff,
		OpRecordReview:            reviewers,
		OpUpdateApplicationStatus: reviewers,
		OpDisburse:                finance,
		OpViewDisbursements:       finance,
		OpViewStatistics:          staff,
		OpViewReports:             reviewers,
		OpViewStudents:            reviewers,
		OpManageUsers:             adminOnly,
		OpReadNotifications:       everyone,
		OpChangePassword:          everyone,
	}
)

// PermittedRoles returns the roles allowed to perform op
func PermittedRoles(op Operation) []models.RoleType {
	return permittedRole[op]
}

// Can reports whether role may perform op. Unknown operations are denied.
func Can(role models.RoleType, op Operation) bool {
	for _, r := range permittedRole[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns an Unauthorized error when the actor may not perform op.
// The error message never reveals anything about the target resource.
func Authorize(actor Actor, op Operation) error {
	if actor.UserID <= 0 || !Can(actor.Role, op) {
		return apperrors.NewCustomError(apperrors.ErrUnauthorized, "access denied").
			WithDetails(map[string]interface{}{"operation": string(op)})
	}
	return nil
}

// String implements fmt.Stringer for log fields
func (a Actor) String() string {
	return fmt.Sprintf("%s#%d", a.Role, a.UserID)
}
