package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/metrics"
	"github.com/bobasi/bursary/internal/pkg/reference"
	"github.com/rs/zerolog"
)

// ApplicationService drives the application lifecycle: submission, the
// administrative status override, reads and public tracking.
type ApplicationService struct {
	repos    *repositories.Repositories
	tx       repositories.TxManager
	settings BursarySettings
	now      Clock
	logger   zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(repos *repositories.Repositories, tx repositories.TxManager, settings BursarySettings, clock Clock, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		repos:    repos,
		tx:       tx,
		settings: settings,
		now:      clock,
		logger:   logger.With().Str("service", "applications").Logger(),
	}
}

// Submit creates a pending application for the acting student, assigns its
// number and alerts every active admin and committee member, all in one
// transaction. Numbers continue from the highest one issued this year, so
// deleted applications never push the sequence back onto taken numbers. A
// collision re-runs the transaction with the next candidate number.
func (s *ApplicationService) Submit(ctx context.Context, actor auth.Actor, req dto.SubmitApplicationRequest) (*models.Application, error) {
	if err := auth.Authorize(actor, auth.OpSubmitApplication); err != nil {
		return nil, err
	}

	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	app, err := s.buildApplication(student, req)
	if err != nil {
		return nil, err
	}

	attempts := max(s.settings.NumberAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
			return s.insertApplication(ctx, repos, student, app, attempt)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		metrics.IdentifierRetried("application_number")
		s.logger.Warn().Str("applicationNumber", app.ApplicationNumber).Int("attempt", attempt+1).
			Msg("Application number collision, retrying")
	}
	if err != nil {
		s.logger.Error().Err(err).Int("attempts", attempts).Msg("Could not assign a unique application number")
		return nil, apperrors.NewConflictError("could not assign a unique application number, please retry")
	}

	metrics.ApplicationSubmitted()
	s.logger.Info().
		Str("applicationNumber", app.ApplicationNumber).
		Int64("studentID", student.ID).
		Str("amount", app.RequestedAmount.String()).
		Msg("Application submitted")

	app.Student = student
	return app, nil
}

func (s *ApplicationService) buildApplication(student *models.Student, req dto.SubmitApplicationRequest) (*models.Application, error) {
	amount, err := helpers.ParsePositiveAmount(req.RequestedAmount.String())
	if err != nil {
		return nil, apperrors.NewInvalidInputError("requested amount: " + err.Error())
	}
	if s.settings.MaxAmount.IsPositive() && amount.GreaterThan(s.settings.MaxAmount) {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf(
			"requested amount cannot exceed KShs. %s", helpers.FormatAmount(s.settings.MaxAmount)))
	}

	semester := req.Semester
	if semester == "" {
		semester = models.SemesterOne
	}
	if !semester.IsValid() {
		return nil, apperrors.NewInvalidInputError("semester must be 1, 2 or 3")
	}

	// Blank academic details keep what the profile already holds.
	institution := cmp.Or(strings.TrimSpace(req.Institution), student.Institution)
	course := cmp.Or(strings.TrimSpace(req.Course), student.Course)
	level := cmp.Or(strings.TrimSpace(req.LevelOfStudy), student.LevelOfStudy)

	academicYear := strings.TrimSpace(req.AcademicYear)
	if academicYear == "" {
		academicYear = s.settings.FinancialYear
	}

	siblings := make([]models.Sibling, 0, len(req.Siblings))
	for _, sib := range req.Siblings {
		siblings = append(siblings, models.Sibling{
			Name:        strings.TrimSpace(sib.Name),
			Institution: strings.TrimSpace(sib.Institution),
			Year:        strings.TrimSpace(sib.Year),
			TotalFee:    sib.TotalFee.String(),
			FeesPaid:    sib.FeesPaid.String(),
			Outstanding: sib.Outstanding.String(),
		})
	}

	return &models.Application{
		StudentID:       student.ID,
		AcademicYear:    academicYear,
		Semester:        semester,
		Institution:     institution,
		Course:          course,
		LevelOfStudy:    level,
		RequestedAmount: amount,
		Purpose:         strings.TrimSpace(req.Purpose),
		Siblings:        siblings,
		Status:          models.StatusPending,
	}, nil
}

func (s *ApplicationService) insertApplication(ctx context.Context, repos *repositories.Repositories, student *models.Student, app *models.Application, attempt int) error {
	if err := repos.Applications.LockNumbering(ctx); err != nil {
		return err
	}
	now := s.now()
	last, err := repos.Applications.LastSequence(ctx, reference.ApplicationNumberPrefix(s.settings.ApplicationPrefix, now.Year()))
	if err != nil {
		return err
	}

	app.ApplicationNumber = reference.ApplicationNumber(s.settings.ApplicationPrefix, now.Year(), last+1+int64(attempt))
	app.SubmittedAt = now
	if err := repos.Applications.Create(ctx, app); err != nil {
		return err
	}

	if err := repos.Students.UpdateAcademicInfo(ctx, student.ID, app.Institution, app.Course, app.LevelOfStudy); err != nil {
		return err
	}

	message := fmt.Sprintf("New application %s from %s - KShs. %s",
		app.ApplicationNumber, student.FullName, helpers.FormatAmount(app.RequestedAmount))
	recipients, err := notifyRoles(ctx, repos, reviewerRoles, "New Bursary Application", message, models.NotificationApplication, now)
	if err != nil {
		return err
	}
	s.logger.Debug().Str("applicationNumber", app.ApplicationNumber).Int64("recipients", recipients).Msg("Reviewers notified")
	return nil
}

// UpdateStatus is the administrative override: any of the six statuses may be
// set regardless of the current one. Decision fields are rewritten so that an
// approved amount exists exactly for approved, disbursed and completed
// applications and a rejection reason exactly for rejected ones.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor auth.Actor, applicationID int64, req dto.UpdateStatusRequest) (*models.Application, error) {
	if err := auth.Authorize(actor, auth.OpUpdateApplicationStatus); err != nil {
		return nil, err
	}

	status := models.ApplicationStatus(strings.TrimSpace(string(req.Status)))
	if !status.IsValid() {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("invalid status %q", req.Status))
	}
	reason := strings.TrimSpace(req.RejectionReason)
	if status == models.StatusRejected && reason == "" {
		return nil, apperrors.NewInvalidInputError("a rejection reason is required")
	}

	var updated *models.Application
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		app, err := repos.Applications.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		previous := app.Status
		now := s.now()

		s.applyDecision(app, status, req, reason, actor, now)
		if err := repos.Applications.UpdateDecision(ctx, app); err != nil {
			return err
		}

		if message, ok := statusMessage(app); ok {
			title := "Application " + helpers.TitleCase(string(status))
			if err := notifyStudent(ctx, repos, app.StudentID, title, message, models.NotificationApplication, now); err != nil {
				return err
			}
		}

		s.logger.Info().
			Str("applicationNumber", app.ApplicationNumber).
			Str("from", string(previous)).
			Str("to", string(status)).
			Stringer("actor", actor).
			Msg("Application status updated")
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusChanged(string(status))
	return updated, nil
}

func (s *ApplicationService) applyDecision(app *models.Application, status models.ApplicationStatus, req dto.UpdateStatusRequest, reason string, actor auth.Actor, now time.Time) {
	app.Status = status
	app.UpdatedAt = now
	app.ReviewedAt = &now
	reviewer := actor.Name
	app.ReviewedBy = &reviewer
	app.CommitteeComments = nil
	if comments := strings.TrimSpace(req.CommitteeComments); comments != "" {
		app.CommitteeComments = &comments
	}

	app.RejectionReason = nil
	if status == models.StatusRejected {
		app.RejectionReason = &reason
	}

	switch {
	case status == models.StatusApproved:
		amount, err := helpers.ParsePositiveAmount(req.ApprovedAmount.String())
		if err != nil {
			amount = app.RequestedAmount
		}
		app.ApprovedAmount = &amount
		app.ApprovedAt = &now
	case status.HoldsApprovedAmount():
		if app.ApprovedAmount == nil {
			amount := app.RequestedAmount
			app.ApprovedAmount = &amount
		}
	default:
		app.ApprovedAmount = nil
		app.ApprovedAt = nil
	}
}

// statusMessage returns the student-facing message for statuses that notify
func statusMessage(app *models.Application) (string, bool) {
	switch app.Status {
	case models.StatusApproved:
		return fmt.Sprintf("Congratulations! Your application %s has been APPROVED for KShs. %s.",
			app.ApplicationNumber, helpers.FormatAmount(*app.ApprovedAmount)), true
	case models.StatusRejected:
		return fmt.Sprintf("Your application %s was not approved. Reason: %s",
			app.ApplicationNumber, *app.RejectionReason), true
	case models.StatusUnderReview:
		return fmt.Sprintf("Your application %s is now under review by the committee.", app.ApplicationNumber), true
	case models.StatusDisbursed:
		return fmt.Sprintf("Funds for application %s have been disbursed. Check your account.", app.ApplicationNumber), true
	}
	return "", false
}

// ApplicationDetail is an application with its reviews and documents
type ApplicationDetail struct {
	Application *models.Application
	Reviews     []*models.Review
	Documents   []*models.Document
}

// Get returns one application. Students only see their own, without the
// committee's reviews.
func (s *ApplicationService) Get(ctx context.Context, actor auth.Actor, applicationID int64) (*ApplicationDetail, error) {
	app, err := s.authorizedApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	detail := &ApplicationDetail{Application: app}
	if actor.IsStaff() {
		if detail.Reviews, err = s.repos.Reviews.ListByApplication(ctx, app.ID); err != nil {
			return nil, err
		}
	}
	if detail.Documents, err = s.repos.Documents.ListByApplication(ctx, app.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

// authorizedApplication loads an application the actor may see: staff see
// every application, students only the ones they own.
func (s *ApplicationService) authorizedApplication(ctx context.Context, actor auth.Actor, applicationID int64) (*models.Application, error) {
	if actor.IsStaff() {
		if err := auth.Authorize(actor, auth.OpViewAnyApplication); err != nil {
			return nil, err
		}
		return s.repos.Applications.GetByID(ctx, applicationID)
	}
	if err := auth.Authorize(actor, auth.OpViewOwnApplications); err != nil {
		return nil, err
	}

	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "access denied")
	}
	return app, nil
}

// ListMine returns the acting student's applications, newest first
func (s *ApplicationService) ListMine(ctx context.Context, actor auth.Actor) ([]*models.Application, error) {
	if err := auth.Authorize(actor, auth.OpViewOwnApplications); err != nil {
		return nil, err
	}
	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.repos.Applications.ListByStudent(ctx, student.ID)
}

// List returns a filtered page of all applications for reviewers
func (s *ApplicationService) List(ctx context.Context, actor auth.Actor, filter dto.ApplicationFilterRequest) ([]*models.Application, int64, error) {
	if err := auth.Authorize(actor, auth.OpViewAllApplications); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid status %q", filter.Status))
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Applications.List(ctx, repositories.ApplicationFilter{
		Status:   filter.Status,
		Search:   strings.TrimSpace(filter.Search),
		Page:     page,
		PageSize: size,
	})
}

// Track is the public status lookup by application number
func (s *ApplicationService) Track(ctx context.Context, number string) (*models.Application, error) {
	number = reference.Normalize(number)
	if number == "" {
		return nil, apperrors.NewInvalidInputError("application number is required")
	}
	return s.repos.Applications.GetByNumber(ctx, number)
}
