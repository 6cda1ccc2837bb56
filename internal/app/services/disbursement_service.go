package services

import (
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
	"github.com/shopspring/decimal"
)

// DisbursementResult is the disbursement and its paired grant record
type DisbursementResult struct {
	Disbursement *models.Disbursement
	Grant        *models.Grant
}

// DisbursementService records the release of funds and the grant records
type DisbursementService struct {
	repos        *repositories.Repositories
	tx           repositories.TxManager
	settings     BursarySettings
	now          Clock
	newReference func(prefix string, day time.Time) string
	logger       zerolog.Logger
}

// NewDisbursementService creates a new DisbursementService
func NewDisbursementService(repos *repositories.Repositories, tx repositories.TxManager, settings BursarySettings, clock Clock, logger zerolog.Logger) *DisbursementService {
	return &DisbursementService{
		repos:        repos,
		tx:           tx,
		settings:     settings,
		now:          clock,
		newReference: reference.DisbursementReference,
		logger:       logger.With().Str("service", "disbursements").Logger(),
	}
}

// Disburse records funds released for an approved application. The status
// flip, disbursement, grant and student notification commit together; the
// status flip is a compare-and-swap so only one of two racing calls wins.
func (s *DisbursementService) Disburse(ctx context.Context, actor auth.Actor, req dto.DisburseRequest) (*DisbursementResult, error) {
	if err := auth.Authorize(actor, auth.OpDisburse); err != nil {
		return nil, err
	}

	app, err := s.repos.Applications.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusApproved {
		return nil, apperrors.NewInvalidStateError("application must be approved before disbursement")
	}
	amount, err := helpers.ParsePositiveAmount(req.Amount.String())
	if err != nil {
		return nil, apperrors.NewInvalidInputError("disbursement amount: " + err.Error())
	}
	method := models.PaymentMethod(strings.TrimSpace(string(req.PaymentMethod)))
	if !method.IsValid() {
		return nil, apperrors.NewInvalidInputError("payment method must be bank_transfer, mpesa, cheque or cash")
	}

	if app.ApprovedAmount != nil && !app.ApprovedAmount.Equal(amount) {
		s.logger.Warn().
			Str("applicationNumber", app.ApplicationNumber).
			Str("approved", app.ApprovedAmount.String()).
			Str("disbursed", amount.String()).
			Msg("Disbursement amount differs from approved amount")
	}

	attempts := max(s.settings.ReferenceAttempts, 1)
	var result *DisbursementResult
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = s.record(ctx, actor, app, amount, method, req)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		metrics.IdentifierRetried("disbursement_reference")
		s.logger.Warn().Int("attempt", attempt+1).Msg("Disbursement reference collision, retrying")
	}
	if err != nil {
		return nil, apperrors.NewConflictError("could not generate a unique disbursement reference, please retry")
	}

	metrics.DisbursementRecorded(string(method), amount)
	metrics.StatusChanged(string(models.StatusDisbursed))
	s.logger.Info().
		Str("applicationNumber", app.ApplicationNumber).
		Str("reference", result.Disbursement.ReferenceNumber).
		Str("amount", amount.String()).
		Str("method", string(method)).
		Stringer("actor", actor).
		Msg("Funds disbursed")
	return result, nil
}

func (s *DisbursementService) record(ctx context.Context, actor auth.Actor, app *models.Application, amount decimal.Decimal, method models.PaymentMethod, req dto.DisburseRequest) (*DisbursementResult, error) {
	var result *DisbursementResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.now()
		flipped, err := repos.Applications.MarkDisbursed(ctx, app.ID, now)
		if err != nil {
			return err
		}
		if !flipped {
			return apperrors.NewInvalidStateError("application must be approved before disbursement")
		}

		disbursement := &models.Disbursement{
			ApplicationID:     app.ID,
			ApplicationNumber: app.ApplicationNumber,
			StudentID:         app.StudentID,
			FinanceOfficerID:  actor.UserID,
			Amount:            amount,
			DisbursementDate:  now,
			PaymentMethod:     method,
			BankName:          trimmedOrNil(req.BankName),
			AccountNumber:     trimmedOrNil(req.AccountNumber),
			ReferenceNumber:   s.newReference(s.settings.DisbursementPrefix, now),
			Status:            models.DisbursementProcessed,
			Notes:             trimmedOrNil(req.Notes),
		}
		if err := repos.Disbursements.Create(ctx, disbursement); err != nil {
			return err
		}

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		grant := &models.Grant{
			ApplicationID:         app.ID,
			StudentID:             app.StudentID,
			DisbursementID:        disbursement.ID,
			PrincipalAmount:       amount,
			InterestRate:          decimal.Zero,
			RepaymentPeriodMonths: 0,
			MonthlyInstallment:    decimal.Zero,
			TotalPayable:          amount,
			BalanceRemaining:      decimal.Zero,
			StartDate:             day,
			DueDate:               day,
			Status:                models.GrantActive,
		}
		if err := repos.Grants.Create(ctx, grant); err != nil {
			return err
		}

		message := fmt.Sprintf("Congratulations! KShs %s has been disbursed for your bursary application %s. Reference: %s. Method: %s.",
			helpers.FormatAmount(amount), app.ApplicationNumber, disbursement.ReferenceNumber, helpers.TitleCase(string(method)))
		if err := notifyStudent(ctx, repos, app.StudentID, "Bursary Funds Disbursed", message, models.NotificationDisbursement, now); err != nil {
			return err
		}

		result = &DisbursementResult{Disbursement: disbursement, Grant: grant}
		return nil
	})
	return result, err
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListDisbursements returns a filtered page of the disbursement history
func (s *DisbursementService) ListDisbursements(ctx context.Context, actor auth.Actor, filter dto.DisbursementFilterRequest) ([]*models.Disbursement, int64, error) {
	if err := auth.Authorize(actor, auth.OpViewDisbursements); err != nil {
		return nil, 0, err
	}
	if filter.PaymentMethod != "" && !filter.PaymentMethod.IsValid() {
		return nil, 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid payment method %q", filter.PaymentMethod))
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Disbursements.List(ctx, repositories.DisbursementFilter{
		PaymentMethod: filter.PaymentMethod,
		Search:        strings.TrimSpace(filter.Search),
		Page:          page,
		PageSize:      size,
	})
}

// ListGrants returns a filtered page of grant records for finance staff
func (s *DisbursementService) ListGrants(ctx context.Context, actor auth.Actor, filter dto.GrantFilterRequest) ([]*models.Grant, int64, error) {
	if err := auth.Authorize(actor, auth.OpViewDisbursements); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid grant status %q", filter.Status))
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Grants.List(ctx, repositories.GrantFilter{
		Status:   filter.Status,
		Page:     page,
		PageSize: size,
	})
}

// ListMyGrants returns the acting student's grant records
func (s *DisbursementService) ListMyGrants(ctx context.Context, actor auth.Actor, filter dto.GrantFilterRequest) ([]*models.Grant, int64, error) {
	if err := auth.Authorize(actor, auth.OpViewOwnGrants); err != nil {
		return nil, 0, err
	}
	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Grants.List(ctx, repositories.GrantFilter{
		Status:    filter.Status,
		StudentID: student.ID,
		Page:      page,
		PageSize:  size,
	})
}
