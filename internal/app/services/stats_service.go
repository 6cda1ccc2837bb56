package services

import (
	"context"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/rs/zerolog"
)

// TopInstitutionsInReport is how many institutions the report ranks
const TopInstitutionsInReport = 10

// UnspecifiedSubCounty labels students who gave no sub-county
const UnspecifiedSubCounty = "Unspecified"

// StatsService builds the staff dashboard summary and the committee report
type StatsService struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(repos *repositories.Repositories, logger zerolog.Logger) *StatsService {
	return &StatsService{
		repos:  repos,
		logger: logger.With().Str("service", "stats").Logger(),
	}
}

// Summary returns counts per status, disbursement totals and the actor's
// unread notification count
func (s *StatsService) Summary(ctx context.Context, actor auth.Actor) (*dto.StatsResponse, error) {
	if err := auth.Authorize(actor, auth.OpViewStatistics); err != nil {
		return nil, err
	}

	byStatus, err := s.repos.Applications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	count, sum, err := s.repos.Disbursements.Totals(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.repos.Notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		TotalApplications:   total,
		ByStatus:            byStatus,
		TotalDisbursed:      sum,
		DisbursementCount:   count,
		UnreadNotifications: unread,
	}, nil
}

// Report breaks applications down by sub-county, status and institution,
// with the total paid out
func (s *StatsService) Report(ctx context.Context, actor auth.Actor) (*dto.ReportResponse, error) {
	if err := auth.Authorize(actor, auth.OpViewReports); err != nil {
		return nil, err
	}

	bySubCounty, err := s.repos.Applications.TotalsBySubCounty(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bySubCounty {
		if bySubCounty[i].Name == "" {
			bySubCounty[i].Name = UnspecifiedSubCounty
		}
	}
	byStatus, err := s.repos.Applications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	institutions, err := s.repos.Applications.TopInstitutions(ctx, TopInstitutionsInReport)
	if err != nil {
		return nil, err
	}
	_, disbursed, err := s.repos.Disbursements.Totals(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Stringer("actor", actor).Int("subCounties", len(bySubCounty)).Msg("Report built")
	return &dto.ReportResponse{
		BySubCounty:     bySubCounty,
		ByStatus:        byStatus,
		TopInstitutions: institutions,
		TotalDisbursed:  disbursed,
	}, nil
}
