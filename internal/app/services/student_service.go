package services

import (
	"context"
	"strings"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// StudentService lets reviewers browse student profiles
type StudentService struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(repos *repositories.Repositories, logger zerolog.Logger) *StudentService {
	return &StudentService{
		repos:  repos,
		logger: logger.With().Str("service", "student").Logger(),
	}
}

// List returns a page of students matching the search, newest first
func (s *StudentService) List(ctx context.Context, actor auth.Actor, filter dto.StudentFilterRequest) ([]*models.Student, int64, error) {
	if err := auth.Authorize(actor, auth.OpViewStudents); err != nil {
		return nil, 0, err
	}
	page, size := helpers.NormalizePage(filter.Page, filter.PageSize)
	return s.repos.Students.List(ctx, repositories.StudentFilter{
		Search:   strings.TrimSpace(filter.Search),
		Page:     page,
		PageSize: size,
	})
}

// Get returns one student with their applications, newest first
func (s *StudentService) Get(ctx context.Context, actor auth.Actor, studentID int64) (*models.Student, []*models.Application, error) {
	if err := auth.Authorize(actor, auth.OpViewStudents); err != nil {
		return nil, nil, err
	}
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}
	apps, err := s.repos.Applications.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, nil, err
	}
	return student, apps, nil
}
