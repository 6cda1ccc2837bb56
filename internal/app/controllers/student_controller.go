package controllers

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StudentController lets reviewers browse student profiles
type StudentController struct {
	studentService *services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// List returns a page of students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name, admission number or institution"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Student}}
// @Router /students [get]
func (c *StudentController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.StudentFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	students, total, err := c.studentService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      students,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}

// Get returns one student with their applications
// @Summary Student detail
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailResponse}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, apps, err := c.studentService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.StudentDetailResponse{
		Student:      student,
		Applications: dto.NewApplicationResponses(apps),
	})
}
