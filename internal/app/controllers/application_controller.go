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

// ApplicationController handles bursary applications
type ApplicationController struct {
	applicationService *services.ApplicationService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Submit handles a student's application
// @Summary Submit an application
// @Description Creates a pending application, numbers it and notifies the reviewers
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitApplicationRequest true "Application form"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 403 {object} dto.APIResponse "Not a student"
// @Router /applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewApplicationResponse(app))
}

// ListMine returns the caller's applications
// @Summary My applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationResponse}
// @Router /applications/mine [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	apps, err := c.applicationService.ListMine(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewApplicationResponses(apps))
}

// List returns a filtered page of applications
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param search query string false "Number, student name, institution or course"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.ApplicationFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	apps, total, err := c.applicationService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      dto.NewApplicationResponses(apps),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}

// Get returns one application with its documents, and reviews for staff
// @Summary Application detail
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationDetailResponse}
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.applicationService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.ApplicationDetailResponse{
		ApplicationResponse: dto.NewApplicationResponse(detail.Application),
		Reviews:             dto.NewReviewResponses(detail.Reviews),
		Documents:           dto.NewDocumentResponses(detail.Documents),
	})
}

// UpdateStatus applies an administrative decision
// @Summary Update application status
// @Description Approve, reject or move an application; the student is notified
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateStatusRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.APIResponse "Invalid input"
// @Failure 422 {object} dto.APIResponse "Already disbursed"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("number", app.ApplicationNumber).Str("status", string(app.Status)).Msg("Application status updated")
	respond(ctx, http.StatusOK, dto.NewApplicationResponse(app))
}

// Track is the public status lookup
// @Summary Track an application
// @Tags public
// @Produce json
// @Param number path string true "Application number" example(BOB202500001)
// @Success 200 {object} dto.APIResponse{data=dto.TrackResponse}
// @Failure 404 {object} dto.APIResponse "Unknown number"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Router /track/{number} [get]
func (c *ApplicationController) Track(ctx *gin.Context) {
	app, err := c.applicationService.Track(ctx.Request.Context(), ctx.Param("number"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewTrackResponse(app))
}
