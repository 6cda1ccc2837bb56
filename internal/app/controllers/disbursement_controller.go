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

// DisbursementController handles disbursements and grant records
type DisbursementController struct {
	disbursementService *services.DisbursementService
	logger              zerolog.Logger
}

// NewDisbursementController creates a new DisbursementController
func NewDisbursementController(disbursementService *services.DisbursementService, logger zerolog.Logger) *DisbursementController {
	return &DisbursementController{
		disbursementService: disbursementService,
		logger:              logger,
	}
}

// Disburse records the release of funds for an approved application
// @Summary Disburse funds
// @Description Records a disbursement and its grant, marks the application disbursed and notifies the student
// @Tags disbursements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DisburseRequest true "Disbursement"
// @Success 201 {object} dto.APIResponse{data=dto.DisbursementResultResponse}
// @Failure 400 {object} dto.APIResponse "Invalid amount or payment method"
// @Failure 404 {object} dto.APIResponse "Application not found"
// @Failure 422 {object} dto.APIResponse "Application is not approved"
// @Router /disbursements [post]
func (c *DisbursementController) Disburse(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.DisburseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.disbursementService.Disburse(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.DisbursementResultResponse{
		Disbursement: dto.NewDisbursementResponse(result.Disbursement),
		Grant:        result.Grant,
	})
}

// List returns the disbursement history
// @Summary List disbursements
// @Tags disbursements
// @Produce json
// @Security BearerAuth
// @Param paymentMethod query string false "Payment method filter"
// @Param search query string false "Reference or application number"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /disbursements [get]
func (c *DisbursementController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.DisbursementFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	items, total, err := c.disbursementService.ListDisbursements(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      dto.NewDisbursementResponses(items),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}

// ListGrants returns every grant record
// @Summary List grants
// @Tags disbursements
// @Produce json
// @Security BearerAuth
// @Param status query string false "Grant status"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /grants [get]
func (c *DisbursementController) ListGrants(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.GrantFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	grants, total, err := c.disbursementService.ListGrants(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      grants,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}

// ListMyGrants returns the caller's grant records
// @Summary My grants
// @Tags disbursements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /grants/mine [get]
func (c *DisbursementController) ListMyGrants(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.GrantFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	grants, total, err := c.disbursementService.ListMyGrants(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      grants,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}
