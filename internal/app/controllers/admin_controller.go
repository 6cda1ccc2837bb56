package controllers

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminController handles staff accounts, the dashboard summary and the
// committee report
type AdminController struct {
	authService  *services.AuthService
	statsService *services.StatsService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(authService *services.AuthService, statsService *services.StatsService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		authService:  authService,
		statsService: statsService,
		logger:       logger,
	}
}

// ListUsers returns a page of accounts
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param status query string false "Account status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.UserFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx)

	users, total, err := c.authService.ListUsers(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      dto.NewUserResponses(users),
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	})
}

// CreateUser creates a staff account
// @Summary Create a staff user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Staff user"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 409 {object} dto.APIResponse "Email already registered"
// @Router /admin/users [post]
func (c *AdminController) CreateUser(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.CreateStaffUser(ctx.Request.Context(), actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewUserResponse(user))
}

// UpdateUserStatus activates, deactivates or suspends an account
// @Summary Change account status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /admin/users/{id}/status [patch]
func (c *AdminController) UpdateUserStatus(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.SetUserStatus(ctx.Request.Context(), actor, id, req.Status); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "User status updated"})
}

// DeleteUser removes an account and everything it owns
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 409 {object} dto.APIResponse "User has recorded reviews or disbursements"
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authService.DeleteUser(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "User deleted"})
}

// Stats returns the dashboard summary
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse}
// @Router /stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	stats, err := c.statsService.Summary(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, stats)
}

// Report returns the sub-county, status and institution breakdown
// @Summary Committee report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse}
// @Router /reports [get]
func (c *AdminController) Report(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	report, err := c.statsService.Report(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, report)
}
