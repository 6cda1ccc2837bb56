package controllers

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReviewController handles committee reviews
type ReviewController struct {
	reviewService *services.ReviewService
	logger        zerolog.Logger
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviewService *services.ReviewService, logger zerolog.Logger) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Record stores a committee recommendation
// @Summary Record a review
// @Description Records a recommendation; a pending application moves to under_review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.RecordReviewRequest true "Review"
// @Success 201 {object} dto.APIResponse{data=dto.ReviewResponse}
// @Failure 400 {object} dto.APIResponse "Invalid decision or amount"
// @Failure 404 {object} dto.APIResponse "Application not found"
// @Router /applications/{id}/reviews [post]
func (c *ReviewController) Record(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RecordReviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	review, err := c.reviewService.Record(ctx.Request.Context(), actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewReviewResponse(review))
}

// List returns the reviews of an application
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ReviewResponse}
// @Router /applications/{id}/reviews [get]
func (c *ReviewController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	reviews, err := c.reviewService.List(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewReviewResponses(reviews))
}
