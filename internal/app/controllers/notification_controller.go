package controllers

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationController serves the caller's notifications
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the caller's notifications
// @Summary My notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Maximum items" default(50)
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	var filter dto.NotificationFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	items, unread, err := c.notificationService.List(ctx.Request.Context(), actor, filter.Unread, filter.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if items == nil {
		items = []*models.Notification{}
	}

	respond(ctx, http.StatusOK, dto.NotificationListResponse{
		Notifications: items,
		UnreadCount:   unread,
	})
}

// MarkRead marks every unread notification of the caller as read
// @Summary Mark notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarkReadResponse}
// @Router /notifications/mark-read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}

	updated, err := c.notificationService.MarkAllRead(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.MarkReadResponse{Updated: updated})
}
