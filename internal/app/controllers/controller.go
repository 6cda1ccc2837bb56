// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive integer path parameter. On failure it writes
// a 400 envelope and reports false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+name).WithField(name),
		})
		return 0, false
	}
	return id, true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.APIResponse{Data: data})
}
