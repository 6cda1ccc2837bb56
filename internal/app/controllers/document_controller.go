package controllers

import (
	"net/http"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DocumentController handles supporting documents
type DocumentController struct {
	documentService *services.DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService *services.DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload stores a supporting document for one of the caller's applications
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param documentType formData string true "Document type" example(fee_structure)
// @Param file formData file true "Document file"
// @Success 201 {object} dto.APIResponse{data=dto.DocumentResponse}
// @Failure 400 {object} dto.APIResponse "Missing file, bad extension or too large"
// @Failure 403 {object} dto.APIResponse "Not the owner"
// @Router /applications/{id}/documents [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UploadDocumentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{Error: dto.HandleValidationError(err)})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "file is required").WithField("file"),
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	doc, err := c.documentService.Upload(ctx.Request.Context(), actor, id, services.DocumentUpload{
		DocumentType: req.DocumentType,
		Filename:     fileHeader.Filename,
		Content:      file,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewDocumentResponses([]*models.Document{doc})[0])
}

// List returns the documents of an application
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse}
// @Router /applications/{id}/documents [get]
func (c *DocumentController) List(ctx *gin.Context) {
	actor, ok := middleware.MustActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.documentService.List(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewDocumentResponses(docs))
}
