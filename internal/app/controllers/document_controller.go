package controllers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/middleware"
)

// DocumentController handles document upload, listing, download and review
type DocumentController struct {
	documentService services.DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload godoc
// @Summary Upload a document
// @Description Stores a PDF/JPG/PNG file of at most 5 MB and re-evaluates application completeness
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Param documentType formData string true "PHOTO, MARKSHEET_10, MARKSHEET_12, AADHAR, TRANSFER_CERTIFICATE or OTHER"
// @Param file formData file true "Document file"
// @Success 201 {object} dto.APIResponse{data=dto.UploadDocumentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid file or document type"
// @Router /student/documents [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)

	var req dto.UploadDocumentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.documentService.Upload(ctx.Request.Context(), userID, req.DocumentType, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Str("documentType", req.DocumentType).Msg("Document upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListOwn returns the student's documents, newest first
// @Summary List own documents
// @Tags documents
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse}
// @Router /student/documents [get]
func (c *DocumentController) ListOwn(ctx *gin.Context) {
	userID, _ := middleware.GetUserID(ctx)

	docs, err := c.documentService.ListOwn(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDocumentResponses(docs)))
}

// Download streams a document to its owner or an admin
// @Summary Download a document
// @Tags documents
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id}/download [get]
func (c *DocumentController) Download(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	doc, f, err := c.documentService.Download(ctx.Request.Context(), id, middleware.GetPrincipal(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer f.Close()

	size := doc.FileSize
	if info, statErr := f.Stat(); statErr == nil {
		size = info.Size()
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName})
	ctx.DataFromReader(http.StatusOK, size, doc.MimeType, f, map[string]string{
		"Content-Disposition": disposition,
	})
}

// List returns all documents for review
// @Summary List documents
// @Tags admin
// @Security BearerAuth
// @Param unverified query bool false "Only unverified documents"
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse}
// @Router /admin/documents [get]
func (c *DocumentController) List(ctx *gin.Context) {
	var req dto.DocumentFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	docs, err := c.documentService.List(ctx.Request.Context(), req.Unverified)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDocumentResponses(docs)))
}

// Verify sets or clears a document's verification flag
// @Summary Verify a document
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param request body dto.VerifyDocumentRequest true "Verification flag"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentResponse}
// @Router /admin/documents/{id}/verify [put]
func (c *DocumentController) Verify(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	var req dto.VerifyDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondValidationError(ctx, err)
		return
	}

	adminID, _ := middleware.GetUserID(ctx)
	doc, err := c.documentService.Verify(ctx.Request.Context(), id, *req.Verified, adminID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDocumentResponse(doc)))
}

// Delete removes a document and its stored file
// @Summary Delete a document
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /admin/documents/{id} [delete]
func (c *DocumentController) Delete(ctx *gin.Context) {
	id, ok := idParamOrAbort(ctx, "id")
	if !ok {
		return
	}

	if err := c.documentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Document deleted"}))
}
