package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/response"
)

type documentSrv interface {
	Upload(ctx context.Context, partnerID string, upload service.DocumentUpload) (*service.UploadResult, error)
	ListStatus(ctx context.Context, partnerID string) ([]models.DocumentStatusView, bool, error)
	Review(ctx context.Context, partnerID, documentID string, accept bool, reviewedBy string) (*models.PartnerDocument, models.PartnerStatus, error)
	Remove(ctx context.Context, partnerID, documentID string) error
	DownloadToken(ctx context.Context, partnerID, documentID string) (string, time.Time, error)
	ResolveDownload(ctx context.Context, token string) (*models.PartnerDocument, *os.File, error)
}

// ReviewDocumentRequest is the staff decision payload.
type ReviewDocumentRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// DocumentHandler wires HTTP endpoints to the partner document ledger.
type DocumentHandler struct {
	documents documentSrv
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(documents documentSrv) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// partnerScope enforces that partner-role callers only touch their own
// partner; staff roles may address any partner.
func partnerScope(c *gin.Context) (string, bool) {
	partnerID := c.Param("id")
	claims := claimsFromContext(c)
	if claims == nil {
		return "", false
	}
	if claims.Role == models.RolePartner {
		if claims.PartnerID == nil || *claims.PartnerID != partnerID {
			return "", false
		}
	}
	return partnerID, true
}

// Upload godoc
// @Summary Upload a compliance document
// @Description Multipart upload that replaces any prior document of the same type
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Partner ID"
// @Param file formData file true "Document file"
// @Param document_type formData string true "Document type"
// @Param program_id formData string false "Program"
// @Param state formData string false "State"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	partnerID, ok := partnerScope(c)
	if !ok {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	docType := c.PostForm("document_type")
	if docType == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document_type is required"))
		return
	}

	var expiresAt *time.Time
	if raw := c.PostForm("expires_at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "expires_at must be RFC3339"))
			return
		}
		expiresAt = &parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	res, err := h.documents.Upload(c.Request.Context(), partnerID, service.DocumentUpload{
		DocumentType: docType,
		ProgramID:    c.PostForm("program_id"),
		State:        c.PostForm("state"),
		FileName:     fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		SizeBytes:    fileHeader.Size,
		ExpiresAt:    expiresAt,
		Content:      file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"success":           true,
		"document":          res.Document,
		"all_docs_complete": res.AllDocsComplete,
		"partner_status":    res.PartnerStatus,
	}, nil)
}

// Status godoc
// @Summary Document checklist status
// @Description Requirement catalog joined against uploads for the partner
// @Tags Documents
// @Produce json
// @Param id path string true "Partner ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/documents/status [get]
func (h *DocumentHandler) Status(c *gin.Context) {
	partnerID, ok := partnerScope(c)
	if !ok {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	views, allComplete, err := h.documents.ListStatus(c.Request.Context(), partnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"partner_id":        partnerID,
		"documents":         views,
		"all_docs_complete": allComplete,
	}, nil)
}

// DownloadURL godoc
// @Summary Issue a signed download link
// @Tags Documents
// @Produce json
// @Param id path string true "Partner ID"
// @Param docId path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/documents/{docId}/download-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	partnerID, ok := partnerScope(c)
	if !ok {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	token, expiresAt, err := h.documents.DownloadToken(c.Request.Context(), partnerID, c.Param("docId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"url":        "/api/v1/documents/download?token=" + token,
	}, nil)
}

// Review godoc
// @Summary Record a review decision on a document
// @Description Accepts or rejects a pending document and recomputes partner status
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Partner ID"
// @Param docId path string true "Document ID"
// @Param payload body ReviewDocumentRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/documents/{docId}/review [post]
func (h *DocumentHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "accept is required"))
		return
	}

	doc, status, err := h.documents.Review(c.Request.Context(), c.Param("id"), c.Param("docId"), *req.Accept, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"document":       doc,
		"partner_status": status,
	}, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Produce json
// @Param id path string true "Partner ID"
// @Param docId path string true "Document ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/documents/{docId} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Remove(c.Request.Context(), c.Param("id"), c.Param("docId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Download a document by signed token
// @Tags Documents
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	doc, file, err := h.documents.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", "attachment; filename="+doc.FileName)
	c.Header("Content-Type", doc.MimeType)
	c.File(file.Name())
}
