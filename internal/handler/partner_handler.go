package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/response"
)

type partnerSrv interface {
	Register(ctx context.Context, req service.RegisterPartnerRequest) (*models.Partner, error)
	Get(ctx context.Context, id string) (*models.Partner, error)
	List(ctx context.Context, limit, offset int) ([]models.Partner, error)
	BuildComplianceReport(ctx context.Context, partnerID, format string) (*service.ComplianceReport, error)
}

// PartnerHandler wires HTTP endpoints to partner onboarding and compliance
// reporting.
type PartnerHandler struct {
	partners partnerSrv
}

// NewPartnerHandler creates a new handler.
func NewPartnerHandler(partners partnerSrv) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

// Register godoc
// @Summary Register a training partner
// @Description Create a partner in draft with its declared programs and states
// @Tags Partners
// @Accept json
// @Produce json
// @Param payload body service.RegisterPartnerRequest true "Partner payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /partners [post]
func (h *PartnerHandler) Register(c *gin.Context) {
	var req service.RegisterPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid partner payload"))
		return
	}

	partner, err := h.partners.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, partner)
}

// Get godoc
// @Summary Get a partner
// @Tags Partners
// @Produce json
// @Param id path string true "Partner ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id} [get]
func (h *PartnerHandler) Get(c *gin.Context) {
	partner, err := h.partners.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, partner, nil)
}

// List godoc
// @Summary List partners
// @Tags Partners
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /partners [get]
func (h *PartnerHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	partners, err := h.partners.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, partners, nil)
}

// ComplianceReport godoc
// @Summary Download a compliance report
// @Description Render the partner's document checklist as CSV or PDF
// @Tags Partners
// @Produce octet-stream
// @Param id path string true "Partner ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /partners/{id}/compliance-report [get]
func (h *PartnerHandler) ComplianceReport(c *gin.Context) {
	report, err := h.partners.BuildComplianceReport(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+report.FileName)
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
