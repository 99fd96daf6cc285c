package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/response"
)

type pathwaySrv interface {
	AssignFundingPathway(ctx context.Context, intakeID string, pathway models.FundingPathway, assignedBy string) (*models.IntakeRecord, error)
}

type separationSrv interface {
	HandleEmployerSeparation(ctx context.Context, sponsorshipID, reason string) (*models.EmployerSponsorship, error)
}

// FundingHandler exposes the funding-pathway operations that run outside the
// enrollment create flow: pathway assignment during intake and employer
// separation handling.
type FundingHandler struct {
	eligibility pathwaySrv
	enrollments separationSrv
}

// NewFundingHandler creates a new handler.
func NewFundingHandler(eligibility pathwaySrv, enrollments separationSrv) *FundingHandler {
	return &FundingHandler{eligibility: eligibility, enrollments: enrollments}
}

// AssignPathwayRequest selects a funding pathway for an intake record.
type AssignPathwayRequest struct {
	FundingPathway string `json:"funding_pathway" binding:"required"`
}

// SeparationRequest records an employment end on a sponsorship.
type SeparationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AssignPathway godoc
// @Summary Assign a funding pathway
// @Description Record the chosen funding pathway on an intake record
// @Tags Funding
// @Accept json
// @Produce json
// @Param id path string true "Intake record ID"
// @Param payload body AssignPathwayRequest true "Pathway payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /intakes/{id}/pathway [post]
func (h *FundingHandler) AssignPathway(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req AssignPathwayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "funding_pathway is required"))
		return
	}

	intake, err := h.eligibility.AssignFundingPathway(c.Request.Context(), c.Param("id"), models.FundingPathway(req.FundingPathway), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intake, nil)
}

// Separation godoc
// @Summary Record an employer separation
// @Description Stop reimbursement on a sponsorship and pause the linked enrollment
// @Tags Funding
// @Accept json
// @Produce json
// @Param id path string true "Sponsorship ID"
// @Param payload body SeparationRequest true "Separation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sponsorships/{id}/separation [post]
func (h *FundingHandler) Separation(c *gin.Context) {
	var req SeparationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "reason is required"))
		return
	}

	sponsorship, err := h.enrollments.HandleEmployerSeparation(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsorship, nil)
}
