package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/internal/service"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/response"
)

type enrollmentSrv interface {
	Create(ctx context.Context, userID, programID string) (*service.EnrollmentResult, error)
	CanIssueCredential(ctx context.Context, enrollmentID string) (*service.CredentialDecision, error)
	CheckAcademicAccess(ctx context.Context, userID, enrollmentID string) (*service.AccessDecision, error)
}

type resolverSrv interface {
	GetUserEnrollments(ctx context.Context, userID string) ([]models.NormalizedEnrollment, error)
	GetActiveEnrollments(ctx context.Context, userID string) ([]models.NormalizedEnrollment, error)
}

// EnrollmentHandler wires HTTP endpoints to the enrollment lifecycle and the
// unified enrollment read model.
type EnrollmentHandler struct {
	enrollments enrollmentSrv
	resolver    resolverSrv
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(enrollments enrollmentSrv, resolver resolverSrv) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, resolver: resolver}
}

// CreateEnrollmentRequest is the payload for enrolling in a program.
type CreateEnrollmentRequest struct {
	ProgramID string `json:"program_id" binding:"required"`
}

// Create godoc
// @Summary Enroll in a program
// @Description Create an enrollment for the authenticated user with pathway-specific payment setup
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body CreateEnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "program_id is required"))
		return
	}

	res, err := h.enrollments.Create(c.Request.Context(), claims.UserID, req.ProgramID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"success":         true,
		"enrollment_id":   res.EnrollmentID,
		"funding_pathway": res.FundingPathway,
		"status":          res.Status,
		"payment_setup":   res.PaymentSetup,
		"message":         res.Message,
	}, nil)
}

// List godoc
// @Summary List my enrollments
// @Description Unified view of the caller's enrollments across all delivery modes
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.resolver.GetUserEnrollments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Active godoc
// @Summary List my active enrollments
// @Description Unified view narrowed to in-flight enrollments
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /enrollments/active [get]
func (h *EnrollmentHandler) Active(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.resolver.GetActiveEnrollments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// CredentialEligibility godoc
// @Summary Check credential eligibility
// @Description Whether a credential can be issued for the enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/credential-eligibility [get]
func (h *EnrollmentHandler) CredentialEligibility(c *gin.Context) {
	decision, err := h.enrollments.CanIssueCredential(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}

// Access godoc
// @Summary Check academic access
// @Description Whether the caller currently has access to coursework for the enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/access [get]
func (h *EnrollmentHandler) Access(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	decision, err := h.enrollments.CheckAcademicAccess(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}
