package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/pkg/config"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByUserAndProgram(ctx context.Context, userID, programID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, payment models.PaymentStatus) error
	Delete(ctx context.Context, id string) error
}

type fundingStore interface {
	CreateSponsorship(ctx context.Context, s *models.EmployerSponsorship) error
	FindSponsorshipByID(ctx context.Context, id string) (*models.EmployerSponsorship, error)
	MarkSponsorshipSeparated(ctx context.Context, id, reason string, at time.Time) error
	CreateBridgePlan(ctx context.Context, p *models.BridgePaymentPlan) error
	FindBridgePlanByEnrollment(ctx context.Context, enrollmentID string) (*models.BridgePaymentPlan, error)
}

type eligibilityChecker interface {
	ValidateEnrollmentEligibility(ctx context.Context, userID, programID string) (*EligibilityResult, error)
}

// PaymentSetup describes the financial arrangement created alongside an
// enrollment, shaped per pathway.
type PaymentSetup struct {
	Type                 string  `json:"type"`
	Required             bool    `json:"required"`
	DownPaymentAmount    float64 `json:"down_payment_amount,omitempty"`
	MonthlyAmount        float64 `json:"monthly_amount,omitempty"`
	MonthlyReimbursement float64 `json:"monthly_reimbursement,omitempty"`
	TermMonths           int     `json:"term_months,omitempty"`
	Description          string  `json:"description"`
}

// EnrollmentResult is the success payload of a create request.
type EnrollmentResult struct {
	EnrollmentID   string                  `json:"enrollment_id"`
	FundingPathway models.FundingPathway   `json:"funding_pathway"`
	Status         models.EnrollmentStatus `json:"status"`
	PaymentSetup   *PaymentSetup           `json:"payment_setup,omitempty"`
	Message        string                  `json:"message"`
}

// CredentialDecision answers whether a credential may be issued.
type CredentialDecision struct {
	CanIssue bool   `json:"can_issue"`
	Reason   string `json:"reason,omitempty"`
}

// AccessDecision answers whether academic access is currently granted.
type AccessDecision struct {
	HasAccess bool   `json:"has_access"`
	Reason    string `json:"reason,omitempty"`
}

// EnrollmentService orchestrates enrollment creation with pathway-specific
// payment setup, and the downstream credential and access gates driven by the
// funding side records.
type EnrollmentService struct {
	enrollments enrollmentStore
	funding     fundingStore
	intakes     intakeStore
	eligibility eligibilityChecker
	cache       *CacheService
	cfg         config.EnrollmentConfig
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewEnrollmentService constructs the lifecycle manager.
func NewEnrollmentService(
	enrollments enrollmentStore,
	funding fundingStore,
	intakes intakeStore,
	eligibility eligibilityChecker,
	cache *CacheService,
	cfg config.EnrollmentConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		funding:     funding,
		intakes:     intakes,
		eligibility: eligibility,
		cache:       cache,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create runs the full enrollment sequence: eligibility gate, duplicate
// check, conditional insert, then pathway-specific payment setup. When the
// payment setup fails, the freshly created enrollment is deleted so no
// enrollment exists without its required side record.
func (s *EnrollmentService) Create(ctx context.Context, userID, programID string) (*EnrollmentResult, error) {
	eligibility, err := s.eligibility.ValidateEnrollmentEligibility(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanEnroll {
		if s.metrics != nil {
			s.metrics.RecordEnrollmentBlocked()
		}
		return nil, appErrors.WithAction(
			appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrEligibility, "enrollment requirements not met"),
				eligibility.Errors),
			"complete_intake")
	}

	if existing, err := s.enrollments.FindByUserAndProgram(ctx, userID, programID); err == nil {
		return nil, s.conflictError(existing)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}

	pathway := *eligibility.FundingPathway
	enrollment := &models.Enrollment{
		UserID:          userID,
		ProgramID:       programID,
		FundingPathway:  pathway,
		IntakeRecordID:  eligibility.IntakeRecordID,
		IntakeCompleted: true,
		Status:          models.EnrollmentStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
	}

	inserted, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if !inserted {
		// Lost the race to a concurrent request for the same pair.
		existing, err := s.enrollments.FindByUserAndProgram(ctx, userID, programID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflicting enrollment")
		}
		return nil, s.conflictError(existing)
	}

	result := &EnrollmentResult{
		EnrollmentID:   enrollment.ID,
		FundingPathway: pathway,
		Status:         enrollment.Status,
	}

	switch pathway {
	case models.PathwayWorkforceFunded:
		if err := s.enrollments.UpdateStatus(ctx, enrollment.ID, models.EnrollmentStatusActive, models.PaymentStatusPaid); err != nil {
			return nil, s.rollback(ctx, enrollment.ID, "activate workforce-funded enrollment", err)
		}
		result.Status = models.EnrollmentStatusActive
		result.PaymentSetup = &PaymentSetup{
			Type:        string(models.PathwayWorkforceFunded),
			Required:    false,
			Description: "Tuition covered by workforce funding. No payment required.",
		}
		result.Message = "Enrollment active. Your training is fully funded."

	case models.PathwayEmployerSponsored:
		sponsorship := &models.EmployerSponsorship{
			EnrollmentID:         enrollment.ID,
			UserID:               userID,
			EmployerName:         s.employerName(ctx, eligibility.IntakeRecordID),
			MonthlyReimbursement: s.cfg.SponsorshipMonthly,
			TermMonths:           s.cfg.SponsorshipTermMonths,
			Status:               models.SponsorshipStatusPendingAgreement,
		}
		if err := s.validateSponsorshipTerms(sponsorship); err != nil {
			return nil, s.rollback(ctx, enrollment.ID, "validate sponsorship terms", err)
		}
		if err := s.funding.CreateSponsorship(ctx, sponsorship); err != nil {
			return nil, s.rollback(ctx, enrollment.ID, "create employer sponsorship", err)
		}
		result.PaymentSetup = &PaymentSetup{
			Type:                 string(models.PathwayEmployerSponsored),
			Required:             true,
			MonthlyReimbursement: sponsorship.MonthlyReimbursement,
			TermMonths:           sponsorship.TermMonths,
			Description:          "Employer reimbursement agreement pending signature.",
		}
		result.Message = "Enrollment created. Your employer's sponsorship agreement is being prepared."

	case models.PathwayStructuredTuition:
		now := time.Now().UTC()
		total := s.cfg.ProgramTuitionFallback
		plan := &models.BridgePaymentPlan{
			EnrollmentID:         enrollment.ID,
			UserID:               userID,
			DownPaymentAmount:    s.cfg.BridgeDownPayment,
			MonthlyPaymentAmount: s.cfg.BridgeMonthlyPayment,
			MaxTermMonths:        s.cfg.BridgeMaxTermMonths,
			TotalAmount:          total,
			BalanceRemaining:     total,
			PlanStartDate:        now,
			PlanEndDate:          now.AddDate(0, 0, s.cfg.BridgeMaxTermDays),
			AutoPaymentEnabled:   true,
			CredentialHold:       true,
			Status:               models.BridgePlanStatusAwaitingDownPayment,
		}
		if err := s.validateBridgePlan(plan); err != nil {
			return nil, s.rollback(ctx, enrollment.ID, "validate bridge plan terms", err)
		}
		if err := s.funding.CreateBridgePlan(ctx, plan); err != nil {
			return nil, s.rollback(ctx, enrollment.ID, "create bridge payment plan", err)
		}
		result.PaymentSetup = &PaymentSetup{
			Type:              string(models.PathwayStructuredTuition),
			Required:          true,
			DownPaymentAmount: plan.DownPaymentAmount,
			MonthlyAmount:     plan.MonthlyPaymentAmount,
			TermMonths:        plan.MaxTermMonths,
			Description:       "Bridge payment plan created. Pay the down payment to unlock course access.",
		}
		result.Message = "Enrollment created. Complete your down payment to begin."

	default:
		// The eligibility gate already rejected unknown pathways; reaching
		// this arm means a new pathway was added without a setup branch.
		return nil, s.rollback(ctx, enrollment.ID, "dispatch funding pathway",
			fmt.Errorf("no payment setup for pathway %q", pathway))
	}

	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("user_id", userID),
		zap.String("program_id", programID),
		zap.String("funding_pathway", string(pathway)),
	)
	if s.metrics != nil {
		s.metrics.RecordEnrollmentCreated(string(pathway))
	}
	s.invalidateUserCache(ctx, userID)
	return result, nil
}

func (s *EnrollmentService) conflictError(existing *models.Enrollment) *appErrors.Error {
	return appErrors.WithMeta(
		appErrors.Clone(appErrors.ErrConflict, "already enrolled in this program"),
		map[string]interface{}{
			"enrollment_id": existing.ID,
			"status":        existing.Status,
		})
}

// rollback deletes the enrollment created earlier in the request so the
// pathway invariants hold, then wraps the original failure.
func (s *EnrollmentService) rollback(ctx context.Context, enrollmentID, stage string, cause error) *appErrors.Error {
	if err := s.enrollments.Delete(ctx, enrollmentID); err != nil {
		s.logger.Error("enrollment rollback failed",
			zap.String("enrollment_id", enrollmentID),
			zap.String("stage", stage),
			zap.Error(err),
		)
	} else {
		s.logger.Warn("enrollment rolled back",
			zap.String("enrollment_id", enrollmentID),
			zap.String("stage", stage),
			zap.Error(cause),
		)
	}
	return appErrors.Wrap(cause, appErrors.ErrDependencyFailure.Code, appErrors.ErrDependencyFailure.Status,
		fmt.Sprintf("failed to %s", stage))
}

// validateBridgePlan guards the configured amounts before a plan row is
// written: the down payment and monthly amount must clear their minimums
// and the term must stay inside the hard 3-month/90-day window.
func (s *EnrollmentService) validateBridgePlan(plan *models.BridgePaymentPlan) error {
	if plan.DownPaymentAmount < s.cfg.BridgeMinDownPayment {
		return fmt.Errorf("bridge plan down payment %.2f below minimum %.2f", plan.DownPaymentAmount, s.cfg.BridgeMinDownPayment)
	}
	if plan.MonthlyPaymentAmount < s.cfg.BridgeMinMonthly {
		return fmt.Errorf("bridge plan monthly payment %.2f below minimum %.2f", plan.MonthlyPaymentAmount, s.cfg.BridgeMinMonthly)
	}
	if plan.MaxTermMonths <= 0 || plan.MaxTermMonths > s.cfg.BridgeMaxTermMonths {
		return fmt.Errorf("bridge plan term %d months outside allowed maximum %d", plan.MaxTermMonths, s.cfg.BridgeMaxTermMonths)
	}
	if span := plan.PlanEndDate.Sub(plan.PlanStartDate); span > time.Duration(s.cfg.BridgeMaxTermDays)*24*time.Hour {
		return fmt.Errorf("bridge plan span %s exceeds %d days", span, s.cfg.BridgeMaxTermDays)
	}
	return nil
}

// validateSponsorshipTerms keeps reimbursement and term inside the
// configured bounds before a sponsorship row is written.
func (s *EnrollmentService) validateSponsorshipTerms(sp *models.EmployerSponsorship) error {
	if sp.MonthlyReimbursement < s.cfg.SponsorshipMinMonthly || sp.MonthlyReimbursement > s.cfg.SponsorshipMaxMonthly {
		return fmt.Errorf("sponsorship reimbursement %.2f outside allowed range %.2f-%.2f",
			sp.MonthlyReimbursement, s.cfg.SponsorshipMinMonthly, s.cfg.SponsorshipMaxMonthly)
	}
	if sp.TermMonths < s.cfg.SponsorshipMinTermMos || sp.TermMonths > s.cfg.SponsorshipMaxTermMos {
		return fmt.Errorf("sponsorship term %d months outside allowed range %d-%d",
			sp.TermMonths, s.cfg.SponsorshipMinTermMos, s.cfg.SponsorshipMaxTermMos)
	}
	return nil
}

func (s *EnrollmentService) employerName(ctx context.Context, intakeID string) string {
	intake, err := s.intakes.FindByID(ctx, intakeID)
	if err != nil || intake.EmployerName == nil || *intake.EmployerName == "" {
		return "Pending Employer"
	}
	return *intake.EmployerName
}

func (s *EnrollmentService) invalidateUserCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("enrollments:user:%s*", userID))
}

// Get returns a single enrollment.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// CanIssueCredential gates credential issuance on the funding side records:
// a structured-tuition enrollment with an open balance holds the credential
// until the plan is settled.
func (s *EnrollmentService) CanIssueCredential(ctx context.Context, enrollmentID string) (*CredentialDecision, error) {
	enrollment, err := s.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	switch enrollment.FundingPathway {
	case models.PathwayWorkforceFunded, models.PathwayEmployerSponsored:
		return &CredentialDecision{CanIssue: true}, nil
	case models.PathwayStructuredTuition:
		plan, err := s.funding.FindBridgePlanByEnrollment(ctx, enrollmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &CredentialDecision{CanIssue: false, Reason: "payment plan missing for structured tuition enrollment"}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
		}
		if plan.CredentialHold && plan.BalanceRemaining > 0 {
			return &CredentialDecision{
				CanIssue: false,
				Reason:   fmt.Sprintf("outstanding balance of %.2f on payment plan", plan.BalanceRemaining),
			}, nil
		}
		return &CredentialDecision{CanIssue: true}, nil
	default:
		return &CredentialDecision{CanIssue: false, Reason: "unknown funding pathway"}, nil
	}
}

// CheckAcademicAccess reports whether the student may currently access
// coursework. Paused plans and down payments not yet made block access on
// the structured tuition pathway.
func (s *EnrollmentService) CheckAcademicAccess(ctx context.Context, userID, enrollmentID string) (*AccessDecision, error) {
	enrollment, err := s.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another user")
	}

	if enrollment.Status == models.EnrollmentStatusPaused {
		return &AccessDecision{HasAccess: false, Reason: "enrollment is paused"}, nil
	}

	if enrollment.FundingPathway == models.PathwayStructuredTuition {
		plan, err := s.funding.FindBridgePlanByEnrollment(ctx, enrollmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &AccessDecision{HasAccess: false, Reason: "payment plan missing"}, nil
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment plan")
		}
		if plan.AcademicAccessPaused {
			reason := "academic access paused"
			if plan.AcademicAccessPausedReason != nil {
				reason = *plan.AcademicAccessPausedReason
			}
			return &AccessDecision{HasAccess: false, Reason: reason}, nil
		}
		if !plan.DownPaymentPaid {
			return &AccessDecision{HasAccess: false, Reason: "down payment not yet received"}, nil
		}
	}

	return &AccessDecision{HasAccess: true}, nil
}

// HandleEmployerSeparation records an employment end on a sponsorship, stops
// reimbursement and pauses the enrollment until a new funding arrangement is
// made. The student is never silently unenrolled.
func (s *EnrollmentService) HandleEmployerSeparation(ctx context.Context, sponsorshipID, reason string) (*models.EmployerSponsorship, error) {
	sponsorship, err := s.funding.FindSponsorshipByID(ctx, sponsorshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsorship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sponsorship")
	}
	if sponsorship.EmploymentEnded {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employment separation already recorded")
	}

	now := time.Now().UTC()
	if err := s.funding.MarkSponsorshipSeparated(ctx, sponsorshipID, reason, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record separation")
	}
	if err := s.enrollments.UpdateStatus(ctx, sponsorship.EnrollmentID, models.EnrollmentStatusPaused, models.PaymentStatusUnpaid); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to pause enrollment")
	}

	s.logger.Info("employer separation recorded",
		zap.String("sponsorship_id", sponsorshipID),
		zap.String("enrollment_id", sponsorship.EnrollmentID),
		zap.String("reason", reason),
	)
	s.invalidateUserCache(ctx, sponsorship.UserID)
	return s.funding.FindSponsorshipByID(ctx, sponsorshipID)
}
