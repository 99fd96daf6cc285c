package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type intakeStore interface {
	FindByID(ctx context.Context, id string) (*models.IntakeRecord, error)
	FindCompletedByUserAndProgram(ctx context.Context, userID, programID string) (*models.IntakeRecord, error)
	AssignPathway(ctx context.Context, id string, pathway models.FundingPathway, assignedBy string) error
}

// EligibilityResult is a structured verdict, never an error: ineligibility is
// an expected outcome, not an exception.
type EligibilityResult struct {
	CanEnroll      bool                   `json:"can_enroll"`
	Errors         []string               `json:"errors,omitempty"`
	FundingPathway *models.FundingPathway `json:"funding_pathway,omitempty"`
	IntakeRecordID string                 `json:"intake_record_id,omitempty"`
}

// IntakeValidation reports completeness of an in-flight intake and the next
// step the student should take.
type IntakeValidation struct {
	Valid      bool                 `json:"valid"`
	Errors     []string             `json:"errors,omitempty"`
	CanProceed bool                 `json:"can_proceed"`
	NextStep   *models.IntakeStatus `json:"next_step,omitempty"`
}

// EligibilityService gates enrollment on completed intake and an assigned
// funding pathway. All checks fail closed: a missing record blocks enrollment
// rather than letting it through.
type EligibilityService struct {
	intakes intakeStore
	logger  *zap.Logger
}

// NewEligibilityService constructs the validator.
func NewEligibilityService(intakes intakeStore, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{intakes: intakes, logger: logger}
}

// ValidateEnrollmentEligibility checks that the user holds a completed intake
// for the program with an assigned funding pathway. Business failures come
// back inside the result; only storage faults produce an error.
func (s *EligibilityService) ValidateEnrollmentEligibility(ctx context.Context, userID, programID string) (*EligibilityResult, error) {
	intake, err := s.intakes.FindCompletedByUserAndProgram(ctx, userID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &EligibilityResult{
				CanEnroll: false,
				Errors:    []string{"intake not completed for this program"},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intake record")
	}

	result := &EligibilityResult{IntakeRecordID: intake.ID}
	if intake.FundingPathway == nil || !models.IsKnownPathway(*intake.FundingPathway) {
		result.Errors = append(result.Errors, "funding pathway not assigned")
	}
	if validation := ValidateIntakeCompletion(intake); !validation.Valid {
		result.Errors = append(result.Errors, validation.Errors...)
	}

	result.CanEnroll = len(result.Errors) == 0
	if result.CanEnroll {
		result.FundingPathway = intake.FundingPathway
	}
	return result, nil
}

// ValidateIntakeCompletion walks the intake steps in order and reports the
// first incomplete one as the next step. Pathway-specific steps only apply to
// the assigned pathway.
func ValidateIntakeCompletion(intake *models.IntakeRecord) IntakeValidation {
	var v IntakeValidation

	if !intake.IdentityVerified {
		v.Errors = append(v.Errors, "identity verification incomplete")
		setNextStep(&v, models.IntakeStatusIdentityPending)
	}

	pathway := models.FundingPathway("")
	if intake.FundingPathway != nil {
		pathway = *intake.FundingPathway
	}

	switch pathway {
	case models.PathwayWorkforceFunded:
		if !intake.WorkforceScreeningCompleted {
			v.Errors = append(v.Errors, "workforce funding screening incomplete")
			setNextStep(&v, models.IntakeStatusWorkforceScreening)
		}
	case models.PathwayEmployerSponsored:
		if !intake.EmployerScreeningCompleted {
			v.Errors = append(v.Errors, "employer sponsorship screening incomplete")
			setNextStep(&v, models.IntakeStatusEmployerScreening)
		}
	case models.PathwayStructuredTuition:
		if !intake.FinancialReadinessCompleted {
			v.Errors = append(v.Errors, "financial readiness assessment incomplete")
			setNextStep(&v, models.IntakeStatusFinancialReadiness)
		} else {
			if !intake.CanPayDownPayment {
				v.Errors = append(v.Errors, "down payment capability not confirmed")
			}
			if !intake.CanCommitMonthly {
				v.Errors = append(v.Errors, "monthly payment commitment not confirmed")
			}
			if !intake.AcceptsAutoPayment {
				v.Errors = append(v.Errors, "automatic payment consent missing")
			}
			if !intake.Understands90DayLimit {
				v.Errors = append(v.Errors, "payment term limit acknowledgment missing")
			}
			if len(v.Errors) > 0 && v.NextStep == nil {
				setNextStep(&v, models.IntakeStatusFinancialReadiness)
			}
		}
	default:
		v.Errors = append(v.Errors, "funding pathway not assigned")
		setNextStep(&v, models.IntakeStatusWorkforceScreening)
	}

	if !intake.ProgramReadinessCompleted {
		v.Errors = append(v.Errors, "program readiness incomplete")
		setNextStep(&v, models.IntakeStatusProgramReadiness)
	}
	if !intake.AcknowledgmentSigned {
		v.Errors = append(v.Errors, "enrollment acknowledgment not signed")
		setNextStep(&v, models.IntakeStatusPendingSignature)
	}

	v.Valid = len(v.Errors) == 0
	v.CanProceed = v.Valid
	return v
}

func setNextStep(v *IntakeValidation, step models.IntakeStatus) {
	if v.NextStep == nil {
		v.NextStep = &step
	}
}

// AssignFundingPathway records the pathway chosen during intake. The pathway
// must be one of the closed set and the matching screening must already be
// complete.
func (s *EligibilityService) AssignFundingPathway(ctx context.Context, intakeID string, pathway models.FundingPathway, assignedBy string) (*models.IntakeRecord, error) {
	if !models.IsKnownPathway(pathway) {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "unknown funding pathway"),
			[]string{fmt.Sprintf("funding pathway must be one of %s, %s, %s",
				models.PathwayWorkforceFunded, models.PathwayEmployerSponsored, models.PathwayStructuredTuition)},
		)
	}

	intake, err := s.intakes.FindByID(ctx, intakeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intake record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load intake record")
	}

	switch pathway {
	case models.PathwayWorkforceFunded:
		if !intake.WorkforceScreeningCompleted {
			return nil, appErrors.WithAction(
				appErrors.Clone(appErrors.ErrEligibility, "workforce funding screening must be completed first"),
				"complete_workforce_screening")
		}
	case models.PathwayEmployerSponsored:
		if !intake.EmployerScreeningCompleted {
			return nil, appErrors.WithAction(
				appErrors.Clone(appErrors.ErrEligibility, "employer sponsorship screening must be completed first"),
				"complete_employer_screening")
		}
	case models.PathwayStructuredTuition:
		if !intake.FinancialReadinessCompleted {
			return nil, appErrors.WithAction(
				appErrors.Clone(appErrors.ErrEligibility, "financial readiness assessment must be completed first"),
				"complete_financial_readiness")
		}
	}

	if err := s.intakes.AssignPathway(ctx, intakeID, pathway, assignedBy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign funding pathway")
	}
	s.logger.Info("funding pathway assigned",
		zap.String("intake_id", intakeID),
		zap.String("pathway", string(pathway)),
		zap.String("assigned_by", assignedBy),
	)
	return s.intakes.FindByID(ctx, intakeID)
}
