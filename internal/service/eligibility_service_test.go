package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type mockIntakeStore struct {
	intake          *models.IntakeRecord
	findErr         error
	findCompleteErr error
	assignErr       error
	assignedPathway models.FundingPathway
	assignedBy      string
}

func (m *mockIntakeStore) FindByID(ctx context.Context, id string) (*models.IntakeRecord, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.intake == nil {
		return nil, sql.ErrNoRows
	}
	return m.intake, nil
}

func (m *mockIntakeStore) FindCompletedByUserAndProgram(ctx context.Context, userID, programID string) (*models.IntakeRecord, error) {
	if m.findCompleteErr != nil {
		return nil, m.findCompleteErr
	}
	if m.intake == nil {
		return nil, sql.ErrNoRows
	}
	return m.intake, nil
}

func (m *mockIntakeStore) AssignPathway(ctx context.Context, id string, pathway models.FundingPathway, assignedBy string) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assignedPathway = pathway
	m.assignedBy = assignedBy
	if m.intake != nil {
		m.intake.FundingPathway = &pathway
	}
	return nil
}

func completedIntake(pathway models.FundingPathway) *models.IntakeRecord {
	return &models.IntakeRecord{
		ID:                          "intake-1",
		UserID:                      "u1",
		ProgramID:                   "BARBER",
		Status:                      models.IntakeStatusCompleted,
		IdentityVerified:            true,
		WorkforceScreeningCompleted: true,
		EmployerScreeningCompleted:  true,
		FinancialReadinessCompleted: true,
		CanPayDownPayment:           true,
		CanCommitMonthly:            true,
		AcceptsAutoPayment:          true,
		Understands90DayLimit:       true,
		ProgramReadinessCompleted:   true,
		AcknowledgmentSigned:        true,
		FundingPathway:              &pathway,
	}
}

func TestValidateEligibilityNoIntake(t *testing.T) {
	svc := NewEligibilityService(&mockIntakeStore{}, zap.NewNop())

	res, err := svc.ValidateEnrollmentEligibility(context.Background(), "u1", "BARBER")
	require.NoError(t, err)
	assert.False(t, res.CanEnroll)
	assert.Contains(t, res.Errors, "intake not completed for this program")
}

func TestValidateEligibilityMissingPathway(t *testing.T) {
	intake := completedIntake(models.PathwayWorkforceFunded)
	intake.FundingPathway = nil
	svc := NewEligibilityService(&mockIntakeStore{intake: intake}, zap.NewNop())

	res, err := svc.ValidateEnrollmentEligibility(context.Background(), "u1", "BARBER")
	require.NoError(t, err)
	assert.False(t, res.CanEnroll)
	assert.Contains(t, res.Errors, "funding pathway not assigned")
}

func TestValidateEligibilitySuccess(t *testing.T) {
	intake := completedIntake(models.PathwayWorkforceFunded)
	svc := NewEligibilityService(&mockIntakeStore{intake: intake}, zap.NewNop())

	res, err := svc.ValidateEnrollmentEligibility(context.Background(), "u1", "BARBER")
	require.NoError(t, err)
	assert.True(t, res.CanEnroll)
	require.NotNil(t, res.FundingPathway)
	assert.Equal(t, models.PathwayWorkforceFunded, *res.FundingPathway)
	assert.Equal(t, "intake-1", res.IntakeRecordID)
}

func TestValidateEligibilityStorageFault(t *testing.T) {
	svc := NewEligibilityService(&mockIntakeStore{findCompleteErr: sql.ErrConnDone}, zap.NewNop())

	_, err := svc.ValidateEnrollmentEligibility(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestValidateIntakeCompletionNextStepOrdering(t *testing.T) {
	intake := completedIntake(models.PathwayStructuredTuition)
	intake.IdentityVerified = false
	intake.AcknowledgmentSigned = false

	v := ValidateIntakeCompletion(intake)
	assert.False(t, v.Valid)
	require.NotNil(t, v.NextStep)
	assert.Equal(t, models.IntakeStatusIdentityPending, *v.NextStep)
	assert.Len(t, v.Errors, 2)
}

func TestValidateIntakeCompletionStructuredTuitionChecks(t *testing.T) {
	intake := completedIntake(models.PathwayStructuredTuition)
	intake.CanPayDownPayment = false
	intake.Understands90DayLimit = false

	v := ValidateIntakeCompletion(intake)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Errors, "down payment capability not confirmed")
	assert.Contains(t, v.Errors, "payment term limit acknowledgment missing")
	require.NotNil(t, v.NextStep)
	assert.Equal(t, models.IntakeStatusFinancialReadiness, *v.NextStep)
}

func TestValidateIntakeCompletionEmployerPathIgnoresFinancialSteps(t *testing.T) {
	intake := completedIntake(models.PathwayEmployerSponsored)
	intake.CanPayDownPayment = false
	intake.FinancialReadinessCompleted = false

	v := ValidateIntakeCompletion(intake)
	assert.True(t, v.Valid)
}

func TestAssignFundingPathwayUnknown(t *testing.T) {
	svc := NewEligibilityService(&mockIntakeStore{intake: completedIntake(models.PathwayWorkforceFunded)}, zap.NewNop())

	_, err := svc.AssignFundingPathway(context.Background(), "intake-1", "scholarship", "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAssignFundingPathwayScreeningGate(t *testing.T) {
	intake := completedIntake(models.PathwayEmployerSponsored)
	intake.EmployerScreeningCompleted = false
	svc := NewEligibilityService(&mockIntakeStore{intake: intake}, zap.NewNop())

	_, err := svc.AssignFundingPathway(context.Background(), "intake-1", models.PathwayEmployerSponsored, "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEligibility.Code, appErr.Code)
	assert.Equal(t, "complete_employer_screening", appErr.Action)
}

func TestAssignFundingPathwaySuccess(t *testing.T) {
	store := &mockIntakeStore{intake: completedIntake(models.PathwayWorkforceFunded)}
	svc := NewEligibilityService(store, zap.NewNop())

	intake, err := svc.AssignFundingPathway(context.Background(), "intake-1", models.PathwayStructuredTuition, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.PathwayStructuredTuition, store.assignedPathway)
	assert.Equal(t, "admin-1", store.assignedBy)
	require.NotNil(t, intake.FundingPathway)
	assert.Equal(t, models.PathwayStructuredTuition, *intake.FundingPathway)
}
