package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/pkg/config"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type mockEnrollmentStore struct {
	existing     *models.Enrollment
	raceWinner   *models.Enrollment
	created      *models.Enrollment
	insertWins   bool
	createErr    error
	updateErr    error
	deleteErr    error
	deletedID    string
	findCalls    int
	statusUpdate models.EnrollmentStatus
}

func (m *mockEnrollmentStore) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if m.created != nil && m.created.ID == id {
		return m.created, nil
	}
	if m.existing != nil && m.existing.ID == id {
		return m.existing, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentStore) FindByUserAndProgram(ctx context.Context, userID, programID string) (*models.Enrollment, error) {
	m.findCalls++
	if m.existing != nil {
		return m.existing, nil
	}
	if m.raceWinner != nil && m.findCalls > 1 {
		return m.raceWinner, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if m.createErr != nil {
		return false, m.createErr
	}
	if !m.insertWins {
		return false, nil
	}
	enrollment.ID = "e1"
	m.created = enrollment
	return true, nil
}

func (m *mockEnrollmentStore) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, payment models.PaymentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdate = status
	if m.created != nil && m.created.ID == id {
		m.created.Status = status
		m.created.PaymentStatus = payment
	}
	if m.existing != nil && m.existing.ID == id {
		m.existing.Status = status
		m.existing.PaymentStatus = payment
	}
	return nil
}

func (m *mockEnrollmentStore) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	m.created = nil
	return nil
}

type mockFundingStore struct {
	sponsorship       *models.EmployerSponsorship
	plan              *models.BridgePaymentPlan
	createSponsorErr  error
	createPlanErr     error
	separatedID       string
	separationReason  string
	separatedAt       time.Time
	markSeparatedErr  error
	findSponsorshipID string
}

func (m *mockFundingStore) CreateSponsorship(ctx context.Context, s *models.EmployerSponsorship) error {
	if m.createSponsorErr != nil {
		return m.createSponsorErr
	}
	s.ID = "sp1"
	m.sponsorship = s
	return nil
}

func (m *mockFundingStore) FindSponsorshipByID(ctx context.Context, id string) (*models.EmployerSponsorship, error) {
	m.findSponsorshipID = id
	if m.sponsorship == nil {
		return nil, sql.ErrNoRows
	}
	return m.sponsorship, nil
}

func (m *mockFundingStore) MarkSponsorshipSeparated(ctx context.Context, id, reason string, at time.Time) error {
	if m.markSeparatedErr != nil {
		return m.markSeparatedErr
	}
	m.separatedID = id
	m.separationReason = reason
	m.separatedAt = at
	if m.sponsorship != nil {
		m.sponsorship.EmploymentEnded = true
		m.sponsorship.Status = models.SponsorshipStatusSeparated
	}
	return nil
}

func (m *mockFundingStore) CreateBridgePlan(ctx context.Context, p *models.BridgePaymentPlan) error {
	if m.createPlanErr != nil {
		return m.createPlanErr
	}
	p.ID = "bp1"
	m.plan = p
	return nil
}

func (m *mockFundingStore) FindBridgePlanByEnrollment(ctx context.Context, enrollmentID string) (*models.BridgePaymentPlan, error) {
	if m.plan == nil {
		return nil, sql.ErrNoRows
	}
	return m.plan, nil
}

type mockEligibility struct {
	result *EligibilityResult
	err    error
}

func (m *mockEligibility) ValidateEnrollmentEligibility(ctx context.Context, userID, programID string) (*EligibilityResult, error) {
	return m.result, m.err
}

func testEnrollmentConfig() config.EnrollmentConfig {
	return config.EnrollmentConfig{
		BridgeDownPayment:      250,
		BridgeMonthlyPayment:   150,
		BridgeMinDownPayment:   50,
		BridgeMinMonthly:       25,
		BridgeMaxTermMonths:    3,
		BridgeMaxTermDays:      90,
		SponsorshipMonthly:     400,
		SponsorshipTermMonths:  12,
		SponsorshipMinMonthly:  100,
		SponsorshipMaxMonthly:  2000,
		SponsorshipMinTermMos:  3,
		SponsorshipMaxTermMos:  24,
		ProgramTuitionFallback: 4980,
	}
}

func eligibleFor(pathway models.FundingPathway) *mockEligibility {
	return &mockEligibility{result: &EligibilityResult{
		CanEnroll:      true,
		FundingPathway: &pathway,
		IntakeRecordID: "intake-1",
	}}
}

func newEnrollmentService(enrollments *mockEnrollmentStore, funding *mockFundingStore, intakes *mockIntakeStore, elig eligibilityChecker) *EnrollmentService {
	return NewEnrollmentService(enrollments, funding, intakes, elig, nil, testEnrollmentConfig(), nil, zap.NewNop())
}

func TestCreateEnrollmentBlockedByEligibility(t *testing.T) {
	elig := &mockEligibility{result: &EligibilityResult{
		CanEnroll: false,
		Errors:    []string{"intake not completed for this program"},
	}}
	svc := newEnrollmentService(&mockEnrollmentStore{insertWins: true}, &mockFundingStore{}, &mockIntakeStore{}, elig)

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEligibility.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "intake not completed for this program")
	assert.Equal(t, "complete_intake", appErr.Action)
}

func TestCreateEnrollmentDuplicate(t *testing.T) {
	enrollments := &mockEnrollmentStore{
		existing: &models.Enrollment{ID: "e0", UserID: "u1", ProgramID: "BARBER", Status: models.EnrollmentStatusActive},
	}
	svc := newEnrollmentService(enrollments, &mockFundingStore{}, &mockIntakeStore{}, eligibleFor(models.PathwayWorkforceFunded))

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "e0", appErr.Meta["enrollment_id"])
}

func TestCreateEnrollmentWorkforceFunded(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayWorkforceFunded))

	res, err := svc.Create(context.Background(), "u1", "BARBER")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, res.Status)
	require.NotNil(t, res.PaymentSetup)
	assert.False(t, res.PaymentSetup.Required)
	assert.Nil(t, funding.sponsorship)
	assert.Nil(t, funding.plan)
	assert.Equal(t, models.PaymentStatusPaid, enrollments.created.PaymentStatus)
}

func TestCreateEnrollmentEmployerSponsored(t *testing.T) {
	employer := "Hoosier Logistics"
	intakes := &mockIntakeStore{intake: &models.IntakeRecord{ID: "intake-1", EmployerName: &employer}}
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	svc := newEnrollmentService(enrollments, funding, intakes, eligibleFor(models.PathwayEmployerSponsored))

	res, err := svc.Create(context.Background(), "u1", "CDL")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, res.Status)
	require.NotNil(t, funding.sponsorship)
	assert.Equal(t, "Hoosier Logistics", funding.sponsorship.EmployerName)
	assert.Equal(t, 400.0, funding.sponsorship.MonthlyReimbursement)
	assert.Equal(t, 12, funding.sponsorship.TermMonths)
	assert.Equal(t, models.SponsorshipStatusPendingAgreement, funding.sponsorship.Status)
}

func TestCreateEnrollmentStructuredTuition(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition))

	res, err := svc.Create(context.Background(), "u1", "BARBER")
	require.NoError(t, err)
	require.NotNil(t, funding.plan)
	assert.Equal(t, 250.0, funding.plan.DownPaymentAmount)
	assert.Equal(t, 150.0, funding.plan.MonthlyPaymentAmount)
	assert.Equal(t, 3, funding.plan.MaxTermMonths)
	assert.Equal(t, 4980.0, funding.plan.BalanceRemaining)
	assert.True(t, funding.plan.CredentialHold)
	assert.Equal(t, models.BridgePlanStatusAwaitingDownPayment, funding.plan.Status)
	assert.WithinDuration(t, funding.plan.PlanStartDate.AddDate(0, 0, 90), funding.plan.PlanEndDate, time.Second)
	require.NotNil(t, res.PaymentSetup)
	assert.True(t, res.PaymentSetup.Required)
	assert.Equal(t, 250.0, res.PaymentSetup.DownPaymentAmount)
}

func TestCreateEnrollmentRollsBackOnPlanFailure(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{createPlanErr: errors.New("payments provider down")}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition))

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDependencyFailure.Code, appErr.Code)
	assert.Equal(t, "e1", enrollments.deletedID)
	assert.Nil(t, enrollments.created)
}

func TestCreateEnrollmentRollsBackOnSponsorshipFailure(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{createSponsorErr: errors.New("insert failed")}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayEmployerSponsored))

	_, err := svc.Create(context.Background(), "u1", "CDL")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDependencyFailure.Code, appErr.Code)
	assert.Equal(t, "e1", enrollments.deletedID)
}

func TestCreateEnrollmentRejectsBridgePlanBelowMinimums(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	cfg := testEnrollmentConfig()
	cfg.BridgeDownPayment = 0
	svc := NewEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition), nil, cfg, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDependencyFailure.Code, appErr.Code)
	assert.Nil(t, funding.plan)
	assert.Equal(t, "e1", enrollments.deletedID)
}

func TestCreateEnrollmentRejectsBridgeMonthlyBelowMinimum(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	cfg := testEnrollmentConfig()
	cfg.BridgeMonthlyPayment = 10
	svc := NewEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition), nil, cfg, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	assert.Nil(t, funding.plan)
	assert.Equal(t, "e1", enrollments.deletedID)
}

func TestCreateEnrollmentRejectsOutOfBoundsSponsorship(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	cfg := testEnrollmentConfig()
	cfg.SponsorshipMonthly = 5000
	cfg.SponsorshipTermMonths = 48
	svc := NewEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayEmployerSponsored), nil, cfg, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "u1", "CDL")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDependencyFailure.Code, appErr.Code)
	assert.Nil(t, funding.sponsorship)
	assert.Equal(t, "e1", enrollments.deletedID)
}

func TestCreateEnrollmentRejectsSponsorshipTermTooShort(t *testing.T) {
	enrollments := &mockEnrollmentStore{insertWins: true}
	funding := &mockFundingStore{}
	cfg := testEnrollmentConfig()
	cfg.SponsorshipTermMonths = 1
	svc := NewEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayEmployerSponsored), nil, cfg, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "u1", "CDL")
	require.Error(t, err)
	assert.Nil(t, funding.sponsorship)
	assert.Equal(t, "e1", enrollments.deletedID)
}

func TestCreateEnrollmentLosesInsertRace(t *testing.T) {
	// The duplicate pre-check passes, then the conditional insert reports
	// zero rows because a concurrent request claimed the pair.
	enrollments := &mockEnrollmentStore{
		insertWins: false,
		raceWinner: &models.Enrollment{ID: "e9", UserID: "u1", ProgramID: "BARBER", Status: models.EnrollmentStatusPending},
	}
	svc := newEnrollmentService(enrollments, &mockFundingStore{}, &mockIntakeStore{}, eligibleFor(models.PathwayWorkforceFunded))

	_, err := svc.Create(context.Background(), "u1", "BARBER")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "e9", appErr.Meta["enrollment_id"])
}

func TestCanIssueCredentialHoldsOnBalance(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", UserID: "u1", ProgramID: "BARBER",
		FundingPathway: models.PathwayStructuredTuition,
	}}
	funding := &mockFundingStore{plan: &models.BridgePaymentPlan{
		EnrollmentID: "e1", CredentialHold: true, BalanceRemaining: 1200,
	}}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition))

	decision, err := svc.CanIssueCredential(context.Background(), "e1")
	require.NoError(t, err)
	assert.False(t, decision.CanIssue)
	assert.Contains(t, decision.Reason, "1200")
}

func TestCanIssueCredentialClearsWhenSettled(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", FundingPathway: models.PathwayStructuredTuition,
	}}
	funding := &mockFundingStore{plan: &models.BridgePaymentPlan{
		EnrollmentID: "e1", CredentialHold: true, BalanceRemaining: 0,
	}}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition))

	decision, err := svc.CanIssueCredential(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, decision.CanIssue)
}

func TestCanIssueCredentialWorkforceFunded(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", FundingPathway: models.PathwayWorkforceFunded,
	}}
	svc := newEnrollmentService(enrollments, &mockFundingStore{}, &mockIntakeStore{}, eligibleFor(models.PathwayWorkforceFunded))

	decision, err := svc.CanIssueCredential(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, decision.CanIssue)
}

func TestCheckAcademicAccessBlocksUnpaidDownPayment(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", UserID: "u1", FundingPathway: models.PathwayStructuredTuition,
		Status: models.EnrollmentStatusPending,
	}}
	funding := &mockFundingStore{plan: &models.BridgePaymentPlan{
		EnrollmentID: "e1", DownPaymentPaid: false,
	}}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayStructuredTuition))

	decision, err := svc.CheckAcademicAccess(context.Background(), "u1", "e1")
	require.NoError(t, err)
	assert.False(t, decision.HasAccess)
	assert.Equal(t, "down payment not yet received", decision.Reason)
}

func TestCheckAcademicAccessOwnerOnly(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", UserID: "u1", FundingPathway: models.PathwayWorkforceFunded,
	}}
	svc := newEnrollmentService(enrollments, &mockFundingStore{}, &mockIntakeStore{}, eligibleFor(models.PathwayWorkforceFunded))

	_, err := svc.CheckAcademicAccess(context.Background(), "u2", "e1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestHandleEmployerSeparationPausesEnrollment(t *testing.T) {
	enrollments := &mockEnrollmentStore{existing: &models.Enrollment{
		ID: "e1", UserID: "u1", FundingPathway: models.PathwayEmployerSponsored,
		Status: models.EnrollmentStatusActive,
	}}
	funding := &mockFundingStore{sponsorship: &models.EmployerSponsorship{
		ID: "sp1", EnrollmentID: "e1", UserID: "u1",
		Status: models.SponsorshipStatusActive,
	}}
	svc := newEnrollmentService(enrollments, funding, &mockIntakeStore{}, eligibleFor(models.PathwayEmployerSponsored))

	sponsorship, err := svc.HandleEmployerSeparation(context.Background(), "sp1", "laid off")
	require.NoError(t, err)
	assert.True(t, sponsorship.EmploymentEnded)
	assert.Equal(t, "sp1", funding.separatedID)
	assert.Equal(t, "laid off", funding.separationReason)
	assert.Equal(t, models.EnrollmentStatusPaused, enrollments.statusUpdate)
}

func TestHandleEmployerSeparationIdempotent(t *testing.T) {
	funding := &mockFundingStore{sponsorship: &models.EmployerSponsorship{
		ID: "sp1", EnrollmentID: "e1", EmploymentEnded: true,
	}}
	svc := newEnrollmentService(&mockEnrollmentStore{}, funding, &mockIntakeStore{}, eligibleFor(models.PathwayEmployerSponsored))

	_, err := svc.HandleEmployerSeparation(context.Background(), "sp1", "quit")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
