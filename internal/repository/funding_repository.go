package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

// FundingRepository persists the pathway-specific side records owned by
// enrollments: employer sponsorships and bridge payment plans.
type FundingRepository struct {
	db *sqlx.DB
}

// NewFundingRepository constructs the repository.
func NewFundingRepository(db *sqlx.DB) *FundingRepository {
	return &FundingRepository{db: db}
}

// CreateSponsorship inserts an employer sponsorship linked to an enrollment.
func (r *FundingRepository) CreateSponsorship(ctx context.Context, s *models.EmployerSponsorship) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = models.SponsorshipStatusPendingAgreement
	}
	const query = `INSERT INTO employer_sponsorships
        (id, enrollment_id, user_id, employer_name, monthly_reimbursement, term_months, status, employment_ended, employment_ended_at, employment_end_reason, reimbursement_stopped_at, created_at)
        VALUES (:id, :enrollment_id, :user_id, :employer_name, :monthly_reimbursement, :term_months, :status, :employment_ended, :employment_ended_at, :employment_end_reason, :reimbursement_stopped_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create employer sponsorship: %w", err)
	}
	return nil
}

// FindSponsorshipByID returns a sponsorship.
func (r *FundingRepository) FindSponsorshipByID(ctx context.Context, id string) (*models.EmployerSponsorship, error) {
	const query = `SELECT id, enrollment_id, user_id, employer_name, monthly_reimbursement, term_months, status, employment_ended, employment_ended_at, employment_end_reason, reimbursement_stopped_at, created_at
        FROM employer_sponsorships WHERE id = $1`
	var s models.EmployerSponsorship
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkSponsorshipSeparated records an employment separation and stops
// reimbursement tracking.
func (r *FundingRepository) MarkSponsorshipSeparated(ctx context.Context, id, reason string, at time.Time) error {
	const query = `UPDATE employer_sponsorships SET employment_ended = TRUE, employment_ended_at = $2,
        employment_end_reason = $3, reimbursement_stopped_at = $2, status = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at, reason, models.SponsorshipStatusSeparated); err != nil {
		return fmt.Errorf("mark sponsorship separated: %w", err)
	}
	return nil
}

// CreateBridgePlan inserts a bridge payment plan linked to an enrollment.
func (r *FundingRepository) CreateBridgePlan(ctx context.Context, p *models.BridgePaymentPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = models.BridgePlanStatusAwaitingDownPayment
	}
	const query = `INSERT INTO bridge_payment_plans
        (id, enrollment_id, user_id, down_payment_amount, monthly_payment_amount, max_term_months, total_amount, balance_remaining, plan_start_date, plan_end_date, auto_payment_enabled, credential_hold, down_payment_paid, academic_access_paused, academic_access_paused_reason, status, created_at)
        VALUES (:id, :enrollment_id, :user_id, :down_payment_amount, :monthly_payment_amount, :max_term_months, :total_amount, :balance_remaining, :plan_start_date, :plan_end_date, :auto_payment_enabled, :credential_hold, :down_payment_paid, :academic_access_paused, :academic_access_paused_reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create bridge payment plan: %w", err)
	}
	return nil
}

// FindBridgePlanByEnrollment returns the plan owned by an enrollment, or
// sql.ErrNoRows when the enrollment has none.
func (r *FundingRepository) FindBridgePlanByEnrollment(ctx context.Context, enrollmentID string) (*models.BridgePaymentPlan, error) {
	const query = `SELECT id, enrollment_id, user_id, down_payment_amount, monthly_payment_amount, max_term_months, total_amount, balance_remaining, plan_start_date, plan_end_date, auto_payment_enabled, credential_hold, down_payment_paid, academic_access_paused, academic_access_paused_reason, status, created_at
        FROM bridge_payment_plans WHERE enrollment_id = $1`
	var p models.BridgePaymentPlan
	if err := r.db.GetContext(ctx, &p, query, enrollmentID); err != nil {
		return nil, err
	}
	return &p, nil
}
