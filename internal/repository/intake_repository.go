package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

const intakeColumns = `id, user_id, program_id, status,
        identity_verified, workforce_screening_completed, employer_screening_completed,
        financial_readiness_completed, can_pay_down_payment, can_commit_monthly,
        accepts_auto_payment, understands_90_day_limit, program_readiness_completed,
        acknowledgment_signed, funding_pathway, funding_pathway_assigned_at,
        funding_pathway_assigned_by, employer_name, created_at, updated_at`

// IntakeRepository reads intake records written by the intake workflow.
type IntakeRepository struct {
	db *sqlx.DB
}

// NewIntakeRepository constructs the repository.
func NewIntakeRepository(db *sqlx.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

// FindByID returns an intake record.
func (r *IntakeRepository) FindByID(ctx context.Context, id string) (*models.IntakeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM intake_records WHERE id = $1`, intakeColumns)
	var intake models.IntakeRecord
	if err := r.db.GetContext(ctx, &intake, query, id); err != nil {
		return nil, err
	}
	return &intake, nil
}

// FindCompletedByUserAndProgram returns the completed intake for the pair,
// or sql.ErrNoRows when none exists.
func (r *IntakeRepository) FindCompletedByUserAndProgram(ctx context.Context, userID, programID string) (*models.IntakeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM intake_records WHERE user_id = $1 AND program_id = $2 AND status = $3`, intakeColumns)
	var intake models.IntakeRecord
	if err := r.db.GetContext(ctx, &intake, query, userID, programID, models.IntakeStatusCompleted); err != nil {
		return nil, err
	}
	return &intake, nil
}

// AssignPathway records the assigned funding pathway on an intake.
func (r *IntakeRepository) AssignPathway(ctx context.Context, id string, pathway models.FundingPathway, assignedBy string) error {
	const query = `UPDATE intake_records SET funding_pathway = $2, funding_pathway_assigned_at = $3, funding_pathway_assigned_by = $4, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, pathway, time.Now().UTC(), assignedBy); err != nil {
		return fmt.Errorf("assign funding pathway: %w", err)
	}
	return nil
}
