package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

const enrollmentColumns = `id, user_id, program_id, funding_pathway, intake_record_id,
        intake_completed, status, payment_status, enrolled_at, updated_at`

// EnrollmentRepository handles persistence of program enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByUserAndProgram returns the enrollment for the pair, or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByUserAndProgram(ctx context.Context, userID, programID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE user_id = $1 AND program_id = $2`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, programID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create inserts the enrollment only when no row for (user, program) exists
// yet. It reports whether the insert happened; a false return with nil error
// means another enrollment already holds the slot. The conditional insert
// relies on the unique constraint on (user_id, program_id), so concurrent
// requests cannot both win.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	if enrollment.PaymentStatus == "" {
		enrollment.PaymentStatus = models.PaymentStatusUnpaid
	}
	const query = `INSERT INTO enrollments (id, user_id, program_id, funding_pathway, intake_record_id, intake_completed, status, payment_status, enrolled_at, updated_at)
        VALUES (:id, :user_id, :program_id, :funding_pathway, :intake_record_id, :intake_completed, :status, :payment_status, :enrolled_at, :updated_at)
        ON CONFLICT (user_id, program_id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return false, fmt.Errorf("create enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create enrollment rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateStatus updates the lifecycle and payment status of an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, payment models.PaymentStatus) error {
	const query = `UPDATE enrollments SET status = $2, payment_status = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, payment, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes an enrollment. Used only as the compensating action when
// pathway-specific payment setup fails.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}
