package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

// SourceRepository reads the three independent enrollment storage shapes the
// delivery-mode resolver merges: internal course enrollments, partner-LMS
// enrollments and hybrid apprenticeship enrollments.
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository constructs the repository.
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// ListCourseEnrollments returns internal LMS enrollments for a user.
func (r *SourceRepository) ListCourseEnrollments(ctx context.Context, userID string) ([]models.CourseEnrollment, error) {
	const query = `SELECT ce.id, ce.user_id, ce.course_id, c.name AS course_name, ce.status, ce.created_at
        FROM course_enrollments ce
        LEFT JOIN courses c ON c.id = ce.course_id
        WHERE ce.user_id = $1`
	var rows []models.CourseEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return rows, nil
}

// ListPartnerLMSEnrollments returns partner-hosted enrollments for a user.
func (r *SourceRepository) ListPartnerLMSEnrollments(ctx context.Context, userID string) ([]models.PartnerLMSEnrollment, error) {
	const query = `SELECT id, user_id, program_id, program_name, partner_id, launch_url, status, delivery_mode, created_at
        FROM partner_lms_enrollments WHERE user_id = $1`
	var rows []models.PartnerLMSEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list partner lms enrollments: %w", err)
	}
	return rows, nil
}

// ListApprenticeshipEnrollments returns hybrid apprenticeship enrollments.
func (r *SourceRepository) ListApprenticeshipEnrollments(ctx context.Context, userID string) ([]models.ApprenticeshipEnrollment, error) {
	const query = `SELECT id, user_id, program_id, program_name, shop_id, status, created_at
        FROM apprenticeship_enrollments WHERE user_id = $1`
	var rows []models.ApprenticeshipEnrollment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list apprenticeship enrollments: %w", err)
	}
	return rows, nil
}
