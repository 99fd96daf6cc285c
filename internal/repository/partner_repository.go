package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

// PartnerRepository handles persistence of training partners.
type PartnerRepository struct {
	db *sqlx.DB
}

// NewPartnerRepository constructs the repository.
func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// Create persists a new partner. Status always starts at draft; the
// activation engine owns every later transition.
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.ID == "" {
		partner.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = now
	}
	partner.UpdatedAt = now
	partner.Status = models.PartnerStatusDraft
	const query = `INSERT INTO partners (id, legal_name, programs, states, status, created_at, updated_at)
        VALUES (:id, :legal_name, :programs, :states, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, partner); err != nil {
		return fmt.Errorf("create partner: %w", err)
	}
	return nil
}

// FindByID returns a partner by its ID.
func (r *PartnerRepository) FindByID(ctx context.Context, id string) (*models.Partner, error) {
	const query = `SELECT id, legal_name, programs, states, status, created_at, updated_at FROM partners WHERE id = $1`
	var partner models.Partner
	if err := r.db.GetContext(ctx, &partner, query, id); err != nil {
		return nil, err
	}
	return &partner, nil
}

// UpdateStatus stores the freshly derived status.
func (r *PartnerRepository) UpdateStatus(ctx context.Context, id string, status models.PartnerStatus) error {
	const query = `UPDATE partners SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update partner status: %w", err)
	}
	return nil
}

// List returns partners ordered by legal name.
func (r *PartnerRepository) List(ctx context.Context, limit, offset int) ([]models.Partner, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, legal_name, programs, states, status, created_at, updated_at
        FROM partners ORDER BY legal_name LIMIT $1 OFFSET $2`
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return partners, nil
}
