package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/elevateforhumanity/workforce-api/internal/models"
)

// DocumentRepository handles persistence of partner compliance documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Replace inserts the document, superseding any existing row for the same
// (partner, document type). The upsert keeps the replace-on-upload behavior
// atomic instead of a delete-then-insert pair; the table carries a unique
// constraint on (partner_id, document_type).
func (r *DocumentRepository) Replace(ctx context.Context, doc *models.PartnerDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO partner_documents
        (id, partner_id, program_id, state, document_type, file_name, file_path, mime_type, size_bytes, status, reviewed_by, uploaded_at, reviewed_at, expires_at)
        VALUES (:id, :partner_id, :program_id, :state, :document_type, :file_name, :file_path, :mime_type, :size_bytes, :status, :reviewed_by, :uploaded_at, :reviewed_at, :expires_at)
        ON CONFLICT (partner_id, document_type) DO UPDATE SET
            id = EXCLUDED.id,
            program_id = EXCLUDED.program_id,
            state = EXCLUDED.state,
            file_name = EXCLUDED.file_name,
            file_path = EXCLUDED.file_path,
            mime_type = EXCLUDED.mime_type,
            size_bytes = EXCLUDED.size_bytes,
            status = EXCLUDED.status,
            reviewed_by = EXCLUDED.reviewed_by,
            uploaded_at = EXCLUDED.uploaded_at,
            reviewed_at = EXCLUDED.reviewed_at,
            expires_at = EXCLUDED.expires_at`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("replace partner document: %w", err)
	}
	return nil
}

// ListByPartner returns every document a partner has on file.
func (r *DocumentRepository) ListByPartner(ctx context.Context, partnerID string) ([]models.PartnerDocument, error) {
	const query = `SELECT id, partner_id, program_id, state, document_type, file_name, file_path, mime_type, size_bytes, status, reviewed_by, uploaded_at, reviewed_at, expires_at
        FROM partner_documents WHERE partner_id = $1 ORDER BY uploaded_at DESC`
	var docs []models.PartnerDocument
	if err := r.db.SelectContext(ctx, &docs, query, partnerID); err != nil {
		return nil, fmt.Errorf("list partner documents: %w", err)
	}
	return docs, nil
}

// FindByID returns a single document.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.PartnerDocument, error) {
	const query = `SELECT id, partner_id, program_id, state, document_type, file_name, file_path, mime_type, size_bytes, status, reviewed_by, uploaded_at, reviewed_at, expires_at
        FROM partner_documents WHERE id = $1`
	var doc models.PartnerDocument
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateStatus moves a document through review.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, reviewedBy string, reviewedAt time.Time) error {
	const query = `UPDATE partner_documents SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, reviewedBy, reviewedAt); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// Delete removes a document row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM partner_documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete partner document: %w", err)
	}
	return nil
}
