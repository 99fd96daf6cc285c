package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/catalog"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/pkg/config"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/storage"
)

type documentStore interface {
	Replace(ctx context.Context, doc *models.PartnerDocument) error
	ListByPartner(ctx context.Context, partnerID string) ([]models.PartnerDocument, error)
	FindByID(ctx context.Context, id string) (*models.PartnerDocument, error)
	UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, reviewedBy string, reviewedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type documentPartnerReader interface {
	FindByID(ctx context.Context, id string) (*models.Partner, error)
}

type documentFileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type activationRecomputer interface {
	Recompute(ctx context.Context, partnerID string) (models.PartnerStatus, error)
}

// ReviewPolicy decides the initial review outcome for an uploaded document.
// The default auto-accepts so the activation pipeline can run end to end;
// a manual policy holds documents in pending for a human reviewer.
type ReviewPolicy interface {
	Review(doc *models.PartnerDocument)
}

// AutoAcceptPolicy marks every upload accepted with a system reviewer.
type AutoAcceptPolicy struct{}

// Review implements ReviewPolicy.
func (AutoAcceptPolicy) Review(doc *models.PartnerDocument) {
	now := time.Now().UTC()
	reviewer := "system"
	doc.Status = models.DocumentStatusAccepted
	doc.ReviewedBy = &reviewer
	doc.ReviewedAt = &now
}

// ManualReviewPolicy leaves uploads pending for later review.
type ManualReviewPolicy struct{}

// Review implements ReviewPolicy.
func (ManualReviewPolicy) Review(doc *models.PartnerDocument) {
	doc.Status = models.DocumentStatusPending
	doc.ReviewedBy = nil
	doc.ReviewedAt = nil
}

// DocumentUpload carries the file content and metadata of one upload.
type DocumentUpload struct {
	DocumentType string
	ProgramID    string
	State        string
	FileName     string
	MimeType     string
	SizeBytes    int64
	ExpiresAt    *time.Time
	Content      io.Reader
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	Document        *models.PartnerDocument
	AllDocsComplete bool
	PartnerStatus   models.PartnerStatus
}

// DocumentService owns the partner compliance document ledger: upload
// validation, replace-on-upload semantics, review policy, activation
// recomputation and signed downloads.
type DocumentService struct {
	documents  documentStore
	partners   documentPartnerReader
	files      documentFileStore
	activation activationRecomputer
	policy     ReviewPolicy
	signer     *storage.SignedURLSigner
	cfg        config.DocumentsConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewDocumentService constructs the ledger service. The review policy is
// chosen from configuration: auto-accept by default.
func NewDocumentService(
	documents documentStore,
	partners documentPartnerReader,
	files documentFileStore,
	activation activationRecomputer,
	signer *storage.SignedURLSigner,
	cfg config.DocumentsConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	var policy ReviewPolicy = ManualReviewPolicy{}
	if cfg.AutoReview {
		policy = AutoAcceptPolicy{}
	}
	return &DocumentService{
		documents:  documents,
		partners:   partners,
		files:      files,
		activation: activation,
		policy:     policy,
		signer:     signer,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetReviewPolicy overrides the configured policy.
func (s *DocumentService) SetReviewPolicy(policy ReviewPolicy) {
	if policy != nil {
		s.policy = policy
	}
}

func (s *DocumentService) validateUpload(upload *DocumentUpload) []string {
	var details []string
	if !models.IsKnownDocumentType(models.DocumentType(upload.DocumentType)) {
		details = append(details, fmt.Sprintf("unknown document type %q", upload.DocumentType))
	}
	if upload.SizeBytes <= 0 {
		details = append(details, "file is empty")
	}
	if max := s.cfg.MaxFileSizeBytes; max > 0 && upload.SizeBytes > max {
		details = append(details, fmt.Sprintf("file exceeds maximum size of %d bytes", max))
	}
	if !s.mimeAllowed(upload.MimeType) {
		details = append(details, fmt.Sprintf("unsupported file type %q", upload.MimeType))
	}
	return details
}

func (s *DocumentService) mimeAllowed(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(strings.TrimSpace(allowed), mime) {
			return true
		}
	}
	return false
}

// Upload validates the file, stores it, replaces any prior document of the
// same type for the partner, applies the review policy and recomputes the
// partner's activation status. Validation runs fully before any write so the
// caller sees every problem at once.
func (s *DocumentService) Upload(ctx context.Context, partnerID string, upload DocumentUpload) (*UploadResult, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}

	if details := s.validateUpload(&upload); len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "document upload rejected"), details)
	}

	programID := upload.ProgramID
	if programID == "" {
		if len(partner.Programs) > 0 {
			programID = partner.Programs[0]
		} else {
			programID = catalog.FallbackProgram
		}
	}
	state := upload.State
	if state == "" {
		if len(partner.States) > 0 {
			state = partner.States[0]
		} else {
			state = catalog.DefaultState
		}
	}

	doc := &models.PartnerDocument{
		PartnerID:    partnerID,
		ProgramID:    programID,
		State:        state,
		DocumentType: models.DocumentType(upload.DocumentType),
		FileName:     upload.FileName,
		MimeType:     upload.MimeType,
		SizeBytes:    upload.SizeBytes,
		UploadedAt:   time.Now().UTC(),
		ExpiresAt:    upload.ExpiresAt,
	}
	s.policy.Review(doc)

	relPath := filepath.Join(partnerID, fmt.Sprintf("%s_%d%s", upload.DocumentType, doc.UploadedAt.UnixNano(), filepath.Ext(upload.FileName)))
	storedPath, err := s.files.SaveStream(relPath, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document file")
	}
	doc.FilePath = storedPath

	if err := s.documents.Replace(ctx, doc); err != nil {
		if delErr := s.files.Delete(storedPath); delErr != nil {
			s.logger.Warn("orphaned document file after failed insert",
				zap.String("path", storedPath), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}

	s.logger.Info("partner document uploaded",
		zap.String("partner_id", partnerID),
		zap.String("document_type", upload.DocumentType),
		zap.String("status", string(doc.Status)),
	)
	if s.metrics != nil {
		s.metrics.RecordDocumentUpload(upload.DocumentType)
	}

	status, err := s.activation.Recompute(ctx, partnerID)
	if err != nil {
		// The upload itself succeeded; surface the stale status rather
		// than failing the request.
		s.logger.Error("activation recompute failed after upload",
			zap.String("partner_id", partnerID), zap.Error(err))
		status = partner.Status
	}

	_, allComplete, err := s.ListStatus(ctx, partnerID)
	if err != nil {
		s.logger.Warn("document status listing failed after upload",
			zap.String("partner_id", partnerID), zap.Error(err))
		allComplete = false
	}

	return &UploadResult{Document: doc, AllDocsComplete: allComplete, PartnerStatus: status}, nil
}

// ListStatus joins the partner's requirement catalog entries against its
// uploaded documents, returning one row per required type plus an aggregate
// completeness flag. Requirements are the union across the partner's declared
// programs and states.
func (s *DocumentService) ListStatus(ctx context.Context, partnerID string) ([]models.DocumentStatusView, bool, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	documents, err := s.documents.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner documents")
	}

	programs := partner.Programs
	if len(programs) == 0 {
		programs = []string{catalog.FallbackProgram}
	}
	states := partner.States
	if len(states) == 0 {
		states = []string{catalog.DefaultState}
	}

	seen := make(map[models.DocumentType]bool)
	var required []models.DocumentType
	for _, programID := range programs {
		for _, state := range states {
			for _, docType := range catalog.RequiredDocuments(programID, state) {
				if !seen[docType] {
					seen[docType] = true
					required = append(required, docType)
				}
			}
		}
	}

	byType := make(map[models.DocumentType]*models.PartnerDocument, len(documents))
	for i := range documents {
		byType[documents[i].DocumentType] = &documents[i]
	}

	views := make([]models.DocumentStatusView, 0, len(required))
	allComplete := len(required) > 0
	for _, docType := range required {
		view := models.DocumentStatusView{RequiredType: docType}
		if doc, ok := byType[docType]; ok {
			view.Uploaded = true
			view.Status = doc.Status
		}
		if !view.Uploaded || view.Status != models.DocumentStatusAccepted {
			allComplete = false
		}
		views = append(views, view)
	}
	return views, allComplete, nil
}

// findOwned loads a document and verifies it belongs to the addressed
// partner. A document owned by a different partner reads as not found so
// callers cannot enumerate other partners' ledgers.
func (s *DocumentService) findOwned(ctx context.Context, partnerID, documentID string) (*models.PartnerDocument, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.PartnerID != partnerID {
		s.logger.Warn("document addressed under wrong partner",
			zap.String("document_id", documentID),
			zap.String("requested_partner_id", partnerID),
			zap.String("owner_partner_id", doc.PartnerID),
		)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return doc, nil
}

// Review records a staff decision on a document and recomputes the partner's
// activation status. Used when the manual review policy holds uploads in
// pending.
func (s *DocumentService) Review(ctx context.Context, partnerID, documentID string, accept bool, reviewedBy string) (*models.PartnerDocument, models.PartnerStatus, error) {
	doc, err := s.findOwned(ctx, partnerID, documentID)
	if err != nil {
		return nil, "", err
	}

	status := models.DocumentStatusRejected
	if accept {
		status = models.DocumentStatusAccepted
	}
	now := time.Now().UTC()
	if err := s.documents.UpdateStatus(ctx, doc.ID, status, reviewedBy, now); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}
	doc.Status = status
	doc.ReviewedBy = &reviewedBy
	doc.ReviewedAt = &now

	s.logger.Info("partner document reviewed",
		zap.String("document_id", doc.ID),
		zap.String("partner_id", doc.PartnerID),
		zap.String("status", string(status)),
	)

	partnerStatus, err := s.activation.Recompute(ctx, doc.PartnerID)
	if err != nil {
		s.logger.Error("activation recompute failed after review",
			zap.String("partner_id", doc.PartnerID), zap.Error(err))
	}
	return doc, partnerStatus, nil
}

// Remove deletes a document row and its stored file, then recomputes the
// partner's activation status.
func (s *DocumentService) Remove(ctx context.Context, partnerID, documentID string) error {
	doc, err := s.findOwned(ctx, partnerID, documentID)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if err := s.files.Delete(doc.FilePath); err != nil {
		s.logger.Warn("orphaned document file after delete",
			zap.String("path", doc.FilePath), zap.Error(err))
	}
	if _, err := s.activation.Recompute(ctx, doc.PartnerID); err != nil {
		s.logger.Error("activation recompute failed after delete",
			zap.String("partner_id", doc.PartnerID), zap.Error(err))
	}
	return nil
}

// DownloadToken issues a signed, expiring token for a document in the
// addressed partner's ledger.
func (s *DocumentService) DownloadToken(ctx context.Context, partnerID, documentID string) (string, time.Time, error) {
	doc, err := s.findOwned(ctx, partnerID, documentID)
	if err != nil {
		return "", time.Time{}, err
	}
	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	return token, expiresAt, nil
}

// ResolveDownload validates a signed token and opens the underlying file.
// The caller is responsible for closing the returned file.
func (s *DocumentService) ResolveDownload(ctx context.Context, token string) (*models.PartnerDocument, *os.File, error) {
	docID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	doc, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if doc.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not match document")
	}
	file, err := s.files.Open(doc.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document file")
	}
	return doc, file, nil
}
