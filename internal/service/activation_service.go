package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/catalog"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type activationPartnerStore interface {
	FindByID(ctx context.Context, id string) (*models.Partner, error)
	UpdateStatus(ctx context.Context, id string, status models.PartnerStatus) error
}

type activationDocumentLister interface {
	ListByPartner(ctx context.Context, partnerID string) ([]models.PartnerDocument, error)
}

// StatusChangeFunc is invoked after a persisted partner status transition.
type StatusChangeFunc func(partnerID string, from, to models.PartnerStatus)

// ActivationService derives a partner's lifecycle status from its document
// ledger. Status is never stored as an explicit transition; it is recomputed
// from the full document set on every change.
type ActivationService struct {
	partners  activationPartnerStore
	documents activationDocumentLister
	onChange  StatusChangeFunc
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewActivationService constructs the engine.
func NewActivationService(partners activationPartnerStore, documents activationDocumentLister, metrics *MetricsService, logger *zap.Logger) *ActivationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivationService{partners: partners, documents: documents, metrics: metrics, logger: logger}
}

// OnStatusChange registers a callback fired after each persisted transition.
func (s *ActivationService) OnStatusChange(fn StatusChangeFunc) {
	s.onChange = fn
}

// CalculatePartnerStatus derives the status from the document set:
// no documents at all means draft; a fully accepted set for any declared
// (program, state) pair means active; otherwise any pending document means
// submitted, and anything else means restricted.
func CalculatePartnerStatus(partner *models.Partner, documents []models.PartnerDocument) models.PartnerStatus {
	if len(documents) == 0 {
		return models.PartnerStatusDraft
	}
	for _, programID := range partner.Programs {
		for _, state := range partner.States {
			if AreAllDocumentsAccepted(documents, programID, state) {
				return models.PartnerStatusActive
			}
		}
	}
	for _, doc := range documents {
		if doc.Status == models.DocumentStatusPending {
			return models.PartnerStatusSubmitted
		}
	}
	return models.PartnerStatusRestricted
}

// AreAllDocumentsAccepted reports whether every required document type for
// the (program, state) pair appears among the documents scoped to that pair
// with status accepted.
func AreAllDocumentsAccepted(documents []models.PartnerDocument, programID, state string) bool {
	required := catalog.RequiredDocuments(programID, state)
	if len(required) == 0 {
		return false
	}
	accepted := make(map[models.DocumentType]bool)
	for _, doc := range documents {
		if doc.ProgramID == programID && doc.State == state && doc.Status == models.DocumentStatusAccepted {
			accepted[doc.DocumentType] = true
		}
	}
	for _, docType := range required {
		if !accepted[docType] {
			return false
		}
	}
	return true
}

// HasProgramAccess is narrower than overall activation: the partner must be
// globally active, declare the exact program and state, and have a complete
// accepted set for that pair. A partner active via one pair can still lack
// access to another.
func HasProgramAccess(partner *models.Partner, documents []models.PartnerDocument, programID, state string) bool {
	if partner.Status != models.PartnerStatusActive {
		return false
	}
	if !partner.HasProgram(programID) || !partner.HasState(state) {
		return false
	}
	return AreAllDocumentsAccepted(documents, programID, state)
}

// Recompute loads the partner and its ledger, derives the status and
// persists it when it changed. It returns the derived status.
func (s *ActivationService) Recompute(ctx context.Context, partnerID string) (models.PartnerStatus, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	documents, err := s.documents.ListByPartner(ctx, partnerID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner documents")
	}

	derived := CalculatePartnerStatus(partner, documents)
	if derived == partner.Status {
		return derived, nil
	}

	if err := s.partners.UpdateStatus(ctx, partnerID, derived); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist partner status")
	}
	s.logger.Info("partner status transition",
		zap.String("partner_id", partnerID),
		zap.String("from", string(partner.Status)),
		zap.String("to", string(derived)),
	)
	if s.metrics != nil {
		s.metrics.RecordPartnerStatusTransition(string(partner.Status), string(derived))
	}
	if s.onChange != nil {
		s.onChange(partnerID, partner.Status, derived)
	}
	return derived, nil
}

// CheckProgramAccess loads current state and evaluates HasProgramAccess.
func (s *ActivationService) CheckProgramAccess(ctx context.Context, partnerID, programID, state string) (bool, error) {
	partner, err := s.partners.FindByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	documents, err := s.documents.ListByPartner(ctx, partnerID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner documents")
	}
	return HasProgramAccess(partner, documents, programID, state), nil
}
