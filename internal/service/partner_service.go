package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/catalog"
	"github.com/elevateforhumanity/workforce-api/internal/models"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
	"github.com/elevateforhumanity/workforce-api/pkg/export"
)

type partnerStore interface {
	Create(ctx context.Context, partner *models.Partner) error
	FindByID(ctx context.Context, id string) (*models.Partner, error)
	List(ctx context.Context, limit, offset int) ([]models.Partner, error)
}

type complianceLister interface {
	ListStatus(ctx context.Context, partnerID string) ([]models.DocumentStatusView, bool, error)
}

// RegisterPartnerRequest is the payload for onboarding a new partner.
type RegisterPartnerRequest struct {
	LegalName string   `json:"legal_name" binding:"required,min=2"`
	Programs  []string `json:"programs" binding:"required,min=1"`
	States    []string `json:"states"`
}

// ComplianceReport is a rendered document checklist for a partner.
type ComplianceReport struct {
	FileName    string
	ContentType string
	Content     []byte
}

// PartnerService owns partner onboarding and compliance reporting. Status is
// never set here beyond the initial draft; the activation engine drives it.
type PartnerService struct {
	partners   partnerStore
	compliance complianceLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewPartnerService constructs the service.
func NewPartnerService(partners partnerStore, compliance complianceLister, logger *zap.Logger) *PartnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerService{
		partners:   partners,
		compliance: compliance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// Register creates a partner in draft with its declared programs and states.
// Unknown program codes are rejected so the requirement catalog can always
// resolve the partner's checklist.
func (s *PartnerService) Register(ctx context.Context, req RegisterPartnerRequest) (*models.Partner, error) {
	var details []string
	known := make(map[string]bool)
	for _, p := range catalog.Programs() {
		known[p] = true
	}
	programs := make([]string, 0, len(req.Programs))
	for _, p := range req.Programs {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code == "" {
			continue
		}
		if !known[code] {
			details = append(details, fmt.Sprintf("unknown program %q", p))
			continue
		}
		programs = append(programs, code)
	}
	if len(programs) == 0 {
		details = append(details, "at least one known program is required")
	}
	if len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "partner registration rejected"), details)
	}

	states := make([]string, 0, len(req.States))
	for _, st := range req.States {
		code := strings.ToUpper(strings.TrimSpace(st))
		if code != "" {
			states = append(states, code)
		}
	}
	if len(states) == 0 {
		states = []string{catalog.DefaultState}
	}

	partner := &models.Partner{
		LegalName: strings.TrimSpace(req.LegalName),
		Programs:  pq.StringArray(programs),
		States:    pq.StringArray(states),
	}
	if err := s.partners.Create(ctx, partner); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register partner")
	}
	s.logger.Info("partner registered",
		zap.String("partner_id", partner.ID),
		zap.String("legal_name", partner.LegalName),
		zap.Strings("programs", programs),
	)
	return partner, nil
}

// Get returns a partner by ID.
func (s *PartnerService) Get(ctx context.Context, id string) (*models.Partner, error) {
	partner, err := s.partners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "partner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load partner")
	}
	return partner, nil
}

// List returns a page of partners.
func (s *PartnerService) List(ctx context.Context, limit, offset int) ([]models.Partner, error) {
	partners, err := s.partners.List(ctx, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list partners")
	}
	return partners, nil
}

// BuildComplianceReport renders the partner's document checklist as CSV or
// PDF for program oversight reviews.
func (s *PartnerService) BuildComplianceReport(ctx context.Context, partnerID, format string) (*ComplianceReport, error) {
	partner, err := s.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	views, allComplete, err := s.compliance.ListStatus(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Document", "Uploaded", "Status"},
		Rows:    make([]map[string]string, 0, len(views)+1),
	}
	for _, view := range views {
		status := string(view.Status)
		if !view.Uploaded {
			status = "missing"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Document": string(view.RequiredType),
			"Uploaded": fmt.Sprintf("%t", view.Uploaded),
			"Status":   status,
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Document": "overall",
		"Uploaded": "",
		"Status":   complianceSummary(partner.Status, allComplete),
	})

	stamp := time.Now().UTC().Format("20060102")
	switch strings.ToLower(format) {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ComplianceReport{
			FileName:    fmt.Sprintf("compliance_%s_%s.csv", partner.ID, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		title := fmt.Sprintf("Compliance Report - %s", partner.LegalName)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ComplianceReport{
			FileName:    fmt.Sprintf("compliance_%s_%s.pdf", partner.ID, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "unsupported report format"),
			[]string{fmt.Sprintf("format %q not supported, use csv or pdf", format)})
	}
}

func complianceSummary(status models.PartnerStatus, allComplete bool) string {
	if allComplete {
		return "complete"
	}
	return fmt.Sprintf("incomplete (%s)", status)
}
