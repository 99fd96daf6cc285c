package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/elevateforhumanity/workforce-api/internal/models"
	"github.com/elevateforhumanity/workforce-api/pkg/config"
	appErrors "github.com/elevateforhumanity/workforce-api/pkg/errors"
)

type sourceReader interface {
	ListCourseEnrollments(ctx context.Context, userID string) ([]models.CourseEnrollment, error)
	ListPartnerLMSEnrollments(ctx context.Context, userID string) ([]models.PartnerLMSEnrollment, error)
	ListApprenticeshipEnrollments(ctx context.Context, userID string) ([]models.ApprenticeshipEnrollment, error)
}

// activeStatuses are the lifecycle states the active view keeps.
var activeStatuses = map[string]bool{
	"active":      true,
	"in_progress": true,
	"enrolled":    true,
	"pending":     true,
}

// ResolverService merges the three enrollment storage shapes into one
// normalized, newest-first view. A single failing source degrades the view
// instead of failing it; only all three failing is an error.
type ResolverService struct {
	sources sourceReader
	cache   *CacheService
	cfg     config.ResolverConfig
	logger  *zap.Logger
}

// NewResolverService constructs the read model.
func NewResolverService(sources sourceReader, cache *CacheService, cfg config.ResolverConfig, logger *zap.Logger) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverService{sources: sources, cache: cache, cfg: cfg, logger: logger}
}

func cacheKeyUserEnrollments(userID string) string {
	return fmt.Sprintf("enrollments:user:%s", userID)
}

// GetUserEnrollments returns every enrollment the user holds across all
// sources, sorted by creation time descending.
func (s *ResolverService) GetUserEnrollments(ctx context.Context, userID string) ([]models.NormalizedEnrollment, error) {
	key := cacheKeyUserEnrollments(userID)
	if s.cache != nil && s.cfg.CacheEnabled {
		var cached []models.NormalizedEnrollment
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	merged, failures := s.collect(ctx, userID)
	if failures == 3 {
		return nil, appErrors.Clone(appErrors.ErrDependencyFailure, "all enrollment sources unavailable")
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if s.cache != nil && s.cfg.CacheEnabled && failures == 0 {
		// Partial views are never cached; a degraded read should heal on
		// the next request, not linger for the TTL.
		_ = s.cache.Set(ctx, key, merged, s.cfg.CacheTTL)
	}
	return merged, nil
}

// GetActiveEnrollments narrows the merged view to in-flight enrollments.
func (s *ResolverService) GetActiveEnrollments(ctx context.Context, userID string) ([]models.NormalizedEnrollment, error) {
	all, err := s.GetUserEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := make([]models.NormalizedEnrollment, 0, len(all))
	for _, e := range all {
		if activeStatuses[strings.ToLower(e.Status)] {
			active = append(active, e)
		}
	}
	return active, nil
}

func (s *ResolverService) collect(ctx context.Context, userID string) ([]models.NormalizedEnrollment, int) {
	var merged []models.NormalizedEnrollment
	failures := 0

	courses, err := s.sources.ListCourseEnrollments(ctx, userID)
	if err != nil {
		failures++
		s.logger.Warn("course enrollment source failed", zap.String("user_id", userID), zap.Error(err))
	} else {
		for _, row := range courses {
			merged = append(merged, s.normalizeCourse(row))
		}
	}

	partnerRows, err := s.sources.ListPartnerLMSEnrollments(ctx, userID)
	if err != nil {
		failures++
		s.logger.Warn("partner lms enrollment source failed", zap.String("user_id", userID), zap.Error(err))
	} else {
		for _, row := range partnerRows {
			merged = append(merged, s.normalizePartner(row))
		}
	}

	apprenticeships, err := s.sources.ListApprenticeshipEnrollments(ctx, userID)
	if err != nil {
		failures++
		s.logger.Warn("apprenticeship enrollment source failed", zap.String("user_id", userID), zap.Error(err))
	} else {
		for _, row := range apprenticeships {
			merged = append(merged, s.normalizeApprenticeship(row))
		}
	}

	return merged, failures
}

func (s *ResolverService) normalizeCourse(row models.CourseEnrollment) models.NormalizedEnrollment {
	return models.NormalizedEnrollment{
		ID:           row.ID,
		UserID:       row.UserID,
		ProgramID:    row.CourseID,
		ProgramName:  row.CourseName,
		Status:       row.Status,
		DeliveryMode: models.DeliveryModeInternal,
		ModeInferred: true,
		Source:       models.SourceCourseEnrollments,
		ContinueURL:  fmt.Sprintf("%s/courses/%s", s.portalBase(), row.CourseID),
		CreatedAt:    row.CreatedAt,
	}
}

func (s *ResolverService) normalizePartner(row models.PartnerLMSEnrollment) models.NormalizedEnrollment {
	mode := models.DeliveryModePartner
	inferred := true
	if row.DeliveryMode != nil && *row.DeliveryMode != "" {
		switch models.DeliveryMode(strings.ToLower(*row.DeliveryMode)) {
		case models.DeliveryModeInternal, models.DeliveryModePartner, models.DeliveryModeHybrid:
			mode = models.DeliveryMode(strings.ToLower(*row.DeliveryMode))
			inferred = false
		}
	}
	continueURL := row.LaunchURL
	if continueURL == "" {
		continueURL = fmt.Sprintf("%s/programs/%s", s.portalBase(), row.ProgramID)
	}
	return models.NormalizedEnrollment{
		ID:           row.ID,
		UserID:       row.UserID,
		ProgramID:    row.ProgramID,
		ProgramName:  row.ProgramName,
		Status:       row.Status,
		DeliveryMode: mode,
		ModeInferred: inferred,
		Source:       models.SourcePartnerLMSEnrollments,
		ContinueURL:  continueURL,
		CreatedAt:    row.CreatedAt,
	}
}

func (s *ResolverService) normalizeApprenticeship(row models.ApprenticeshipEnrollment) models.NormalizedEnrollment {
	return models.NormalizedEnrollment{
		ID:           row.ID,
		UserID:       row.UserID,
		ProgramID:    row.ProgramID,
		ProgramName:  row.ProgramName,
		Status:       row.Status,
		DeliveryMode: models.DeliveryModeHybrid,
		ModeInferred: true,
		Source:       models.SourceApprenticeshipEnrollments,
		ContinueURL:  fmt.Sprintf("%s/apprenticeships/%s", s.portalBase(), row.ProgramID),
		CreatedAt:    row.CreatedAt,
	}
}

func (s *ResolverService) portalBase() string {
	return strings.TrimRight(s.cfg.PortalBaseURL, "/")
}
