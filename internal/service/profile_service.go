package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

type profileRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Profile, error)
	AdjustAura(ctx context.Context, userID string, delta int64) error
}

// ProfileService reads profiles and their aura balance.
type ProfileService struct {
	repo    profileRepository
	metrics *MetricsService
}

// NewProfileService constructs the profile service.
func NewProfileService(repo profileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// WithMetrics attaches the adjustment counter. Optional; a nil recorder is a
// no-op.
func (s *ProfileService) WithMetrics(m *MetricsService) *ProfileService {
	s.metrics = m
	return s
}

// Get returns the profile for a user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("profile not found for user %s", userID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// AdjustAura applies a signed manual correction to the user's balance.
func (s *ProfileService) AdjustAura(ctx context.Context, userID string, delta int64) (*models.Profile, error) {
	if err := s.repo.AdjustAura(ctx, userID, delta); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("profile not found for user %s", userID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to adjust aura")
	}
	s.metrics.RecordAuraAdjustment()
	return s.Get(ctx, userID)
}
