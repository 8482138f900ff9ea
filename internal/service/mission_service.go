package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

const (
	cacheKeyMissionList   = "missions:list"
	cacheKeyMissionLogros = "missions:logros"
	cacheKeyMissionByID   = "missions:id:%s"
)

type missionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Mission, error)
	List(ctx context.Context) ([]models.Mission, error)
	ListLogros(ctx context.Context) ([]models.Mission, error)
	Seed(ctx context.Context, missions []models.Mission) error
}

type missionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// MissionService serves the static main-story catalog. Reads go through the
// cache; the catalog only changes when re-seeded, which busts every key.
type MissionService struct {
	repo    missionRepository
	cache   missionCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

// WithMetrics attaches the cache hit/miss counters. Optional; a nil recorder
// is a no-op.
func (s *MissionService) WithMetrics(m *MetricsService) *MissionService {
	s.metrics = m
	return s
}

// NewMissionService constructs the catalog service.
func NewMissionService(repo missionRepository, cache missionCache, ttl time.Duration, logger *zap.Logger) *MissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MissionService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Initialize seeds the catalog from the JSON seed file. Safe to run on every
// startup; existing entries are refreshed in place.
func (s *MissionService) Initialize(ctx context.Context, seedFile string) error {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("mission seed file not found, skipping catalog seed", zap.String("file", seedFile))
			return nil
		}
		return fmt.Errorf("read mission seed file: %w", err)
	}

	var missions []models.Mission
	if err := json.Unmarshal(raw, &missions); err != nil {
		return fmt.Errorf("parse mission seed file: %w", err)
	}
	if len(missions) == 0 {
		s.logger.Warn("mission seed file is empty", zap.String("file", seedFile))
		return nil
	}

	if err := s.repo.Seed(ctx, missions); err != nil {
		return fmt.Errorf("seed mission catalog: %w", err)
	}
	if err := s.cache.DeleteByPattern(ctx, "missions:*"); err != nil {
		s.logger.Warn("failed to invalidate mission cache after seed", zap.Error(err))
	}

	s.logger.Info("mission catalog seeded", zap.Int("count", len(missions)))
	return nil
}

// List returns the full catalog ordered by progression.
func (s *MissionService) List(ctx context.Context) ([]models.Mission, error) {
	var cached []models.Mission
	if err := s.cache.Get(ctx, cacheKeyMissionList, &cached); err == nil {
		s.metrics.RecordCacheLookup(true)
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("mission cache read failed", zap.Error(err))
	}
	s.metrics.RecordCacheLookup(false)

	missions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missions")
	}

	if err := s.cache.Set(ctx, cacheKeyMissionList, missions, s.ttl); err != nil {
		s.logger.Warn("mission cache write failed", zap.Error(err))
	}
	return missions, nil
}

// FindByID returns one catalog mission.
func (s *MissionService) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	key := fmt.Sprintf(cacheKeyMissionByID, id)

	var cached models.Mission
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheLookup(true)
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("mission cache read failed", zap.Error(err))
	}
	s.metrics.RecordCacheLookup(false)

	mission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("mission %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mission")
	}

	if err := s.cache.Set(ctx, key, mission, s.ttl); err != nil {
		s.logger.Warn("mission cache write failed", zap.Error(err))
	}
	return mission, nil
}

// ListLogros returns the achievements attached to catalog missions.
func (s *MissionService) ListLogros(ctx context.Context) ([]models.MissionLogro, error) {
	var cached []models.MissionLogro
	if err := s.cache.Get(ctx, cacheKeyMissionLogros, &cached); err == nil {
		s.metrics.RecordCacheLookup(true)
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("mission cache read failed", zap.Error(err))
	}
	s.metrics.RecordCacheLookup(false)

	missions, err := s.repo.ListLogros(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list logros")
	}

	logros := make([]models.MissionLogro, 0, len(missions))
	for i := range missions {
		if missions[i].Logro != nil {
			logros = append(logros, *missions[i].Logro)
		}
	}

	if err := s.cache.Set(ctx, cacheKeyMissionLogros, logros, s.ttl); err != nil {
		s.logger.Warn("mission cache write failed", zap.Error(err))
	}
	return logros, nil
}
