package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-hours-api/internal/models"
	"github.com/noah-isme/uni-hours-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

const statsCachePattern = "stats:*"

// StatsService computes the role-scoped dashboard counters, with optional
// caching in front of the aggregation query.
type StatsService struct {
	repo   declarationStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the service. A nil cache disables caching.
func NewStatsService(repo declarationStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ForActor returns the statistics for the actor's scope: teachers aggregate
// their own declarations, department heads their department, registrars and
// directors everything.
func (s *StatsService) ForActor(ctx context.Context, actor *models.JWTClaims) (*models.DeclarationStats, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	key := statsCacheKey(actor)
	if s.cache.Enabled() {
		var cached models.DeclarationStats
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	filter := models.DeclarationFilter{Limit: 500}
	switch actor.Role {
	case models.RoleTeacher:
		filter.AuthorID = actor.UserID
	case models.RoleDepartmentHead:
		filter.DepartmentID = actor.DepartmentID
	case models.RoleRegistrar, models.RoleDirector, models.RoleAdmin:
		// full population
	default:
		return nil, appErrors.ErrForbidden
	}

	declarations, err := s.collect(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declarations for stats")
	}

	stats := workflow.StatsForActor(declarations, actor.Actor())
	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.Warn("failed to cache stats", zap.Error(err))
		}
	}
	return &stats, nil
}

// InvalidateStats drops every cached stats entry. Called after any
// declaration write.
func (s *StatsService) InvalidateStats(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

// collect pages through the repository until the scope is exhausted.
func (s *StatsService) collect(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error) {
	var all []models.Declaration
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < filter.Limit {
			return all, nil
		}
		filter.Offset += filter.Limit
	}
}

func statsCacheKey(actor *models.JWTClaims) string {
	return fmt.Sprintf("stats:%s:%s", actor.Role, actor.UserID)
}
