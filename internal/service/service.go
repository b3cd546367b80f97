package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/soundofguitara/parma/config"
	"github.com/soundofguitara/parma/internal/repository"
	"github.com/soundofguitara/parma/pkg/jwt"
	"github.com/soundofguitara/parma/pkg/metrics"
	"github.com/soundofguitara/parma/pkg/redis"
	"github.com/soundofguitara/parma/pkg/storage"
)

// Service groups every use case behind one entry point.
type Service struct {
	Auth       AuthService
	User       UserService
	Batch      BatchService
	Assignment AssignmentService
	Operator   OperatorService
	Anomaly    AnomalyService
	Planning   PlanningService
	Dashboard  DashboardService
	Report     ReportService
}

// Deps optional infrastructure. Nil members disable the matching feature:
// no Redis means no cache and no token blacklist, no Archive means reports
// are not archived.
type Deps struct {
	Redis   *redis.Client
	Archive *storage.Archive
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewService builds every service.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Report.Location()
	defaultFormat := ExportFormat(cfg.Report.DefaultFormat)

	cache := &cacheLayer{ttl: cfg.Cache.TTL, metrics: deps.Metrics, logger: logger}
	var blacklist TokenBlacklist
	if deps.Redis != nil {
		blacklist = deps.Redis
		if cfg.Cache.Enabled {
			cache.cache = deps.Redis
		}
	}

	var archive ReportArchive
	if deps.Archive != nil {
		archive = deps.Archive
	}

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, deps.Metrics, logger),
		User:       NewUserService(repo, logger),
		Batch:      NewBatchService(repo, cache, now, logger),
		Assignment: NewAssignmentService(repo, cache, logger),
		Operator:   NewOperatorService(repo, cache, now, logger),
		Anomaly:    NewAnomalyService(repo, cache, deps.Metrics, defaultFormat, loc, now, logger),
		Planning:   NewPlanningService(repo, cache, now, logger),
		Dashboard:  NewDashboardService(repo, cache, loc, now, logger),
		Report:     NewReportService(repo, archive, deps.Metrics, defaultFormat, loc, now, logger),
	}
}
