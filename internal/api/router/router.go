package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soundofguitara/parma/config"
	"github.com/soundofguitara/parma/internal/api/handler"
	"github.com/soundofguitara/parma/internal/api/middleware"
	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/pkg/jwt"
	"github.com/soundofguitara/parma/pkg/metrics"
	"github.com/soundofguitara/parma/pkg/redis"
)

// Pinger checks a backing dependency for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps infrastructure the router needs besides the handlers. Nil members
// disable the matching feature.
type Deps struct {
	JWT     *jwt.Manager
	Redis   *redis.Client
	Metrics *metrics.Metrics
	DB      Pinger
}

// Setup builds the Gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.GET("/health", health(deps))

	var blacklist middleware.TokenChecker
	var limiter middleware.RateLimiter
	if deps.Redis != nil {
		blacklist = deps.Redis
		limiter = deps.Redis
	}

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id/role", h.User.SetRole)
			}

			batches := authorized.Group("/batches")
			{
				batches.GET("", h.Batch.ListBatches)
				batches.GET("/:id", h.Batch.GetBatch)
				batches.POST("", h.Batch.CreateBatch)
				batches.PUT("/:id", h.Batch.UpdateBatch)
				batches.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Batch.DeleteBatch)
			}

			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.ListAssignments)
				assignments.POST("", h.Assignment.CreateAssignment)
				assignments.PUT("/:id", h.Assignment.UpdateAssignment)
				assignments.DELETE("/:id", h.Assignment.DeleteAssignment)
			}

			operators := authorized.Group("/operators")
			{
				operators.GET("", h.Operator.ListOperators)
				operators.GET("/:id", h.Operator.GetOperator)
				operators.POST("", h.Operator.CreateOperator)
				operators.PUT("/:id", h.Operator.UpdateOperator)
				operators.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Operator.DeleteOperator)
			}

			anomalies := authorized.Group("/anomalies")
			{
				anomalies.GET("", h.Anomaly.ListAnomalies)
				anomalies.GET("/stats", h.Anomaly.Stats)
				anomalies.GET("/export", h.Anomaly.Export)
				anomalies.GET("/:id", h.Anomaly.GetAnomaly)
				anomalies.POST("", h.Anomaly.CreateAnomaly)
				anomalies.PUT("/:id", h.Anomaly.UpdateAnomaly)
			}

			planning := authorized.Group("/planning")
			{
				planning.GET("", h.Planning.ListPlanning)
				planning.GET("/calendar.ics", h.Planning.Calendar)
				planning.POST("", h.Planning.CreatePlanning)
				planning.PUT("/:id", h.Planning.UpdatePlanning)
				planning.DELETE("/:id", h.Planning.DeletePlanning)
			}

			authorized.GET("/dashboard", h.Dashboard.GetDashboard)

			reports := authorized.Group("/reports")
			{
				reports.POST("", h.Report.Generate)
				reports.GET("/preview", h.Report.Preview)
			}
		}
	}

	return r
}

func health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		status := http.StatusOK
		if deps.DB != nil {
			checks["database"] = "ok"
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := deps.Redis.Ping(ctx); err != nil {
				// Redis is optional, report it without failing the probe
				checks["redis"] = "degraded"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "down"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
