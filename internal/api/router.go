package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/config"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/handler"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(ctx context.Context, cfg *config.Config, h *handler.RenovationHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.RateLimit(ctx, cfg.RateLimit, cfg.RateWindow),
	)

	// 健康检查
	r.GET("/health", h.Health)

	// API 路由组
	api := r.Group("/api/v1")
	{
		dataset := api.Group("/dataset")
		{
			dataset.GET("", h.GetDataset)
			// the built-in secret is public, refresh stays unmounted with it
			if cfg.TokensEnabled() {
				dataset.POST("/refresh", middleware.RequireToken(cfg.JWTSecret), h.RefreshDataset)
			} else {
				logger.Warn("refresh endpoint disabled, set a jwt secret or allow-default-secret")
			}
		}

		sections := api.Group("/sections")
		{
			sections.GET("", h.GetSections)
			sections.GET("/:section/groups", h.GetGroups)
			sections.GET("/:section/summary", h.GetSummary)
			sections.GET("/:section/interval", h.GetInterval)
		}

		api.GET("/line/summary", h.GetLineSummary)
		api.GET("/stations", h.GetStations)
		api.GET("/segments", h.GetSegments)
		api.GET("/export.xlsx", h.ExportWorkbook)
	}

	return r
}

// WithCORS lets browsers on any origin read the API
func WithCORS(next http.Handler) http.Handler {
	return newCORS().Handler(next)
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		// workbook downloads carry their file name here
		ExposedHeaders: []string{"Content-Disposition"},
	})
}
