package server

import (
	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/adilkhan/custarchive/internal/config"
	"github.com/adilkhan/custarchive/internal/customer"
	"github.com/adilkhan/custarchive/internal/file"
	"github.com/adilkhan/custarchive/internal/logger"
	"github.com/adilkhan/custarchive/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	DB              *pgxpool.Pool
	ObjectStore     *minio.Client
	AuthService     *auth.Service
	CustomerService *customer.Service
	FileService     *file.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())

	metrics.InitMetrics()
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService)

		protected := api.Group("/")
		protected.Use(auth.Middleware(deps.AuthService))

		if deps.CustomerService != nil {
			customer.RegisterRoutes(protected, deps.CustomerService)

			if deps.FileService != nil {
				file.RegisterRoutes(protected, deps.FileService, deps.CustomerService)
			}
		}
	}

	return router
}
