package server

import (
	"context"
	"slices"

	"github.com/abduss/photomap/internal/config"
	"github.com/abduss/photomap/internal/logger"
	"github.com/abduss/photomap/internal/metrics"
	"github.com/abduss/photomap/internal/photo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// multipartMemory bounds the part of a form held in RAM; larger files spill
// to temporary files.
const multipartMemory = 1 << 20

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	DB           Pinger
	Storage      Pinger
	PhotoService *photo.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = multipartMemory
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config.CORS)))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/api")
	if deps.PhotoService != nil {
		photo.RegisterRoutes(api, deps.PhotoService)
	}

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", logger.CorrelationIDHeader},
		ExposeHeaders: []string{"Content-Length", logger.CorrelationIDHeader},
		MaxAge:        cfg.MaxAge,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return c
}
