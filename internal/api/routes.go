package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codyseavey/tcg-inventory-sync/internal/api/handlers"
	"github.com/codyseavey/tcg-inventory-sync/internal/services"
)

// RouterConfig holds the HTTP knobs taken from the service config
type RouterConfig struct {
	CORSOrigins    []string
	UploadRate     float64
	UploadBurst    int
	MaxUploadBytes int64
}

func SetupRouter(cfg RouterConfig, syncService *services.SyncService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), requestMetrics())

	config := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		config.AllowOrigins = cfg.CORSOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", UserHeader}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	inventoryHandler := handlers.NewInventoryHandler(syncService, cfg.MaxUploadBytes, log)
	uploadHandler := handlers.NewUploadHandler(syncService)

	burst := cfg.UploadBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.UploadRate > 0 {
		limit = rate.Limit(cfg.UploadRate)
	}
	throttle := rateLimit(rate.NewLimiter(limit, burst))

	api := router.Group("/api", requireUser())
	{
		inventory := api.Group("/inventory")
		{
			inventory.GET("", inventoryHandler.GetInventory)
			inventory.POST("/sync", throttle, inventoryHandler.SyncInventory)
			inventory.POST("/upload", throttle, inventoryHandler.UploadCSV)
			inventory.GET("/snapshots", inventoryHandler.GetSnapshots)
			inventory.GET("/changes", inventoryHandler.GetChanges)
			inventory.GET("/growth", inventoryHandler.GetGrowth)
		}

		uploads := api.Group("/uploads")
		{
			uploads.GET("/:id", uploadHandler.GetUpload)
			uploads.GET("/:id/progress", uploadHandler.GetProgress)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
