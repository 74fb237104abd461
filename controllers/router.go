package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/middlewares"
	"github.com/amal-sh/Blockchain-supplychain/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultCORSOrigins = []string{"http://localhost:3000"}

// RouterConfig carries the handlers and settings the HTTP surface is assembled from.
type RouterConfig struct {
	Sensor *SensorController
	Image  *ImageController
	Farm   *FarmController
	Auth   *AuthController
	Export *ExportController
	Hub    *Hub

	Users       store.UserStore
	JWTSecret   []byte
	UploadDir   string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed)
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type", ImageHashHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadDir)

	// Device routes stay public; field hardware carries no operator token.
	api := r.Group("/api")
	api.POST("/sensor-data", cfg.Sensor.ReceiveData)
	api.GET("/sensor-data", cfg.Sensor.GetHistory)
	api.POST("/upload-image", cfg.Image.UploadImage)
	api.GET("/upload-image", cfg.Image.UploadUsage)
	api.GET("/farm-images", cfg.Image.ListImages)
	api.GET("/farms/:id", cfg.Farm.GetFarm)
	api.GET("/farms/:id/claims", cfg.Farm.GetFarmClaims)

	r.POST("/signup", cfg.Auth.Signup)
	r.POST("/login", cfg.Auth.Login)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	auth.GET("/ws", cfg.Hub.HandleWebSocket)
	auth.GET("/profile", cfg.Auth.GetProfile)
	auth.GET("/api/sensor-data/export", cfg.Export.DownloadReadings)

	admin := auth.Group("/")
	admin.Use(middlewares.RequireAdmin(cfg.Users))
	admin.POST("/promote-admin", cfg.Auth.PromoteToAdmin)
	admin.POST("/api/farms", cfg.Farm.CreateFarm)

	return r
}
