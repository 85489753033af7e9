package server

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/config"
	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// Server — HTTP-API для чтения статистики импорта. Записывающих
// endpoint'ов нет: данные попадают в базу только через импорт пакетов.
type Server struct {
	store  db.Store
	router *gin.Engine
	logger *logging.Logger
	config *config.Config
}

// NewServer собирает сервер с маршрутами и CORS.
func NewServer(store db.Store, logger *logging.Logger, cfg *config.Config) *Server {
	server := &Server{
		store:  store,
		logger: logger,
		config: cfg,
	}

	router := gin.Default()

	// Настройка CORS
	corsConfig := cors.DefaultConfig()
	if cfg.IsDebug != nil && *cfg.IsDebug {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	} else if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		logger.Warn("CORS allowed_origins not configured in production - using restrictive default")
		corsConfig.AllowOrigins = []string{}
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", server.healthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", server.getStatsHandler)
		v1.GET("/buyers/top", server.getTopBuyersHandler)
		v1.GET("/documents/:doc_id", server.getDocumentHandler)
	}

	server.router = router
	return server
}

// Run запускает HTTP-сервер на адресе из конфигурации.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.config.Listen.BindIP, s.config.Listen.Port)
	s.logger.Infof("Starting API server on %s", addr)
	return s.router.Run(addr)
}
