package ui

import (
	"net/http"

	"healthcorr/app"
	"healthcorr/internal"
	"healthcorr/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server serves the heatmap JSON API for one loaded session
type Server struct {
	router  *gin.Engine
	service *app.HeatmapService
	session *app.Session
	logger  *internal.Logger
}

// NewServer creates a new API server instance
func NewServer(service *app.HeatmapService, session *app.Session, logger *internal.Logger) *Server {
	s := &Server{
		router:  gin.New(),
		service: service,
		session: session,
		logger:  internal.OrDefault(logger).With("Server"),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/variables", s.handleVariables)
	api.GET("/dataset", s.handleDataset)
	api.GET("/matrix", s.handleMatrix)
	api.POST("/order/toggle", s.handleToggleOrder)
	api.PUT("/order/:mode", s.handleSetOrder)
	api.GET("/schemes", s.handleSchemes)
	api.PUT("/scheme/:name", s.handleSetScheme)
	api.GET("/profiles", s.handleProfiles)
	api.GET("/pairs/top", s.handleTopPairs)

	snapshots := api.Group("/snapshots", middleware.RequireStorage(s.service.SnapshotsEnabled(), s.logger))
	snapshots.POST("", s.handleSaveSnapshot)
	snapshots.GET("", s.handleListSnapshots)
	snapshots.GET("/:id", s.handleGetSnapshot)
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	s.logger.Info("API listening on %s", addr)
	return s.router.Run(addr)
}
