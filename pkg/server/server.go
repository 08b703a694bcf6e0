// Package server exposes the engine over a REST API.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duynguyendang/implica/pkg/service"
)

// Server holds the state for the REST API server.
type Server struct {
	graphService *service.GraphService
	router       *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(svc *service.GraphService) *Server {
	r := gin.Default()
	s := &Server{
		graphService: svc,
		router:       r,
	}
	r.Use(requestID())
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	slog.Info("starting REST API server", "addr", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/v1/graphs", s.handleListGraphs)
	s.router.POST("/v1/graphs", s.handleCreateGraph)
	s.router.GET("/v1/summary", s.handleSummary)
	s.router.POST("/v1/query", s.handleQuery)
	s.router.GET("/v1/export", s.handleExport)
}

// requestID tags each request so log lines correlate.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
