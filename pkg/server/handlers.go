package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

// handleError maps an engine error onto an HTTP response.
func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	slog.Error("request failed",
		"request_id", c.GetString("request_id"),
		"status", appErr.Code,
		"error", err,
	)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message, "detail": err.Error()})
}

// healthCheck reports liveness.
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// handleListGraphs returns metadata for every managed graph.
func (s *Server) handleListGraphs(c *gin.Context) {
	c.JSON(http.StatusOK, s.graphService.ListGraphs())
}

// handleCreateGraph registers a new named graph with its constants.
func (s *Server) handleCreateGraph(c *gin.Context) {
	var req struct {
		Name      string            `json:"name"`
		Constants map[string]string `json:"constants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	if err := s.graphService.CreateGraph(req.Name, req.Constants); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": req.Name})
}

// handleSummary reports a graph's size and constants.
func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.graphService.Summary(c.Query("graph"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleQuery compiles and runs a statement against a graph.
func (s *Server) handleQuery(c *gin.Context) {
	var req struct {
		Graph     string `json:"graph"`
		Statement string `json:"statement"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	if strings.TrimSpace(req.Statement) == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Statement must not be empty", errors.ErrInvalidQuery))
		return
	}

	result, err := s.graphService.ExecuteStatement(req.Graph, req.Statement)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleExport renders a graph as D3 force-graph JSON.
func (s *Server) handleExport(c *gin.Context) {
	d3, err := s.graphService.Export(c.Query("graph"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, d3)
}
