// Package http provides the HTTP API for crisisd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crisisd/internal/docks"
	"github.com/fyrsmithlabs/crisisd/internal/drafting"
	"github.com/fyrsmithlabs/crisisd/internal/planning"
	"github.com/fyrsmithlabs/crisisd/internal/workflow"
)

// Engine is the workflow surface the API exposes.
type Engine interface {
	Analyze(ctx context.Context, crisis workflow.Crisis) (*workflow.Workflow, error)
	Decide(ctx context.Context, id string, approve bool) (*workflow.Workflow, error)
	Get(ctx context.Context, id string) (*workflow.Workflow, error)
}

// Server provides HTTP endpoints for crisisd.
type Server struct {
	echo   *echo.Echo
	engine Engine
	logger *zap.Logger
	config *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(engine Engine, logger *zap.Logger, cfg *Config) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8470,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())

	s := &Server{
		echo:   e,
		engine: engine,
		logger: logger,
		config: cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and Prometheus metrics
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/crises", s.handleAnalyze)
	v1.GET("/crises/:id", s.handleGet)
	v1.POST("/crises/:id/approve", s.handleApprove)
	v1.POST("/crises/:id/reject", s.handleReject)

	// Single-endpoint dispatch kept for callers of the original
	// event-style interface.
	v1.POST("/invoke", s.handleInvoke)
}

// AnalyzeRequest is the request body for POST /api/v1/crises.
type AnalyzeRequest struct {
	Description string `json:"crisis_description"`
	Vessel      string `json:"vessel_name"`
}

// InvokeRequest is the request body for POST /api/v1/invoke. Action
// selects the operation: "analyze" (the default) starts a workflow,
// "approve" and "reject" decide an existing one.
type InvokeRequest struct {
	Action      string `json:"action"`
	Description string `json:"crisis_description"`
	Vessel      string `json:"vessel_name"`
	CrisisID    string `json:"crisis_id"`
}

// CrisisResponse is the wire shape for workflow state. Field names
// follow the event contract consumed by existing HelmStream tooling.
type CrisisResponse struct {
	CrisisID      string                 `json:"crisis_id"`
	Crisis        string                 `json:"crisis"`
	Vessel        string                 `json:"vessel"`
	DetectedAt    time.Time              `json:"detected_at"`
	Status        string                 `json:"status"`
	State         string                 `json:"state"`
	DockStatus    map[string]docks.State `json:"dock_status"`
	Options       []planning.Option      `json:"options"`
	Recommended   *planning.Option       `json:"recommended_option,omitempty"`
	Justification string                 `json:"justification,omitempty"`
	Emails        []drafting.Message     `json:"stakeholder_emails"`
	ActionsTaken  []workflow.Action      `json:"actions_taken"`
	Messages      []string               `json:"messages"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func toCrisisResponse(w *workflow.Workflow) CrisisResponse {
	return CrisisResponse{
		CrisisID:      w.ID,
		Crisis:        w.Crisis.Description,
		Vessel:        w.Crisis.Vessel,
		DetectedAt:    w.Crisis.DetectedAt,
		Status:        string(w.Approval),
		State:         string(w.State),
		DockStatus:    w.Docks.Docks,
		Options:       w.Options,
		Recommended:   w.Recommended,
		Justification: w.Justification,
		Emails:        w.Emails,
		ActionsTaken:  w.Actions,
		Messages:      w.Log,
		UpdatedAt:     w.UpdatedAt,
	}
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleAnalyze starts a workflow and runs it to the approval gate.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid analyze request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "crisis_description field is required")
	}

	w, err := s.engine.Analyze(c.Request().Context(), workflow.Crisis{
		Description: req.Description,
		Vessel:      req.Vessel,
	})
	if err != nil {
		s.logger.Error("analyze failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}

	return c.JSON(http.StatusCreated, toCrisisResponse(w))
}

// handleGet returns the current workflow state.
func (s *Server) handleGet(c echo.Context) error {
	w, err := s.engine.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return decisionError(err)
	}
	return c.JSON(http.StatusOK, toCrisisResponse(w))
}

// handleApprove resumes a suspended workflow into execution.
func (s *Server) handleApprove(c echo.Context) error {
	return s.decide(c, c.Param("id"), true)
}

// handleReject terminates a suspended workflow without actions.
func (s *Server) handleReject(c echo.Context) error {
	return s.decide(c, c.Param("id"), false)
}

func (s *Server) decide(c echo.Context, id string, approve bool) error {
	w, err := s.engine.Decide(c.Request().Context(), id, approve)
	if err != nil {
		return decisionError(err)
	}
	return c.JSON(http.StatusOK, toCrisisResponse(w))
}

// handleInvoke dispatches on the action field.
func (s *Server) handleInvoke(c echo.Context) error {
	var req InvokeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid invoke request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	switch req.Action {
	case "", "analyze":
		if req.Description == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "crisis_description field is required")
		}
		w, err := s.engine.Analyze(c.Request().Context(), workflow.Crisis{
			Description: req.Description,
			Vessel:      req.Vessel,
		})
		if err != nil {
			s.logger.Error("analyze failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
		}
		return c.JSON(http.StatusCreated, toCrisisResponse(w))
	case "approve", "reject":
		if req.CrisisID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "crisis_id field is required")
		}
		return s.decide(c, req.CrisisID, req.Action == "approve")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
	}
}

// decisionError maps workflow errors onto HTTP status codes.
func decisionError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "crisis not found")
	case errors.Is(err, workflow.ErrAlreadyDecided):
		return echo.NewHTTPError(http.StatusConflict, "crisis already decided")
	case errors.Is(err, workflow.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "decision failed")
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
