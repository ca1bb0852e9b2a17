// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/Veraticus/kharcha/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Extractor runs the pipeline for one transcript.
type Extractor interface {
	Extract(ctx context.Context, transcript model.Transcript) engine.Result
}

// History reads the audit log.
type History interface {
	RecentExtractions(ctx context.Context, limit int) ([]storage.ExtractionRecord, error)
	GetExtraction(ctx context.Context, id string) (*storage.ExtractionRecord, error)
}

// Server provides HTTP endpoints for kharcha.
type Server struct {
	echo      *echo.Echo
	extractor Extractor
	history   History
	logger    *slog.Logger
	addr      string
}

// New creates a server. history may be nil when the audit log is disabled.
func New(extractor Extractor, history History, logger *slog.Logger, addr string) (*Server, error) {
	if extractor == nil {
		return nil, errors.New("extractor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("HTTP request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))

			return nil
		}
	})

	s := &Server{
		echo:      e,
		extractor: extractor,
		history:   history,
		logger:    logger,
		addr:      addr,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/extract", s.handleExtract)
	v1.GET("/extractions", s.handleHistory)
	v1.GET("/extractions/:id", s.handleGetExtraction)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ExtractRequest is the request body for POST /api/v1/extract.
type ExtractRequest struct {
	Text             string   `json:"text"`
	AudioQualityHint string   `json:"audioQualityHint,omitempty"`
	Alternatives     []string `json:"alternatives,omitempty"`
	RetryCount       int      `json:"retryCount,omitempty"`
}

// Transcript validates the request and converts it to a pipeline input.
func (r ExtractRequest) Transcript() (model.Transcript, error) {
	t := model.Transcript{
		Text:         strings.TrimSpace(r.Text),
		Alternatives: r.Alternatives,
		RetryCount:   r.RetryCount,
	}

	hasText := t.Text != ""
	for _, alt := range r.Alternatives {
		if strings.TrimSpace(alt) != "" {
			hasText = true
		}
	}
	if !hasText {
		return t, errors.New("text field is required")
	}

	if r.RetryCount < 0 {
		return t, errors.New("retryCount must not be negative")
	}

	switch q := model.AudioQuality(strings.ToLower(r.AudioQualityHint)); q {
	case "", model.AudioQualityGood, model.AudioQualityModerate, model.AudioQualityPoor:
		t.AudioQualityHint = q
	default:
		return t, fmt.Errorf("unknown audioQualityHint %q", r.AudioQualityHint)
	}

	return t, nil
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleExtract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("Invalid extract request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	transcript, err := req.Transcript()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := s.extractor.Extract(c.Request().Context(), transcript)
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "audit log is disabled")
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
		}
		limit = n
	}

	records, err := s.history.RecentExtractions(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error("Failed to read history", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read history")
	}

	out := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		out = append(out, NewHistoryEntry(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetExtraction(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "audit log is disabled")
	}

	record, err := s.history.GetExtraction(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "extraction not found")
		}
		s.logger.Error("Failed to read extraction", "id", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read extraction")
	}

	return c.JSON(http.StatusOK, NewHistoryEntry(*record))
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
