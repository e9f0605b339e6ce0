// Package api exposes the agent's local HTTP surface: clip library,
// project timelines, playback streaming, and export. Bound to loopback
// only; the browser UI is the sole intended client.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/analysis"
	"github.com/cutdesk/cutdesk-agent/internal/config"
	"github.com/cutdesk/cutdesk-agent/internal/export"
	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/media"
	"github.com/cutdesk/cutdesk-agent/internal/playback"
	"github.com/cutdesk/cutdesk-agent/internal/project"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port       int
	Library    *library.Service
	Projects   *project.Service
	Exporter   *export.Exporter
	Streamer   *playback.Streamer
	Repository library.Repository
	Runner     *analysis.Runner
	Doctor     *media.Doctor
	Logger     *slog.Logger
	StartTime  time.Time
	DeviceID   string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr, "version", config.Version)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
