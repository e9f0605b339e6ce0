package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/analysis"
	"github.com/cutdesk/cutdesk-agent/internal/api"
	"github.com/cutdesk/cutdesk-agent/internal/config"
	"github.com/cutdesk/cutdesk-agent/internal/db"
	"github.com/cutdesk/cutdesk-agent/internal/export"
	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/logging"
	"github.com/cutdesk/cutdesk-agent/internal/media"
	"github.com/cutdesk/cutdesk-agent/internal/playback"
	"github.com/cutdesk/cutdesk-agent/internal/project"
	"github.com/cutdesk/cutdesk-agent/internal/ui"
	"github.com/cutdesk/cutdesk-agent/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.WorkDir(), 0755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting cutdesk agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := library.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                    CUTDESK AGENT v%-8s                ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	librarySvc := library.NewService(repo, logger)
	projectSvc := project.NewService(repo, logger)

	ffmpeg := media.NewExecFFmpeg(cfg.FFmpegPath(), cfg.FFprobePath(), cfg.WorkDir(), logger)
	doctor := media.NewDoctor(&media.ExecProber{
		FFmpegPath:  cfg.FFmpegPath(),
		FFprobePath: cfg.FFprobePath(),
	}, logger)

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if caps, err := doctor.Refresh(initCtx); err != nil {
		logger.Warn("initial tool probe failed", "error", err)
	} else {
		logger.Info("media tools detected",
			"ffmpeg", caps.HasFFmpeg,
			"ffprobe", caps.HasFFprobe,
		)
	}
	initCancel()

	var analysisClient analysis.Client
	if cfg.OpenAIAPIKey() != "" {
		analysisClient = analysis.NewOpenAIClient(
			cfg.OpenAIAPIKey(),
			cfg.OpenAIBaseURL(),
			cfg.AnalysisModel(),
			cfg.TranscribeModel(),
			logger,
		)
		logger.Info("analysis backend configured",
			"analysis_model", cfg.AnalysisModel(),
			"transcribe_model", cfg.TranscribeModel(),
		)
	} else {
		analysisClient = analysis.NewStubClient(logger)
		logger.Warn("no OpenAI API key set, using stub analysis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := analysis.NewRunner(librarySvc, repo, ffmpeg, doctor, analysisClient, projectSvc, cfg.WorkDir(), logger)
	go runner.Start(ctx)

	presence := watcher.NewPresenceWatcher(repo, logger)
	go presence.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Library:    librarySvc,
		Projects:   projectSvc,
		Exporter:   export.NewExporter(repo, ffmpeg, logger),
		Streamer:   playback.NewStreamer(repo, logger),
		Repository: repo,
		Runner:     runner,
		Doctor:     doctor,
		Logger:     logger,
		StartTime:  startTime,
		DeviceID:   deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Library: librarySvc,
			Runner:  runner,
			Logger:  logger,
			OnOpenEditor: func() error {
				logger.Info("open editor requested from tray (browser launch not implemented in v0)")
				return nil
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(repo library.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo library.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
