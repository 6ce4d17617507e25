package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/DanJbk/tilequest/internal/config"
	"github.com/DanJbk/tilequest/internal/logger"
	"github.com/DanJbk/tilequest/internal/services"
	"github.com/DanJbk/tilequest/internal/storage"
	"github.com/DanJbk/tilequest/pkg/resolver"
	"github.com/DanJbk/tilequest/pkg/world"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	sessionFlag := flag.String("session", "", "session id to resume (optional)")
	logPath := flag.String("log", "tilequest.log", "log file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()
	log := logger.Setup(cfg, logFile)

	w, err := world.Load(cfg.MapPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load map %q: %v\n", cfg.MapPath, err)
		os.Exit(1)
	}
	log.Info("world loaded",
		"map", cfg.MapPath,
		"width", w.Width(),
		"height", w.Height(),
		"entities", len(w.Objects()))

	gateway := services.NewOllamaService(cfg.Backend.URL, cfg.Backend.Model, log)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	if err := gateway.EnsureModel(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Backend is not available: %v\n", err)
		os.Exit(1)
	}
	cancel()

	r := resolver.New(w, gateway, log)
	r.Temperature = cfg.Backend.Temperature

	sessionID := uuid.New()
	if *sessionFlag != "" {
		sessionID, err = uuid.Parse(*sessionFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid session id %q: %v\n", *sessionFlag, err)
			os.Exit(1)
		}
	}

	// Saving is optional; the game runs without redis.
	var store storage.Storage
	if cfg.Redis.Addr != "" {
		rs := storage.NewRedisStorage(cfg.Redis.Addr, time.Duration(cfg.Redis.SessionTTL), log)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rs.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Warn("redis unavailable, sessions will not persist", "addr", cfg.Redis.Addr, "error", err)
			_ = rs.Close()
		} else {
			store = rs
			defer func() { _ = rs.Close() }()

			if *sessionFlag != "" {
				loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
				snap, err := rs.LoadSession(loadCtx, sessionID)
				loadCancel()
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
					os.Exit(1)
				}
				if snap == nil {
					log.Warn("session not found, starting fresh", "session", sessionID)
				} else {
					w.RestoreSnapshot(snap)
					log.Info("session restored", "session", sessionID)
				}
			}
		}
	}

	p := tea.NewProgram(NewGameUI(w, r, store, sessionID),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
