// Command othello-tui plays against the move authority in a terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/othello-session/internal/authority"
	"github.com/rocketscienceinc/othello-session/internal/config"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/render"
	"github.com/rocketscienceinc/othello-session/internal/session"
	"github.com/rocketscienceinc/othello-session/internal/tui"
)

const logFile = "othello-tui.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	conf := config.MustLoad(filepath.Join(baseDir, "config.yml"))

	// the screen owns stdout, so logs go to a file
	out, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer out.Close()

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: config.ParseLevel(conf.LogLevel)}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("new screen: %w", err)
	}

	if err = screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()

	client := authority.New(logger, conf.Authority.BaseURL, conf.Authority.Timeout)
	gameSession := session.New(logger, client)

	geometry := input.NewMapper(conf.TUI.PadLeft, conf.TUI.PadTop, conf.TUI.CellWidth, conf.TUI.CellHeight)
	ui := tui.New(logger, screen, render.NewTerminal(screen, geometry), gameSession)

	logger.Info("terminal client started", "authority", conf.Authority.BaseURL)

	return ui.Run(ctx)
}
