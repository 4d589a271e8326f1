package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/othello-session/internal/authority"
	"github.com/rocketscienceinc/othello-session/internal/config"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/repository"
	"github.com/rocketscienceinc/othello-session/internal/repository/storage"
	"github.com/rocketscienceinc/othello-session/internal/usecase"
	"github.com/rocketscienceinc/othello-session/transport/rest"
	"github.com/rocketscienceinc/othello-session/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisStorage, conf.SessionTTL)
	authorityClient := authority.New(logger, conf.Authority.BaseURL, conf.Authority.Timeout)
	geometry := input.NewMapper(conf.Board.OffsetX, conf.Board.OffsetY, conf.Board.CellSize, conf.Board.CellSize)
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, authorityClient, geometry, conf.IdleTTL)
	go sessionManager.Run(ctx, conf.EvictInterval)

	wsServer := websocket.New(logger, sessionManager)
	router := rest.NewRouter(logger, sessionManager, geometry, conf.SessionTTL, wsServer)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "authority", conf.Authority.BaseURL)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
