package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/akhilnr/classcord/internal/adapters/http"
	"github.com/akhilnr/classcord/internal/app"
	"github.com/akhilnr/classcord/internal/config"
	"github.com/akhilnr/classcord/internal/storage"
	"github.com/akhilnr/classcord/internal/storage/memory"
	mongostore "github.com/akhilnr/classcord/internal/storage/mongo"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomTable()
	orch := &app.Orchestrator{
		Registry: reg,
		Rooms:    rooms,
	}

	var channels storage.ChannelStore
	var mongoChannels *mongostore.ChannelStore
	if cfg.MongoURI != "" {
		mongoChannels, err = mongostore.NewChannelStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect channel store")
		}
		channels = mongoChannels
		log.Info().Str("db", cfg.MongoDB).Msg("using mongo channel store")
	} else {
		channels = memory.NewChannelStore()
		log.Info().Msg("using in-memory channel store")
	}
	boards := memory.NewWhiteboardStore()

	r := router.SetupRouter(ctx, cfg, orch, channels, boards)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Classcord relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	rooms.Clear()
	if mongoChannels != nil {
		if err := mongoChannels.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("channel store close")
		}
	}
	log.Info().Msg("Server exited gracefully")
}
