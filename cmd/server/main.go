package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mindmend/sessiond/internal/adapters/http"
	"github.com/mindmend/sessiond/internal/adapters/signal"
	"github.com/mindmend/sessiond/internal/app"
	"github.com/mindmend/sessiond/internal/config"
	"github.com/mindmend/sessiond/internal/gateway"
	"github.com/mindmend/sessiond/internal/store"
)

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	connections := app.NewConnectionRegistry()
	rooms := app.NewRoomRegistry()
	lifecycle := &app.Lifecycle{
		Registry: connections,
		Rooms:    rooms,
		Notify:   signal.Notifier{},
	}

	var messageStore *store.MessageStore
	var gw gateway.MessageGateway
	if cfg.GatewayURL != "" {
		gw = gateway.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayToken, cfg.GatewayTimeout)
		log.Info().Str("gateway", cfg.GatewayURL).Msg("using platform persistence gateway")
	} else {
		messageStore, err = store.Open(cfg.StorePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open message store")
		}
		defer messageStore.Close()
		gw = &gateway.LocalGateway{Store: messageStore}
		log.Info().Str("path", cfg.StorePath).Msg("standalone mode, embedded message store")
	}

	ctl := &signal.SessionController{
		Lifecycle:  lifecycle,
		Signals:    &app.SignalingRelay{Registry: connections, Rooms: rooms},
		Chat:       &app.ChatRelay{Registry: connections, Rooms: rooms, Gateway: gw, Notify: lifecycle.Notify},
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}

	go lifecycle.RunJanitor(ctx, cfg.RoomSweep, cfg.RoomIdleTTL)

	r := router.SetupRouter(ctx, cfg, ctl, rooms, router.NewMessagesAPI(messageStore))
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("session server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	lifecycle.Drain()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}

func signalContext() (context.Context, context.CancelFunc) {
	return osignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
