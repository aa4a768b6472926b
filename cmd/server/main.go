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

	"github.com/watchsync/backend/internal/clock"
	"github.com/watchsync/backend/internal/comments"
	"github.com/watchsync/backend/internal/config"
	"github.com/watchsync/backend/internal/dispatcher"
	"github.com/watchsync/backend/internal/heartbeat"
	"github.com/watchsync/backend/internal/httpapi"
	"github.com/watchsync/backend/internal/hub"
	"github.com/watchsync/backend/internal/oembed"
	"github.com/watchsync/backend/internal/registry"
	"github.com/watchsync/backend/internal/screenshare"
	"github.com/watchsync/backend/internal/sfu"
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

	sysClock := clock.System{}
	reg := registry.New(sysClock)
	pool := sfu.NewWorkerPool(cfg.MediasoupNumWorkers, cfg.MediasoupAnnouncedIP, cfg.MediasoupPort)
	sfuMgr := sfu.NewManager(pool)
	screen := screenshare.New()
	oembedClient := oembed.New()
	commentsProxy := comments.New(cfg.InvidiousInstances)

	// The dispatcher is hub.EventHandler, so it must exist before the hub
	// does; the dispatcher's own hub reference is filled in right after.
	disp := dispatcher.New(reg, sfuMgr, screen, oembedClient, commentsProxy, sysClock)
	h := hub.New(disp)
	disp.SetHub(h)

	ticker := heartbeat.New(reg, h, sysClock)
	go ticker.Run()

	r := httpapi.SetupRouter(httpapi.Deps{
		Config:   cfg,
		Registry: reg,
		Hub:      h,
		Comments: commentsProxy,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("watchsync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	ticker.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
