package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanteonNL/ahcd/cmd/ahcd/api"
	"github.com/SanteonNL/ahcd/cmd/ahcd/config"
	"github.com/SanteonNL/ahcd/cmd/ahcd/pipeline"
	"github.com/SanteonNL/ahcd/cmd/ahcd/store"
)

func runServe(args []string, cfg config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	p := e.processor(nil, pipeline.Options{DropBlankDiagnoses: cfg.DropBlankDiagnoses}, log)

	var runs api.RunHistory
	if cfg.DatabaseURL != "" {
		rl, err := store.OpenRunLog(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer rl.Close()
		runs = rl
	}
	router := api.NewNAMCSRouter(e.layouts, p, runs, log)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	log.Info().Str("addr", *addr).Msg("Server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
