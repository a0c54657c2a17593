package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"jamesfarrell.me/youtube-transcript-search/internal/api"
	"jamesfarrell.me/youtube-transcript-search/internal/api/handlers"
	"jamesfarrell.me/youtube-transcript-search/internal/config"
	"jamesfarrell.me/youtube-transcript-search/internal/metadata"
	"jamesfarrell.me/youtube-transcript-search/internal/search"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/db"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/registry"
	"jamesfarrell.me/youtube-transcript-search/internal/transcription"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

const shutdownTimeout = 10 * time.Second

func makeServeCMD() cli.Command {
	return cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves the http api",
		Flags:   config.RegisterFlags(nil),
		Action:  serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.New(c)
	if err != nil {
		return err
	}
	closer, err := config.ConfigureLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setting DB
	database, err := db.NewConnection(db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	// Setting YouTube clients
	yt := youtube.NewClient(nil, youtube.Config{
		ClientVersion: cfg.InnertubeClientVersion,
		Language:      cfg.TranscriptLanguages[0],
		Timeout:       cfg.HTTPTimeout,
	})
	provider, err := metadata.New(ctx, metadata.Options{
		Kind:      cfg.MetadataProvider,
		YouTube:   yt,
		APIKey:    cfg.YouTubeAPIKey,
		YtdlpPath: cfg.YtdlpPath,
	})
	if err != nil {
		return err
	}
	transcripts := transcription.NewService(yt, cfg.TranscriptLanguages, cfg.CaptionFormat)

	// Setting handlers
	videoRepo := registry.NewVideoRepository(database)
	searcher := search.NewService(videoRepo, transcripts)
	router := api.NewRouter(handlers.NewVideoHandler(videoRepo, provider, searcher))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":              cfg.HTTPAddr,
			"metadata_provider": cfg.MetadataProvider,
			"caption_format":    cfg.CaptionFormat,
		}).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "http server error")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "failed to shut down http server")
}
