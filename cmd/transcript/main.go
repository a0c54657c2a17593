// Fetches and prints the transcript of a single YouTube video, or the
// moments a term is spoken in it, without touching the database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"jamesfarrell.me/youtube-transcript-search/internal/config"
	"jamesfarrell.me/youtube-transcript-search/internal/metadata"
	"jamesfarrell.me/youtube-transcript-search/internal/search"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/transcription"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

const searchFlag = "search"

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	app := cli.NewApp()
	app.Name = "transcript"
	app.Usage = "prints the transcript of a YouTube video"
	app.ArgsUsage = "<url>"
	app.Flags = append(config.RegisterLogFlags(config.RegisterYouTubeFlags(nil)),
		cli.StringFlag{
			Name:  searchFlag,
			Usage: "print only the seconds at which this term is spoken",
		},
	)
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("failed to fetch transcript")
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one video url")
	}
	cfg, err := config.New(c)
	if err != nil {
		return err
	}
	closer, err := config.ConfigureLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	url, ok := models.CanonicalURL(c.Args().First())
	if !ok {
		return errors.Errorf("invalid YouTube URL: %s", c.Args().First())
	}
	videoID, _ := models.ExtractVideoID(url)

	ctx := context.Background()
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

	md, err := provider.Lookup(ctx, url)
	if err != nil {
		return err
	}
	segments, err := transcription.NewService(yt, cfg.TranscriptLanguages, cfg.CaptionFormat).Fetch(ctx, videoID)
	if err != nil {
		return err
	}

	return printTranscript(os.Stdout, url, md, segments, c.String(searchFlag))
}

func printTranscript(w io.Writer, url string, md models.Metadata, segments []models.Segment, term string) error {
	fmt.Fprintf(w, "%s\n%s (%ds)\n\n", md.Title, url, md.Duration)
	if term == "" {
		for _, s := range segments {
			fmt.Fprintf(w, "[%s] %s\n", formatSeconds(int(s.Start)), s.Text)
		}
		return nil
	}

	timestamps := search.FindTimestamps(segments, term)
	if len(timestamps) == 0 {
		fmt.Fprintf(w, "%q was not found\n", term)
		return nil
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	for _, ts := range timestamps {
		fmt.Fprintf(w, "%s%st=%ds\n", url, sep, ts)
	}
	return nil
}

func formatSeconds(s int) string {
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s%3600/60, s%60)
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
