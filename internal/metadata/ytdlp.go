package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

// YtdlpProvider runs yt-dlp -J for the video and reads its JSON dump.
type YtdlpProvider struct {
	path string
}

func NewYtdlpProvider(path string) *YtdlpProvider {
	if path == "" {
		path = "yt-dlp"
	}
	return &YtdlpProvider{path: path}
}

type ytdlpInfo struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

func (y *YtdlpProvider) Lookup(ctx context.Context, url string) (models.Metadata, error) {
	const op = "lookup metadata"
	cmd := exec.CommandContext(ctx, y.path, "-J", "--no-warnings", "--skip-download", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		log.WithError(err).WithFields(log.Fields{"url": url, "stderr": msg}).Debug("yt-dlp failed")
		if msg != "" {
			err = errors.Wrap(err, msg)
		}
		return models.Metadata{}, apperr.New(classifyYtdlp(msg), op, url, err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, errors.Wrap(err, "parse metadata JSON"))
	}
	if info.Title == "" {
		return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, errors.New("invalid metadata: missing or empty title"))
	}

	return models.Metadata{
		Title:        info.Title,
		ThumbnailURL: info.Thumbnail,
		Duration:     int(info.Duration),
	}, nil
}

func classifyYtdlp(stderr string) apperr.Kind {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "unsupported url"), strings.Contains(s, "is not a valid url"):
		return apperr.InvalidURL
	case strings.Contains(s, "video unavailable"), strings.Contains(s, "private video"),
		strings.Contains(s, "has been removed"), strings.Contains(s, "sign in to confirm your age"):
		return apperr.VideoUnavailable
	}
	return apperr.ProviderError
}
