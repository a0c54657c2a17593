package metadata

import (
	"context"

	"github.com/pkg/errors"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

// PlayerProvider reads metadata from the Innertube player response, the same
// call the transcript fetcher makes, so no API key is needed.
type PlayerProvider struct {
	yt *youtube.Client
}

func NewPlayerProvider(yt *youtube.Client) *PlayerProvider {
	return &PlayerProvider{yt: yt}
}

func (p *PlayerProvider) Lookup(ctx context.Context, url string) (models.Metadata, error) {
	const op = "lookup metadata"
	id, ok := models.ExtractVideoID(url)
	if !ok {
		return models.Metadata{}, apperr.New(apperr.InvalidURL, op, url, nil)
	}

	pr, err := p.yt.Player(ctx, id)
	if err != nil {
		return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, err)
	}
	if err := pr.Playable(); err != nil {
		return models.Metadata{}, apperr.New(apperr.VideoUnavailable, op, url, err)
	}
	if pr.VideoDetails.Title == "" {
		return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, errors.New("player response has no video details"))
	}

	return models.Metadata{
		Title:        pr.VideoDetails.Title,
		ThumbnailURL: pr.ThumbnailURL(),
		Duration:     pr.Duration(),
	}, nil
}
