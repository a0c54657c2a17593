// Package metadata looks up the title, thumbnail and duration of a YouTube
// video when it is registered.
package metadata

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

// Provider returns metadata for a canonical video URL. Errors carry one of the
// apperr kinds InvalidURL, VideoUnavailable or ProviderError.
type Provider interface {
	Lookup(ctx context.Context, url string) (models.Metadata, error)
}

type Kind string

const (
	KindPlayer Kind = "player"
	KindAPI    Kind = "api"
	KindYtdlp  Kind = "ytdlp"
)

type Options struct {
	Kind      Kind
	YouTube   *youtube.Client
	APIKey    string
	YtdlpPath string
}

// New builds the provider named by opts.Kind.
func New(ctx context.Context, opts Options) (Provider, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case KindPlayer, "":
		if opts.YouTube == nil {
			return nil, errors.New("player metadata provider needs a youtube client")
		}
		return NewPlayerProvider(opts.YouTube), nil
	case KindAPI:
		return NewAPIProvider(ctx, opts.APIKey)
	case KindYtdlp:
		return NewYtdlpProvider(opts.YtdlpPath), nil
	}
	return nil, errors.Errorf("unknown metadata provider %q", opts.Kind)
}
