// Package config turns command line flags and environment variables into the
// settings every component is built from.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"jamesfarrell.me/youtube-transcript-search/internal/metadata"
	"jamesfarrell.me/youtube-transcript-search/internal/transcription"
)

const (
	httpAddrFlag               = "http-addr"
	httpTimeoutFlag            = "http-timeout"
	transcriptLanguagesFlag    = "transcript-languages"
	captionFormatFlag          = "caption-format"
	metadataProviderFlag       = "metadata-provider"
	youtubeAPIKeyFlag          = "youtube-api-key"
	ytdlpPathFlag              = "ytdlp-path"
	innertubeClientVersionFlag = "innertube-client-version"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	HTTPTimeout time.Duration

	TranscriptLanguages []string
	CaptionFormat       transcription.Format

	MetadataProvider       metadata.Kind
	YouTubeAPIKey          string
	YtdlpPath              string
	InnertubeClientVersion string

	Log LogConfig
}

// RegisterFlags adds every flag the service reads.
func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = RegisterDatabaseFlags(f)
	f = RegisterLogFlags(f)
	f = RegisterYouTubeFlags(f)
	return append(f,
		cli.StringFlag{
			Name:   httpAddrFlag,
			Usage:  "http listen address",
			Value:  ":5000",
			EnvVar: "HTTP_ADDR",
		},
	)
}

// RegisterYouTubeFlags adds the flags of the YouTube clients only, for tools
// that do not serve HTTP or touch the database.
func RegisterYouTubeFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   httpTimeoutFlag,
			Usage:  "timeout of outbound requests to YouTube",
			Value:  30 * time.Second,
			EnvVar: "HTTP_TIMEOUT",
		},
		cli.StringFlag{
			Name:   transcriptLanguagesFlag,
			Usage:  "comma separated preferred transcript languages",
			Value:  "en",
			EnvVar: "TRANSCRIPT_LANGUAGES",
		},
		cli.StringFlag{
			Name:   captionFormatFlag,
			Usage:  "caption track format (json3 or vtt)",
			Value:  string(transcription.FormatJSON3),
			EnvVar: "CAPTION_FORMAT",
		},
		cli.StringFlag{
			Name:   metadataProviderFlag,
			Usage:  "video metadata source (player, api or ytdlp)",
			Value:  string(metadata.KindPlayer),
			EnvVar: "METADATA_PROVIDER",
		},
		cli.StringFlag{
			Name:   youtubeAPIKeyFlag,
			Usage:  "YouTube Data API v3 key, used by the api metadata provider",
			EnvVar: "YOUTUBE_API_KEY",
		},
		cli.StringFlag{
			Name:   ytdlpPathFlag,
			Usage:  "path to the yt-dlp binary",
			Value:  "yt-dlp",
			EnvVar: "YTDLP_PATH",
		},
		cli.StringFlag{
			Name:   innertubeClientVersionFlag,
			Usage:  "WEB client version sent to the Innertube player endpoint",
			EnvVar: "INNERTUBE_CLIENT_VERSION",
		},
	)
}

// New reads the configuration. Settings whose flags were not registered are
// left empty.
func New(c *cli.Context) (*Config, error) {
	format, err := transcription.ParseFormat(c.String(captionFormatFlag))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:               c.String(httpAddrFlag),
		HTTPTimeout:            c.Duration(httpTimeoutFlag),
		TranscriptLanguages:    splitList(c.String(transcriptLanguagesFlag)),
		CaptionFormat:          format,
		MetadataProvider:       metadata.Kind(strings.ToLower(c.String(metadataProviderFlag))),
		YouTubeAPIKey:          c.String(youtubeAPIKeyFlag),
		YtdlpPath:              c.String(ytdlpPathFlag),
		InnertubeClientVersion: c.String(innertubeClientVersionFlag),
		Log:                    NewLogConfig(c),
	}

	cfg.DatabaseURL, err = GetDatabaseURL(c)
	if err != nil {
		return nil, err
	}

	if len(cfg.TranscriptLanguages) == 0 {
		return nil, errors.New("at least one transcript language is required")
	}
	switch cfg.MetadataProvider {
	case metadata.KindPlayer, metadata.KindYtdlp:
	case metadata.KindAPI:
		if cfg.YouTubeAPIKey == "" {
			return nil, errors.Errorf("--%s is required by the api metadata provider", youtubeAPIKeyFlag)
		}
	default:
		return nil, errors.Errorf("unknown metadata provider %q", cfg.MetadataProvider)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, errors.Errorf("--%s must be positive", httpTimeoutFlag)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
