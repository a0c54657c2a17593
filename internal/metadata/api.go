package metadata

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

// APIProvider uses the YouTube Data API v3 videos.list call.
type APIProvider struct {
	service *youtube.Service
}

func NewAPIProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APIProvider, error) {
	if apiKey == "" && len(opts) == 0 {
		return nil, errors.New("api key required")
	}
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create youtube service")
	}
	return &APIProvider{service: service}, nil
}

func (a *APIProvider) Lookup(ctx context.Context, url string) (models.Metadata, error) {
	const op = "lookup metadata"
	id, ok := models.ExtractVideoID(url)
	if !ok {
		return models.Metadata{}, apperr.New(apperr.InvalidURL, op, url, nil)
	}

	resp, err := a.service.Videos.List([]string{"snippet", "contentDetails"}).Id(id).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return models.Metadata{}, apperr.New(apperr.VideoUnavailable, op, url, err)
		}
		return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return models.Metadata{}, apperr.New(apperr.VideoUnavailable, op, url, errors.New("video not found"))
	}

	v := resp.Items[0]
	md := models.Metadata{
		Title:        v.Snippet.Title,
		ThumbnailURL: bestThumbnail(v.Snippet.Thumbnails),
	}
	if v.ContentDetails != nil {
		d, err := ParseISODuration(v.ContentDetails.Duration)
		if err != nil {
			return models.Metadata{}, apperr.New(apperr.ProviderError, op, url, err)
		}
		md.Duration = d
	}
	return md, nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO 8601 duration such as PT1H2M3S to seconds.
func ParseISODuration(s string) (int, error) {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, errors.Errorf("invalid ISO 8601 duration %q", s)
	}
	total := 0
	for i, mult := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, errors.Wrapf(err, "invalid ISO 8601 duration %q", s)
		}
		total += n * mult
	}
	return total, nil
}
