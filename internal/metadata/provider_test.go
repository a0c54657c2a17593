package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

const testURL = "https://www.youtube.com/watch?v=abcdefghijk"

func playerServer(t *testing.T, status string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtubei/v1/player" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprintf(w, `{"playabilityStatus":{"status":%q,"reason":"This video is private"},
			"videoDetails":{"videoId":"abcdefghijk","title":"Rick Astley","lengthSeconds":"212",
			"thumbnail":{"thumbnails":[{"url":"https://i.ytimg.com/vi/abcdefghijk/sddefault.jpg","width":640}]}}}`, status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPlayerProvider(t *testing.T) {
	srv := playerServer(t, "OK")
	p := NewPlayerProvider(youtube.NewClient(srv.Client(), youtube.Config{BaseURL: srv.URL}))

	md, err := p.Lookup(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, models.Metadata{
		Title:        "Rick Astley",
		ThumbnailURL: "https://i.ytimg.com/vi/abcdefghijk/sddefault.jpg",
		Duration:     212,
	}, md)
}

func TestPlayerProviderErrors(t *testing.T) {
	srv := playerServer(t, "LOGIN_REQUIRED")
	p := NewPlayerProvider(youtube.NewClient(srv.Client(), youtube.Config{BaseURL: srv.URL}))

	_, err := p.Lookup(context.Background(), testURL)
	assert.Equal(t, apperr.VideoUnavailable, apperr.KindOf(err))
	assert.ErrorContains(t, err, "This video is private")

	_, err = p.Lookup(context.Background(), "https://example.com")
	assert.Equal(t, apperr.InvalidURL, apperr.KindOf(err))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()
	p = NewPlayerProvider(youtube.NewClient(down.Client(), youtube.Config{BaseURL: down.URL}))
	_, err = p.Lookup(context.Background(), testURL)
	assert.Equal(t, apperr.ProviderError, apperr.KindOf(err))
}

func apiServer(t *testing.T, body string, status int) *APIProvider {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
		assert.Equal(t, "abcdefghijk", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p, err := NewAPIProvider(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return p
}

func TestAPIProvider(t *testing.T) {
	p := apiServer(t, `{"items":[{"id":"abcdefghijk",
		"snippet":{"title":"Never Gonna Give You Up","thumbnails":{
			"default":{"url":"https://i.ytimg.com/vi/abcdefghijk/default.jpg","width":120},
			"high":{"url":"https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg","width":480}}},
		"contentDetails":{"duration":"PT3M33S"}}]}`, http.StatusOK)

	md, err := p.Lookup(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, models.Metadata{
		Title:        "Never Gonna Give You Up",
		ThumbnailURL: "https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg",
		Duration:     213,
	}, md)
}

func TestAPIProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		kind   apperr.Kind
	}{
		{"no items", `{"items":[]}`, http.StatusOK, apperr.VideoUnavailable},
		{"not found", `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound, apperr.VideoUnavailable},
		{"quota", `{"error":{"code":403,"message":"quotaExceeded"}}`, http.StatusForbidden, apperr.ProviderError},
		{"bad duration", `{"items":[{"snippet":{"title":"x"},"contentDetails":{"duration":"3 minutes"}}]}`, http.StatusOK, apperr.ProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := apiServer(t, tt.body, tt.status).Lookup(context.Background(), testURL)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestNewAPIProviderNeedsKey(t *testing.T) {
	_, err := NewAPIProvider(context.Background(), "")
	assert.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT3M33S", 213, false},
		{"PT1H", 3600, false},
		{"PT1H2M3S", 3723, false},
		{"P1DT1S", 86401, false},
		{"PT45S", 45, false},
		{"P0D", 0, false},
		{"", 0, true},
		{"P", 0, true},
		{"PT", 0, true},
		{"3:33", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISODuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func fakeYtdlp(t *testing.T, script string) string {
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestYtdlpProvider(t *testing.T) {
	path := fakeYtdlp(t, `echo '{"id":"abcdefghijk","title":"Me at the zoo","duration":19.0,"thumbnail":"https://i.ytimg.com/vi/abcdefghijk/maxresdefault.jpg"}'`)

	md, err := NewYtdlpProvider(path).Lookup(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, models.Metadata{
		Title:        "Me at the zoo",
		ThumbnailURL: "https://i.ytimg.com/vi/abcdefghijk/maxresdefault.jpg",
		Duration:     19,
	}, md)
}

func TestYtdlpProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		kind   apperr.Kind
	}{
		{"unavailable", `echo "ERROR: [youtube] abcdefghijk: Video unavailable" >&2; exit 1`, apperr.VideoUnavailable},
		{"private", `echo "ERROR: [youtube] abcdefghijk: Private video. Sign in if you've been granted access" >&2; exit 1`, apperr.VideoUnavailable},
		{"unsupported", `echo "ERROR: Unsupported URL: https://example.com" >&2; exit 1`, apperr.InvalidURL},
		{"network", `echo "ERROR: Unable to download webpage" >&2; exit 1`, apperr.ProviderError},
		{"garbage output", `echo "not json"`, apperr.ProviderError},
		{"no title", `echo '{"id":"abcdefghijk"}'`, apperr.ProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYtdlpProvider(fakeYtdlp(t, tt.script)).Lookup(context.Background(), testURL)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	_, err := NewYtdlpProvider(filepath.Join(t.TempDir(), "missing")).Lookup(context.Background(), testURL)
	assert.Equal(t, apperr.ProviderError, apperr.KindOf(err))
}

func TestNew(t *testing.T) {
	yt := youtube.NewClient(nil, youtube.Config{})

	p, err := New(context.Background(), Options{YouTube: yt})
	require.NoError(t, err)
	assert.IsType(t, &PlayerProvider{}, p)

	p, err = New(context.Background(), Options{Kind: KindYtdlp})
	require.NoError(t, err)
	assert.IsType(t, &YtdlpProvider{}, p)

	p, err = New(context.Background(), Options{Kind: KindAPI, APIKey: "key"})
	require.NoError(t, err)
	assert.IsType(t, &APIProvider{}, p)

	_, err = New(context.Background(), Options{Kind: KindAPI})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Kind: "scraper"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Kind: KindPlayer})
	assert.Error(t, err)
}
