package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/db"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

type mockProvider struct {
	md    models.Metadata
	err   error
	calls []string
}

func (m *mockProvider) Lookup(_ context.Context, url string) (models.Metadata, error) {
	m.calls = append(m.calls, url)
	return m.md, m.err
}

func newTestRepo(t *testing.T) (*VideoRepository, *db.DB) {
	t.Helper()
	d, err := db.NewConnection(db.Config{URL: filepath.Join(t.TempDir(), "registry.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return NewVideoRepository(d), d
}

func count(t *testing.T, d *db.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	p := &mockProvider{md: models.Metadata{Title: "Intro", ThumbnailURL: "https://i.ytimg.com/vi/abcdefghijk/hq.jpg", Duration: 125}}

	v, err := repo.Register(ctx, "https://youtu.be/abcdefghijk", p)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", v.URL)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abcdefghijk"}, p.calls)

	videos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, v.ID, videos[0].ID)
	assert.Equal(t, "Intro", videos[0].Title)
	assert.Equal(t, 125, videos[0].Duration)
	assert.Equal(t, v.URLID, videos[0].URLID)

	urls, err := repo.ListURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abcdefghijk"}, urls)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, d := newTestRepo(t)
	p := &mockProvider{md: models.Metadata{Title: "Intro"}}

	_, err := repo.Register(ctx, "https://www.youtube.com/watch?v=abcdefghijk", p)
	require.NoError(t, err)

	_, err = repo.Register(ctx, "https://www.youtube.com/watch?v=abcdefghijk&t=10", p)
	require.Error(t, err)
	assert.Equal(t, apperr.DuplicateURL, apperr.KindOf(err))
	// the second attempt never reaches the provider
	assert.Len(t, p.calls, 1)

	assert.Equal(t, 1, count(t, d, "urls"))
	assert.Equal(t, 1, count(t, d, "video_info"))
}

func TestInsertDuplicateMapsConstraint(t *testing.T) {
	ctx := context.Background()
	repo, d := newTestRepo(t)

	_, err := repo.Insert(ctx, "https://www.youtube.com/watch?v=abcdefghijk", models.Metadata{Title: "a"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "https://www.youtube.com/watch?v=abcdefghijk", models.Metadata{Title: "b"})
	require.Error(t, err)
	assert.Equal(t, apperr.DuplicateURL, apperr.KindOf(err))
	assert.Equal(t, 1, count(t, d, "urls"))
}

func TestRegisterInvalidURL(t *testing.T) {
	repo, d := newTestRepo(t)
	p := &mockProvider{}

	_, err := repo.Register(context.Background(), "https://www.youtube.com/watch?v=short", p)
	assert.Equal(t, apperr.InvalidURL, apperr.KindOf(err))
	assert.Empty(t, p.calls)
	assert.Equal(t, 0, count(t, d, "urls"))
}

func TestRegisterLookupFailureStoresNothing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{
			name: "unavailable",
			err:  apperr.New(apperr.VideoUnavailable, "lookup", "u", errors.New("private video")),
			want: apperr.VideoUnavailable,
		},
		{
			name: "unclassified becomes provider error",
			err:  errors.New("connection reset"),
			want: apperr.ProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, d := newTestRepo(t)
			_, err := repo.Register(context.Background(), "https://www.youtube.com/shorts/abcdefghijk", &mockProvider{err: tt.err})
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			assert.Equal(t, 0, count(t, d, "urls"))
			assert.Equal(t, 0, count(t, d, "video_info"))
		})
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo, d := newTestRepo(t)

	v, err := repo.Register(ctx, "https://www.youtube.com/watch?v=abcdefghijk", &mockProvider{md: models.Metadata{Title: "x"}})
	require.NoError(t, err)
	_, err = repo.Register(ctx, "https://www.youtube.com/watch?v=bbbbbbbbbbb", &mockProvider{md: models.Metadata{Title: "y"}})
	require.NoError(t, err)

	assert.Equal(t, v.URLID, v.ID)
	require.NoError(t, repo.Remove(ctx, v.ID))
	assert.Equal(t, 1, count(t, d, "urls"))
	assert.Equal(t, 1, count(t, d, "video_info"))

	videos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", videos[0].URL)
}

func TestRemoveNotFound(t *testing.T) {
	ctx := context.Background()
	repo, d := newTestRepo(t)
	_, err := repo.Register(ctx, "https://www.youtube.com/watch?v=abcdefghijk", &mockProvider{})
	require.NoError(t, err)

	err = repo.Remove(ctx, 999)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, 1, count(t, d, "urls"))
	assert.Equal(t, 1, count(t, d, "video_info"))
}

func TestListEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	videos, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}
