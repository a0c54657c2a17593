package registry

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/db"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

const (
	existsSQL     = `SELECT COUNT(*) FROM urls WHERE url = ?`
	insertURLSQL  = `INSERT INTO urls (url) VALUES (?) RETURNING id`
	insertInfoSQL = `INSERT INTO video_info (id, url, title, thumbnail_url, duration, url_id)
		VALUES (?, ?, ?, ?, ?, ?)`
	listURLsSQL   = `SELECT url FROM urls ORDER BY id`
	listVideosSQL = `SELECT id, url, title, thumbnail_url, duration, url_id FROM video_info`
	deleteURLSQL  = `DELETE FROM urls WHERE id = ?`
)

// MetadataProvider looks up display metadata for a canonical URL.
type MetadataProvider interface {
	Lookup(ctx context.Context, url string) (models.Metadata, error)
}

type VideoRepository struct {
	db *db.DB
}

func NewVideoRepository(d *db.DB) *VideoRepository {
	return &VideoRepository{db: d}
}

// Register canonicalizes rawURL, fetches its metadata and stores the URL and
// the metadata together. Nothing is stored when any step fails.
func (r *VideoRepository) Register(ctx context.Context, rawURL string, provider MetadataProvider) (*models.Video, error) {
	canonical, ok := models.CanonicalURL(rawURL)
	if !ok {
		return nil, apperr.New(apperr.InvalidURL, "register", rawURL, nil)
	}

	exists, err := r.Exists(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.DuplicateURL, "register", canonical, nil)
	}

	md, err := provider.Lookup(ctx, canonical)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unknown {
			err = apperr.New(apperr.ProviderError, "lookup metadata", canonical, err)
		}
		return nil, err
	}

	return r.Insert(ctx, canonical, md)
}

func (r *VideoRepository) Exists(ctx context.Context, url string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(existsSQL), url).Scan(&n); err != nil {
		return false, errors.Wrap(err, "failed to check url")
	}
	return n > 0, nil
}

// Insert stores a urls row and its video_info row in one transaction.
func (r *VideoRepository) Insert(ctx context.Context, url string, md models.Metadata) (*models.Video, error) {
	video := &models.Video{
		URL:          url,
		Title:        md.Title,
		ThumbnailURL: md.ThumbnailURL,
		Duration:     md.Duration,
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, r.db.Rebind(insertURLSQL), url).Scan(&video.URLID); err != nil {
			return classifyInsert(err, url)
		}
		// video_info shares the urls id so the id listed to clients is the one they remove by
		video.ID = video.URLID
		_, err := tx.ExecContext(ctx, r.db.Rebind(insertInfoSQL),
			video.ID,
			url,
			md.Title,
			md.ThumbnailURL,
			md.Duration,
			video.URLID,
		)
		if err != nil {
			return classifyInsert(err, url)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"id":    video.ID,
		"url":   url,
		"title": video.Title,
	}).Info("added video info")
	return video, nil
}

func (r *VideoRepository) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listURLsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list urls")
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, errors.Wrap(err, "failed to scan url")
		}
		urls = append(urls, u)
	}
	return urls, errors.Wrap(rows.Err(), "failed to iterate urls")
}

// List returns every video_info row in storage order.
func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	rows, err := r.db.QueryContext(ctx, listVideosSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list videos")
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var (
			v         models.Video
			title     sql.NullString
			thumbnail sql.NullString
			duration  sql.NullInt64
			urlID     sql.NullInt64
		)
		if err := rows.Scan(&v.ID, &v.URL, &title, &thumbnail, &duration, &urlID); err != nil {
			return nil, errors.Wrap(err, "failed to scan video")
		}
		v.Title = title.String
		v.ThumbnailURL = thumbnail.String
		v.Duration = int(duration.Int64)
		v.URLID = urlID.Int64
		videos = append(videos, v)
	}
	return videos, errors.Wrap(rows.Err(), "failed to iterate videos")
}

// Remove deletes the urls row with the given id. Its video_info row goes with it.
func (r *VideoRepository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(deleteURLSQL), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete url")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "remove", strconv.FormatInt(id, 10), nil)
	}
	log.WithField("id", id).Info("removed video successfully")
	return nil
}

func classifyInsert(err error, url string) error {
	if isUniqueViolation(err) {
		return apperr.New(apperr.DuplicateURL, "register", url, err)
	}
	return errors.Wrap(err, "failed to insert video")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}
