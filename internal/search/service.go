// Package search finds the moments a word is spoken across every registered
// video.
package search

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

type VideoLister interface {
	List(ctx context.Context) ([]models.Video, error)
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]models.Segment, error)
}

type Service struct {
	videos      VideoLister
	transcripts TranscriptFetcher
}

func NewService(videos VideoLister, transcripts TranscriptFetcher) *Service {
	return &Service{videos: videos, transcripts: transcripts}
}

// Search scans the transcript of every registered video, one after another,
// and returns the videos where term was found. A video whose URL cannot be
// parsed or whose transcript cannot be fetched is logged and left out.
func (s *Service) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.New(apperr.InvalidInput, "search", "", errors.New("Please Provide me the search word"))
	}

	videos, err := s.videos.List(ctx)
	if err != nil {
		return nil, err
	}

	m := NewMatcher(term)
	results := []models.SearchResult{}
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "search aborted")
		}
		l := log.WithFields(log.Fields{"id": v.ID, "url": v.URL})

		videoID, ok := models.ExtractVideoID(v.URL)
		if !ok {
			l.Warn("invalid YouTube URL, skipping")
			continue
		}

		segments, err := s.transcripts.Fetch(ctx, videoID)
		if err != nil {
			l.WithError(err).WithField("kind", apperr.KindOf(err)).Error("error processing video")
			continue
		}

		timestamps := m.Timestamps(segments)
		if len(timestamps) == 0 {
			continue
		}
		results = append(results, models.SearchResult{Video: v, TimeStamps: timestamps})
		l.WithField("matches", len(timestamps)).Info("found timestamps for video")
	}

	if len(results) == 0 {
		log.WithField("term", term).Info("no results found for the search term")
	} else {
		log.WithField("term", term).Infof("search results returned: %d videos found", len(results))
	}
	return results, nil
}
