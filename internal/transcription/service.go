// Package transcription downloads and parses the caption track of a YouTube
// video.
package transcription

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/youtube"
)

type Format string

const (
	FormatJSON3 Format = "json3"
	FormatVTT   Format = "vtt"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON3, "":
		return FormatJSON3, nil
	case FormatVTT:
		return FormatVTT, nil
	}
	return "", errors.Errorf("unknown caption format %q", s)
}

type Service struct {
	yt        *youtube.Client
	languages []string
	format    Format
}

func NewService(yt *youtube.Client, languages []string, format Format) *Service {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	if format == "" {
		format = FormatJSON3
	}
	return &Service{yt: yt, languages: languages, format: format}
}

// Fetch returns the timed transcript of a video in the first preferred
// language available, translating an auto-generated track when no
// preferred track exists.
func (s *Service) Fetch(ctx context.Context, videoID string) ([]models.Segment, error) {
	const op = "fetch transcript"
	l := log.WithField("video_id", videoID)

	pr, err := s.yt.Player(ctx, videoID)
	if err != nil {
		return nil, apperr.New(apperr.ProviderError, op, videoID, err)
	}
	if err := pr.Playable(); err != nil {
		return nil, apperr.New(apperr.VideoUnavailable, op, videoID, err)
	}

	tracks := pr.CaptionTracks()
	if len(tracks) == 0 {
		return nil, apperr.New(apperr.TranscriptUnavailable, op, videoID, errors.New("video has no captions"))
	}

	track, tlang, ok := SelectTrack(tracks, s.languages)
	if !ok {
		return nil, apperr.New(apperr.TranscriptUnavailable, op, videoID,
			errors.Errorf("no caption track in %s", strings.Join(s.languages, ", ")))
	}
	l.WithFields(log.Fields{
		"language":  track.LanguageCode,
		"generated": track.IsGenerated(),
		"translate": tlang,
	}).Debug("selected caption track")

	u, err := TrackURL(track, s.format, tlang)
	if err != nil {
		return nil, apperr.New(apperr.ProviderError, op, videoID, err)
	}
	data, err := s.yt.Get(ctx, u)
	if err != nil {
		return nil, apperr.New(apperr.ProviderError, op, videoID, errors.Wrap(err, "download captions"))
	}

	segments, err := s.parse(data)
	if err != nil {
		return nil, apperr.New(apperr.ProviderError, op, videoID, err)
	}
	if len(segments) == 0 {
		return nil, apperr.New(apperr.TranscriptUnavailable, op, videoID, errors.New("caption track is empty"))
	}

	l.WithField("segments", len(segments)).Debug("fetched transcript")
	return segments, nil
}

func (s *Service) parse(data []byte) ([]models.Segment, error) {
	if s.format == FormatVTT {
		cues, err := ParseVTT(string(data))
		if err != nil {
			return nil, err
		}
		return Segments(cues), nil
	}
	return ParseJSON3(data)
}

// SelectTrack picks a caption track for the preferred languages. Manually
// created tracks win over generated ones. When no track is in a preferred
// language, a translatable track is returned together with the language to
// translate it to, preferring generated tracks.
func SelectTrack(tracks []youtube.CaptionTrack, languages []string) (youtube.CaptionTrack, string, bool) {
	for _, generated := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if t.IsGenerated() == generated && languageMatches(t.LanguageCode, lang) {
					return t, "", true
				}
			}
		}
	}

	if len(languages) == 0 {
		return youtube.CaptionTrack{}, "", false
	}
	for _, generated := range []bool{true, false} {
		for _, t := range tracks {
			if t.IsTranslatable && t.IsGenerated() == generated {
				return t, languages[0], true
			}
		}
	}
	return youtube.CaptionTrack{}, "", false
}

func languageMatches(code, lang string) bool {
	code, lang = strings.ToLower(code), strings.ToLower(lang)
	return code == lang || strings.HasPrefix(code, lang+"-")
}

// TrackURL sets the caption format and, when tlang is not empty, the
// translation language on a track's base URL.
func TrackURL(track youtube.CaptionTrack, format Format, tlang string) (string, error) {
	u, err := url.Parse(track.BaseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse caption track url")
	}
	q := u.Query()
	q.Set("fmt", string(format))
	if tlang != "" {
		q.Set("tlang", tlang)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
