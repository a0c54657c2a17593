package transcription

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

type json3 struct {
	Events []struct {
		TStartMs int64 `json:"tStartMs"`
		Segs     []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 parses the timedtext json3 format. Each event with text becomes
// one segment; window and line break events are skipped.
func ParseJSON3(data []byte) ([]models.Segment, error) {
	var doc json3
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode json3 captions")
	}

	segments := []models.Segment{}
	for _, ev := range doc.Events {
		var sb strings.Builder
		for _, s := range ev.Segs {
			sb.WriteString(s.UTF8)
		}
		text := strings.Join(strings.Fields(sb.String()), " ")
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:  text,
			Start: float64(ev.TStartMs) / 1000,
		})
	}
	return segments, nil
}
