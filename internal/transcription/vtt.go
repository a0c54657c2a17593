package transcription

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
)

// Cue is a single WebVTT caption block.
type Cue struct {
	Number int
	Start  time.Duration
	End    time.Duration
	Lines  []string
	Text   string
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// ParseVTT parses WebVTT content into cues. Inline tags such as the word
// timings YouTube adds to auto-generated tracks are stripped.
func ParseVTT(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	if !strings.HasPrefix(content, "WEBVTT") {
		return nil, errors.New("invalid VTT format: missing WEBVTT header")
	}

	cues := []Cue{}
	blocks := strings.Split(content, "\n\n")

	// the first block is the header and its metadata lines
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || lines[0] == "" {
			continue
		}

		// optional cue identifier
		if !strings.Contains(lines[0], "-->") {
			if strings.HasPrefix(lines[0], "NOTE") || strings.HasPrefix(lines[0], "STYLE") || strings.HasPrefix(lines[0], "REGION") {
				continue
			}
			lines = lines[1:]
			if len(lines) == 0 || !strings.Contains(lines[0], "-->") {
				continue
			}
		}

		timestamps := strings.SplitN(lines[0], "-->", 2)
		start, err := parseVTTTimestamp(strings.TrimSpace(timestamps[0]))
		if err != nil {
			return nil, errors.Wrap(err, "invalid start timestamp")
		}

		// cue settings follow the end timestamp
		endField := strings.Fields(timestamps[1])
		if len(endField) == 0 {
			return nil, errors.New("invalid end timestamp: empty")
		}
		end, err := parseVTTTimestamp(endField[0])
		if err != nil {
			return nil, errors.Wrap(err, "invalid end timestamp")
		}

		text := []string{}
		for _, l := range lines[1:] {
			l = strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(l, "")))
			if l != "" {
				text = append(text, l)
			}
		}
		if len(text) == 0 {
			continue
		}

		cues = append(cues, Cue{
			Number: len(cues) + 1,
			Start:  start,
			End:    end,
			Lines:  text,
			Text:   strings.Join(text, " "),
		})
	}

	return cues, nil
}

// parseVTTTimestamp accepts HH:MM:SS.mmm and the short MM:SS.mmm form.
func parseVTTTimestamp(timestamp string) (time.Duration, error) {
	if !strings.Contains(timestamp, ".") {
		return 0, errors.New("invalid timestamp format: missing milliseconds")
	}

	parts := strings.Split(timestamp, ":")
	var hours int
	switch len(parts) {
	case 3:
		if len(parts[0]) < 2 {
			return 0, errors.New("invalid timestamp format: expected HH:MM:SS.mmm")
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, errors.Wrap(err, "invalid hours")
		}
		hours = h
		parts = parts[1:]
	case 2:
	default:
		return 0, errors.New("invalid timestamp format: expected HH:MM:SS.mmm")
	}

	if len(parts[0]) != 2 {
		return 0, errors.New("invalid timestamp format: expected two digit minutes")
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.Wrap(err, "invalid minutes")
	}

	secondParts := strings.Split(parts[1], ".")
	if len(secondParts) != 2 || len(secondParts[0]) != 2 || len(secondParts[1]) != 3 {
		return 0, errors.New("invalid seconds format: expected SS.mmm")
	}

	seconds, err := strconv.Atoi(secondParts[0])
	if err != nil {
		return 0, errors.Wrap(err, "invalid seconds")
	}

	milliseconds, err := strconv.Atoi(secondParts[1])
	if err != nil {
		return 0, errors.Wrap(err, "invalid milliseconds")
	}

	if minutes > 59 || seconds > 59 {
		return 0, errors.New("invalid timestamp: minutes and seconds must be below 60")
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(milliseconds)*time.Millisecond, nil
}

// Segments converts cues to transcript segments. Auto-generated tracks roll
// captions, repeating the previous cue's last line on top of the new one; the
// repeat is dropped so each line is matched once.
func Segments(cues []Cue) []models.Segment {
	segments := []models.Segment{}
	prev := ""
	for _, c := range cues {
		lines := c.Lines
		if len(lines) > 0 && prev != "" && lines[0] == prev {
			lines = lines[1:]
		}
		if len(c.Lines) > 0 {
			prev = c.Lines[len(c.Lines)-1]
		}
		if len(lines) == 0 {
			continue
		}
		segments = append(segments, models.Segment{
			Text:  strings.Join(lines, " "),
			Start: c.Start.Seconds(),
		})
	}
	return segments
}
