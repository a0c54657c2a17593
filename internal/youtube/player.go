package youtube

import (
	"fmt"
	"strconv"
)

// PlayerResponse is the subset of the Innertube player response this service
// reads.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	Captions          *Captions         `json:"captions,omitempty"`
}

type PlayabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type VideoDetails struct {
	VideoID       string `json:"videoId"`
	Title         string `json:"title"`
	LengthSeconds string `json:"lengthSeconds"`
	Thumbnail     struct {
		Thumbnails []Thumbnail `json:"thumbnails"`
	} `json:"thumbnail"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Captions struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []CaptionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

// CaptionTrack is one caption language of a video. Kind is "asr" for
// automatically generated tracks.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"`
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
	IsTranslatable bool `json:"isTranslatable"`
}

func (t CaptionTrack) IsGenerated() bool {
	return t.Kind == "asr"
}

// UnplayableError is returned for videos YouTube refuses to play: removed,
// private, region or age restricted.
type UnplayableError struct {
	Status string
	Reason string
}

func (e *UnplayableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("video is unplayable (%s)", e.Status)
	}
	return fmt.Sprintf("video is unplayable (%s): %s", e.Status, e.Reason)
}

// Playable reports why the video cannot be watched, or nil.
func (p *PlayerResponse) Playable() error {
	switch p.PlayabilityStatus.Status {
	case "OK", "LIVE_STREAM_OFFLINE":
		return nil
	}
	return &UnplayableError{Status: p.PlayabilityStatus.Status, Reason: p.PlayabilityStatus.Reason}
}

func (p *PlayerResponse) CaptionTracks() []CaptionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// Duration is the video length in seconds, 0 when unknown.
func (p *PlayerResponse) Duration() int {
	n, err := strconv.Atoi(p.VideoDetails.LengthSeconds)
	if err != nil {
		return 0
	}
	return n
}

// ThumbnailURL picks the widest thumbnail, falling back to the static
// hqdefault image.
func (p *PlayerResponse) ThumbnailURL() string {
	best := Thumbnail{}
	for _, t := range p.VideoDetails.Thumbnail.Thumbnails {
		if best.URL == "" || t.Width > best.Width {
			best = t
		}
	}
	if best.URL != "" {
		return best.URL
	}
	if p.VideoDetails.VideoID == "" {
		return ""
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", p.VideoDetails.VideoID)
}
