package models

import (
	"fmt"
	"regexp"
	"strings"
)

// RegisteredURL is a row of the urls table.
type RegisteredURL struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Video is a row of the video_info table. It is owned by the RegisteredURL
// with the same URL and is deleted together with it.
type Video struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
	URLID        int64  `json:"-"`
}

// Metadata is what a metadata provider returns for a canonical URL.
type Metadata struct {
	Title        string
	ThumbnailURL string
	Duration     int
}

// Segment is one caption cue. Start is in seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}

type AddURLRequest struct {
	URL string `json:"url"`
}

type SearchRequest struct {
	SearchTerm string `json:"search_term"`
}

// SearchResult is a Video with the whole seconds at which the term is spoken.
type SearchResult struct {
	Video
	TimeStamps []int `json:"time_stamps"`
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Response any `json:"response"`
}

var videoIDRe = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID returns the first 11 character id that follows "v=" or "/".
func ExtractVideoID(url string) (string, bool) {
	m := videoIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CanonicalURL rebuilds url as a watch or shorts URL on www.youtube.com.
func CanonicalURL(url string) (string, bool) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return "", false
	}
	if strings.Contains(url, "shorts") {
		return fmt.Sprintf("https://www.youtube.com/shorts/%s", id), true
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id), true
}
