// Package youtube talks to the Innertube player endpoint, the same API the
// YouTube web page uses to learn a video's details and caption tracks.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL       = "https://www.youtube.com"
	DefaultClientName    = "WEB"
	DefaultClientVersion = "2.20240726.00.00"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodySize = 16 << 20
)

// StatusError is returned for any non-200 answer from YouTube.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("youtube returned status %d for %s", e.StatusCode, e.URL)
}

type Config struct {
	BaseURL       string
	ClientName    string
	ClientVersion string
	Language      string
	Timeout       time.Duration
}

type Client struct {
	cl  *http.Client
	cfg Config
}

func NewClient(cl *http.Client, cfg Config) *Client {
	if cl == nil {
		cl = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ClientName == "" {
		cfg.ClientName = DefaultClientName
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = DefaultClientVersion
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Client{cl: cl, cfg: cfg}
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
			HL            string `json:"hl"`
			GL            string `json:"gl"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

// Player fetches the player response for a video id.
func (c *Client) Player(ctx context.Context, videoID string) (*PlayerResponse, error) {
	var body playerRequest
	body.Context.Client.ClientName = c.cfg.ClientName
	body.Context.Client.ClientVersion = c.cfg.ClientVersion
	body.Context.Client.HL = c.cfg.Language
	body.Context.Client.GL = "US"
	body.VideoID = videoID

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal player request")
	}

	u := c.cfg.BaseURL + "/youtubei/v1/player?prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var pr PlayerResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, errors.Wrap(err, "decode player response")
	}
	return &pr, nil
}

// Get downloads an absolute URL, typically a caption track.
func (c *Client) Get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", c.cfg.Language)

	start := time.Now()
	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	log.WithFields(log.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("youtube request")

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	return data, nil
}
