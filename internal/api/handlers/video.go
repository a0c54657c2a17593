package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"jamesfarrell.me/youtube-transcript-search/internal/api/middleware"
	"jamesfarrell.me/youtube-transcript-search/internal/apperr"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/models"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/registry"
)

const maxBodySize = 1 << 20

type Registry interface {
	Register(ctx context.Context, url string, provider registry.MetadataProvider) (*models.Video, error)
	ListURLs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]models.Video, error)
	Remove(ctx context.Context, id int64) error
}

type Searcher interface {
	Search(ctx context.Context, term string) ([]models.SearchResult, error)
}

type VideoHandler struct {
	repo     Registry
	provider registry.MetadataProvider
	searcher Searcher
}

func NewVideoHandler(repo Registry, provider registry.MetadataProvider, searcher Searcher) *VideoHandler {
	return &VideoHandler{repo: repo, provider: provider, searcher: searcher}
}

// AddURL registers a video and answers with every registered URL.
func (h *VideoHandler) AddURL(w http.ResponseWriter, r *http.Request) {
	var req models.AddURLRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, r, apperr.New(apperr.InvalidInput, "add url", "", errors.New("Please Provide the URL")))
		return
	}

	if _, err := h.repo.Register(r.Context(), strings.TrimSpace(req.URL), h.provider); err != nil {
		writeError(w, r, err)
		return
	}

	urls, err := h.repo.ListURLs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

func (h *VideoHandler) FetchVideoInfo(w http.ResponseWriter, r *http.Request) {
	videos, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (h *VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	log.WithFields(log.Fields{
		"term":       req.SearchTerm,
		"request_id": middleware.RequestID(r.Context()),
	}).Info("search term received")

	results, err := h.searcher.Search(r.Context(), req.SearchTerm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *VideoHandler) RemoveURL(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		writeError(w, r, apperr.New(apperr.NotFound, "remove", raw, nil))
		return
	}
	if err != nil {
		writeError(w, r, apperr.New(apperr.InvalidInput, "remove", raw, errors.New("Invalid id")))
		return
	}

	if err := h.repo.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Removed video successfully")
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if err != nil {
		return apperr.New(apperr.InvalidInput, "decode request", "", errors.Wrap(err, "Invalid JSON body"))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.Response{Response: body}); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	l := log.WithError(err).WithFields(log.Fields{
		"kind":       kind,
		"path":       r.URL.Path,
		"request_id": middleware.RequestID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		l.Error("request failed")
	} else {
		l.Warn("request rejected")
	}

	writeJSON(w, status, apperr.Message(err))
}
