package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	vh "jamesfarrell.me/youtube-transcript-search/internal/api/handlers"
	"jamesfarrell.me/youtube-transcript-search/internal/api/middleware"
)

func NewRouter(videoHandler *vh.VideoHandler) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	r.HandleFunc("/add_url", videoHandler.AddURL).Methods(http.MethodPost)
	r.HandleFunc("/fetch_video_info", videoHandler.FetchVideoInfo).Methods(http.MethodGet)
	r.HandleFunc("/search", videoHandler.Search).Methods(http.MethodPost)
	r.HandleFunc("/rm_url/{id:[0-9]+}", videoHandler.RemoveURL).Methods(http.MethodDelete)

	r.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
