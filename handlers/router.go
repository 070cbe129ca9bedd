// Package handlers provides the HTTP handlers of serve mode.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/savid/iptv-livegen/internal/metrics"
	"github.com/savid/iptv-livegen/pkg/data"
)

// NewRouter registers every serve-mode route. runs and recorder are optional;
// without runs there is no /runs route, without recorder no /metrics route and
// no request metrics.
func NewRouter(store *data.Store, runs RunLister, recorder *metrics.Recorder, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger, recorder))

	router.Handle("/live.m3u", NewPlaylistHandler(store, logger)).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/stats.json", NewStatsHandler(store, logger)).Methods(http.MethodGet, http.MethodHead)

	if runs != nil {
		router.Handle("/runs", NewRunsHandler(runs, logger)).Methods(http.MethodGet)
	}
	if recorder != nil {
		router.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return router
}
