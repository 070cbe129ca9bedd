package handlers

import (
	"net/http"

	"github.com/savid/iptv-livegen/pkg/data"
	"github.com/sirupsen/logrus"
)

// PlaylistHandler serves the latest generated playlist.
type PlaylistHandler struct {
	store  *data.Store
	logger *logrus.Logger
}

// NewPlaylistHandler creates a new playlist handler instance.
func NewPlaylistHandler(store *data.Store, logger *logrus.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		store:  store,
		logger: logger,
	}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	playlist, ok := h.store.GetPlaylist()
	if !ok {
		h.logger.Error("Playlist not available")
		http.Error(w, "Playlist not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Last-Modified", h.store.LastSync().UTC().Format(http.TimeFormat))
	_, _ = w.Write(playlist)
}

// StatsHandler serves the statistics of the latest run.
type StatsHandler struct {
	store  *data.Store
	logger *logrus.Logger
}

// NewStatsHandler creates a new stats handler instance.
func NewStatsHandler(store *data.Store, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		store:  store,
		logger: logger,
	}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	stats, ok := h.store.GetStats()
	if !ok {
		h.logger.Error("Stats not available")
		http.Error(w, "Stats not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(stats)
}
