package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/savid/iptv-livegen/config"
)

func TestRunConfigurationError(t *testing.T) {
	t.Setenv(config.EnvPrefix+"SOURCES", "")

	err := run(nil)
	if !errors.Is(err, config.ErrSourcesRequired) {
		t.Fatalf("Expected %v, got %v", config.ErrSourcesRequired, err)
	}
}

func TestRunOneShot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testSource))
	}))
	defer server.Close()

	dir := t.TempDir()
	categories := filepath.Join(dir, "channel-map.json")
	if err := os.WriteFile(categories, []byte(`{"SPORTS": ["bein"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "live.m3u")

	err := run([]string{
		"-source", server.URL + "/live.m3u",
		"-categories", categories,
		"-output", output,
		"-stats", "",
		"-schedule-url", "",
		"-history-driver", "sqlite",
		"-history-dsn", filepath.Join(dir, "history.db"),
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	playlist, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Playlist not written: %v", err)
	}
	if !strings.Contains(string(playlist), "beIN Sports 1") {
		t.Errorf("Expected the matched channel in the playlist, got %q", playlist)
	}
}

func TestRunHistoryError(t *testing.T) {
	dir := t.TempDir()

	err := run([]string{
		"-source", "http://127.0.0.1:1/live.m3u",
		"-output", filepath.Join(dir, "live.m3u"),
		"-history-driver", "sqlite",
		"-history-dsn", filepath.Join(dir, "missing", "history.db"),
	})
	if err == nil || !strings.Contains(err.Error(), "run history") {
		t.Fatalf("Expected a run history error, got %v", err)
	}
}
