package lineup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	playlistPath := filepath.Join(dir, "out", "live.m3u")
	statsPath := filepath.Join(dir, "out", "stats.json")

	alive := 2
	res := &Result{
		Playlist: []byte("#EXTM3U\n"),
		Stats: Stats{
			Fetched:     3,
			Unique:      2,
			Matched:     2,
			Alive:       &alive,
			GeneratedAt: "2026-10-17T10:00:00.000Z",
		},
	}

	if err := WriteOutputs(res, playlistPath, statsPath); err != nil {
		t.Fatalf("WriteOutputs failed: %v", err)
	}

	playlist, err := os.ReadFile(playlistPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(playlist) != "#EXTM3U\n" {
		t.Errorf("Unexpected playlist %q", playlist)
	}

	data, err := os.ReadFile(statsPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Stats file is not JSON: %v", err)
	}
	for _, key := range []string{"fetched", "unique", "matched", "alive", "liveToday", "groups", "generatedAt"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Stats file missing %q", key)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(playlistPath))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestWriteOutputsWithoutStats(t *testing.T) {
	dir := t.TempDir()
	playlistPath := filepath.Join(dir, "live.m3u")

	if err := WriteOutputs(&Result{Playlist: []byte("#EXTM3U\n")}, playlistPath, ""); err != nil {
		t.Fatalf("WriteOutputs failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the playlist, got %d entries", len(entries))
	}
}
