package lineup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutputs persists the playlist and, when statsPath is set, the stats record.
func WriteOutputs(res *Result, playlistPath, statsPath string) error {
	if err := writeFileAtomic(playlistPath, res.Playlist); err != nil {
		return fmt.Errorf("failed to write playlist: %w", err)
	}

	if statsPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(res.Stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := writeFileAtomic(statsPath, data); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}

	return nil
}

// writeFileAtomic replaces path so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
