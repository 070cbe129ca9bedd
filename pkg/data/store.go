package data

import (
	"sync"
	"time"
)

// Store provides thread-safe in-memory storage for the latest generated playlist.
type Store struct {
	mu       sync.RWMutex
	playlist *PlaylistData
	lastSync time.Time
}

// PlaylistData contains a rendered playlist and its encoded statistics.
type PlaylistData struct {
	Playlist  []byte
	Stats     []byte
	UpdatedAt time.Time
}

// NewStore creates a new empty data store.
func NewStore() *Store {
	return &Store{}
}

// SetPlaylist replaces the stored playlist and statistics.
func (s *Store) SetPlaylist(playlist, stats []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.playlist = &PlaylistData{
		Playlist:  playlist,
		Stats:     stats,
		UpdatedAt: now,
	}
	s.lastSync = now
}

// GetPlaylist retrieves the playlist. Returns false if no data is available.
func (s *Store) GetPlaylist() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.playlist == nil {
		return nil, false
	}

	return s.playlist.Playlist, true
}

// GetStats retrieves the encoded statistics. Returns false if no data is available.
func (s *Store) GetStats() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.playlist == nil {
		return nil, false
	}

	return s.playlist.Stats, true
}

// HasData returns true once a playlist has been stored.
func (s *Store) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.playlist != nil
}

// LastSync returns the time of the last successful generation.
func (s *Store) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSync
}
