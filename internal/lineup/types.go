// Package lineup turns fetched playlists into one categorized, schedule-aware playlist.
package lineup

import (
	"github.com/savid/iptv-livegen/pkg/m3u"
)

// Classified is a unique channel that matched a category.
type Classified struct {
	m3u.Entry
	Category string
}

// Enriched is a classified channel with its resolved group and display name.
type Enriched struct {
	Classified
	// Group is the static category, the shared fallback group or a dated match group.
	Group string
	// Dynamic marks Group as a dated match group.
	Dynamic   bool
	FinalName string
	LiveToday bool
}

// SourceStat counts the entries extracted from one source.
type SourceStat struct {
	URL     string `json:"url"`
	Entries int    `json:"entries"`
}

// Stats summarizes one generation run.
type Stats struct {
	Fetched     int          `json:"fetched"`
	Unique      int          `json:"unique"`
	Matched     int          `json:"matched"`
	Alive       *int         `json:"alive,omitempty"`
	LiveToday   int          `json:"liveToday"`
	Groups      int          `json:"groups"`
	Sources     []SourceStat `json:"sources,omitempty"`
	GeneratedAt string       `json:"generatedAt"`
}

// Result is the output of one pipeline run.
type Result struct {
	Playlist []byte
	Stats    Stats
	Channels []Enriched
	Groups   []m3u.Group
}
