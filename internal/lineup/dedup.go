package lineup

import "github.com/savid/iptv-livegen/pkg/m3u"

// Deduplicator remembers the stream URLs seen during a run.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Keep reports whether the entry's URL is new and records it. URLs are compared
// byte for byte.
func (d *Deduplicator) Keep(e m3u.Entry) bool {
	if _, ok := d.seen[e.URL]; ok {
		return false
	}
	d.seen[e.URL] = struct{}{}
	return true
}

// Dedupe returns the entries whose stream URL has not appeared earlier, in order.
func Dedupe(entries []m3u.Entry) []m3u.Entry {
	d := NewDeduplicator()
	unique := make([]m3u.Entry, 0, len(entries))
	for _, e := range entries {
		if d.Keep(e) {
			unique = append(unique, e)
		}
	}
	return unique
}
