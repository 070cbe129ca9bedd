package lineup

import (
	"strconv"
	"strings"
)

// LiveTag is appended to channels showing a match on the reference day.
const LiveTag = " [LIVE]"

// NameRegistry numbers repeated display names across a whole run.
type NameRegistry struct {
	counts  map[string]int
	claimed map[string]struct{}
}

// NewNameRegistry creates an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		counts:  make(map[string]int),
		claimed: make(map[string]struct{}),
	}
}

// BaseName splits a final name into the part before the match detail and the
// detail itself.
func BaseName(finalName string) (base, detail string) {
	if idx := strings.Index(finalName, SuffixSeparator); idx >= 0 {
		return finalName[:idx], finalName[idx:]
	}
	return finalName, ""
}

// Assign numbers the channel's name and then tags it when live today. The first
// occurrence of a base name is unchanged, the next ones get " -1", " -2", ...
// inserted right after the base name. A candidate already produced earlier in
// the run, with or without the live tag (for instance a source channel literally
// named "ESPN -1"), is skipped.
func (r *NameRegistry) Assign(ch Enriched) Enriched {
	base, detail := BaseName(ch.FinalName)

	tag := ""
	if ch.LiveToday {
		tag = LiveTag
	}

	count := r.counts[base]
	name := numbered(base, count) + detail
	for r.isClaimed(name) || r.isClaimed(name+tag) {
		count++
		name = numbered(base, count) + detail
	}
	r.counts[base] = count + 1
	r.claimed[name] = struct{}{}
	r.claimed[name+tag] = struct{}{}

	ch.FinalName = name + tag
	return ch
}

func (r *NameRegistry) isClaimed(name string) bool {
	_, ok := r.claimed[name]
	return ok
}

func numbered(base string, count int) string {
	if count == 0 {
		return base
	}
	return base + " -" + strconv.Itoa(count)
}

// Disambiguate numbers repeated names in order and returns the rewritten copies.
func Disambiguate(channels []Enriched) []Enriched {
	registry := NewNameRegistry()
	out := make([]Enriched, 0, len(channels))
	for _, ch := range channels {
		out = append(out, registry.Assign(ch))
	}
	return out
}
