// Package m3u provides parsing and rendering functionality for M3U playlist files.
package m3u

import (
	"bufio"
	"regexp"
	"strings"
)

const (
	// HeaderMarker opens every playlist document.
	HeaderMarker = "#EXTM3U"
	// InfoMarker starts a channel info line.
	InfoMarker = "#EXTINF"

	maxLineSize = 1 << 20 // 1 MiB per line
)

var attributeRegex = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

// Entry represents a single channel record extracted from a playlist.
type Entry struct {
	Name     string
	URL      string
	Logo     string
	Original string
}

// Parse extracts channel entries from raw playlist text.
//
// A channel is an info line followed immediately by a line starting with an
// HTTP(S) scheme. An info line not followed by such a line is discarded and the
// following line is examined on its own. Malformed or truncated input yields
// the entries found so far; Parse never fails.
func Parse(data string) []Entry {
	if data == "" {
		return nil
	}

	lines := splitLines(data)
	var entries []Entry

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, InfoMarker) {
			continue
		}

		if i+1 >= len(lines) {
			break
		}

		url := strings.TrimSpace(lines[i+1])
		if !IsStreamURL(url) {
			continue
		}

		entries = append(entries, Entry{
			Name:     displayName(line),
			URL:      url,
			Logo:     extractAttribute(line, "tvg-logo"),
			Original: line,
		})
		i++
	}

	return entries
}

// IsStreamURL reports whether s starts with an http:// or https:// scheme.
func IsStreamURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func splitLines(data string) []string {
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(nil, maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	// A line over maxLineSize ends the scan; what was read so far is still usable.
	return lines
}

func displayName(line string) string {
	idx := strings.LastIndex(line, ",")
	if idx < 0 {
		return line
	}
	return strings.TrimSpace(line[idx+1:])
}

func extractAttribute(line, attr string) string {
	for _, m := range attributeRegex.FindAllStringSubmatch(line, -1) {
		if strings.EqualFold(m[1], attr) {
			return m[2]
		}
	}
	return ""
}
