package data

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnexpectedStatus is returned when the HTTP response has an unexpected status code.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrNotPlaylist is returned when a response is clearly not a playlist.
	ErrNotPlaylist = errors.New("response is not a playlist")
)

// maxPlaylistSize bounds a decoded source body.
const maxPlaylistSize = 32 << 20

// Fetcher downloads playlist sources.
type Fetcher struct {
	client *http.Client
	logger *logrus.Logger
}

// NewFetcher creates a new fetcher instance. The client's timeout applies to
// each source.
func NewFetcher(client *http.Client, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// FetchPlaylist returns the body of a playlist source, or "" when the source is
// unreachable, answers with a non-2xx status or serves something that is not a
// playlist. Failures are logged and never returned.
func (f *Fetcher) FetchPlaylist(ctx context.Context, url string) string {
	body, err := f.fetch(ctx, url)
	if err != nil {
		f.logger.WithError(err).WithField("url", url).Warn("Failed to fetch source")
		return ""
	}

	f.logger.WithFields(logrus.Fields{
		"url":   url,
		"bytes": len(body),
	}).Debug("Fetched source")

	return string(body)
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist body: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if suspiciousContentType(contentType) && !hasPlaylistMarker(body) {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaylist, contentType)
	}

	return body, nil
}

// decodeBody reads a response body, undoing gzip or brotli content encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(io.LimitReader(reader, maxPlaylistSize))
}

// suspiciousContentType reports content types that usually mean a landing page
// or a media stream instead of a playlist.
func suspiciousContentType(ct string) bool {
	switch {
	case strings.Contains(ct, "mpegurl"):
		return false
	case strings.HasPrefix(ct, "text/html"),
		strings.HasPrefix(ct, "image/"),
		strings.HasPrefix(ct, "video/"),
		strings.HasPrefix(ct, "audio/"):
		return true
	}
	return false
}

func hasPlaylistMarker(body []byte) bool {
	return bytes.Contains(body, []byte("#EXTM3U")) || bytes.Contains(body, []byte("#EXTINF"))
}
