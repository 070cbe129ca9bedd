package data

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/sirupsen/logrus"
)

const samplePlaylist = "#EXTM3U\n#EXTINF:-1,Channel\nhttp://example.com/stream\n"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func brotlied(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchPlaylist(t *testing.T) {
	gz := gzipped(t, samplePlaylist)
	br := brotlied(t, samplePlaylist)

	mux := http.NewServeMux()
	mux.HandleFunc("/plain.m3u", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(samplePlaylist))
	})
	mux.HandleFunc("/mpegurl", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte(samplePlaylist))
	})
	mux.HandleFunc("/gzip.m3u", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(gz)
	})
	mux.HandleFunc("/br.m3u", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip, br" {
			http.Error(w, "missing encoding", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(br)
	})
	mux.HandleFunc("/missing.m3u", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>Shortener landing page</body></html>"))
	})
	mux.HandleFunc("/html-playlist", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePlaylist))
	})
	mux.HandleFunc("/stream.ts", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp2t")
		_, _ = w.Write([]byte{0x47, 0x40, 0x00, 0x10})
	})
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewFetcher(&http.Client{Timeout: 5 * time.Second}, testLogger())

	tests := []struct {
		path     string
		expected string
	}{
		{path: "/plain.m3u", expected: samplePlaylist},
		{path: "/mpegurl", expected: samplePlaylist},
		{path: "/gzip.m3u", expected: samplePlaylist},
		{path: "/br.m3u", expected: samplePlaylist},
		{path: "/missing.m3u", expected: ""},
		{path: "/landing", expected: ""},
		{path: "/html-playlist", expected: samplePlaylist},
		{path: "/stream.ts", expected: ""},
		{path: "/logo.png", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := fetcher.FetchPlaylist(context.Background(), server.URL+tt.path)
			if got != tt.expected {
				t.Errorf("FetchPlaylist(%s) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestFetchPlaylistUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher(&http.Client{Timeout: time.Second}, testLogger())
	if got := fetcher.FetchPlaylist(context.Background(), url); got != "" {
		t.Errorf("Expected empty text for unreachable source, got %q", got)
	}
}

func TestFetchPlaylistTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(samplePlaylist))
	}))
	defer server.Close()

	fetcher := NewFetcher(&http.Client{Timeout: 50 * time.Millisecond}, testLogger())
	if got := fetcher.FetchPlaylist(context.Background(), server.URL); got != "" {
		t.Errorf("Expected empty text after timeout, got %q", got)
	}
}
