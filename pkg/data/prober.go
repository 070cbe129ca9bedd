package data

import (
	"context"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Prober checks whether stream URLs answer. Results are cached per URL for the
// lifetime of the prober, so one prober should be used per generation run.
type Prober struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger

	mu    sync.Mutex
	cache map[string]bool
}

// NewProber creates a prober on a copy of client that never follows redirects.
// A nil limiter disables pacing.
func NewProber(client *http.Client, limiter *rate.Limiter, logger *logrus.Logger) *Prober {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Prober{
		client:  &c,
		limiter: limiter,
		logger:  logger,
		cache:   make(map[string]bool),
	}
}

// Alive reports whether streamURL answers a HEAD request with a 2xx or 3xx
// status. Servers refusing HEAD are retried once with GET.
func (p *Prober) Alive(ctx context.Context, streamURL string) bool {
	p.mu.Lock()
	alive, ok := p.cache[streamURL]
	p.mu.Unlock()
	if ok {
		return alive
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return false
		}
	}

	status, err := p.status(ctx, http.MethodHead, streamURL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = p.status(ctx, http.MethodGet, streamURL)
	}

	alive = err == nil && status >= 200 && status < 400
	if err != nil {
		p.logger.WithError(err).WithField("url", streamURL).Debug("Stream probe failed")
	}

	p.mu.Lock()
	p.cache[streamURL] = alive
	p.mu.Unlock()

	return alive
}

func (p *Prober) status(ctx context.Context, method, streamURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, streamURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}
