// Package schedule fetches upcoming match schedules used to enrich football channels.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DateLayout is the date format of queries and event records.
const DateLayout = "2006-01-02"

var (
	// ErrUnexpectedStatus is returned when the schedule API answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Event is one scheduled match. All text fields except Title are lowercase.
type Event struct {
	Title     string
	HomeTeam  string
	AwayTeam  string
	League    string
	Time      string
	Date      string
	DayOffset int
}

// Source returns the events scheduled on a given day.
type Source interface {
	EventsOn(ctx context.Context, day time.Time) ([]Event, error)
}

// Client queries a TheSportsDB-compatible "events by day" endpoint.
type Client struct {
	baseURL string
	sport   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a schedule client. baseURL points at the eventsday endpoint,
// e.g. https://www.thesportsdb.com/api/v1/json/3/eventsday.php. A nil limiter
// disables request pacing.
func NewClient(baseURL, sport string, client *http.Client, limiter *rate.Limiter) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		sport:   sport,
		client:  client,
		limiter: limiter,
	}
}

type eventsResponse struct {
	Events []struct {
		Event    string `json:"strEvent"`
		HomeTeam string `json:"strHomeTeam"`
		AwayTeam string `json:"strAwayTeam"`
		League   string `json:"strLeague"`
		Time     string `json:"strTime"`
	} `json:"events"`
}

// EventsOn fetches the events of the given day. DayOffset is left at zero; Collect sets it.
func (c *Client) EventsOn(ctx context.Context, day time.Time) ([]Event, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	date := day.Format(DateLayout)
	reqURL, err := c.requestURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule body: %w", err)
	}

	return decodeEvents(body, date)
}

func (c *Client) requestURL(date string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid schedule URL: %w", err)
	}
	q := u.Query()
	q.Set("d", date)
	if c.sport != "" {
		q.Set("s", c.sport)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeEvents(body []byte, date string) ([]Event, error) {
	var payload eventsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}

	events := make([]Event, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, Event{
			Title:    strings.TrimSpace(e.Event),
			HomeTeam: normalize(e.HomeTeam),
			AwayTeam: normalize(e.AwayTeam),
			League:   normalize(e.League),
			Time:     strings.TrimSpace(e.Time),
			Date:     date,
		})
	}
	return events, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
