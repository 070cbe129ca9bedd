package lineup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/savid/iptv-livegen/internal/metrics"
	"github.com/savid/iptv-livegen/pkg/category"
	"github.com/savid/iptv-livegen/pkg/m3u"
	"github.com/savid/iptv-livegen/pkg/schedule"
)

// GeneratedAtLayout matches the millisecond ISO 8601 form used in stats files.
const GeneratedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// PlaylistFetcher returns the raw text of a playlist, or "" on any failure.
type PlaylistFetcher interface {
	FetchPlaylist(ctx context.Context, url string) string
}

// LivenessProber reports whether a stream URL answers.
type LivenessProber interface {
	Alive(ctx context.Context, streamURL string) bool
}

// Options tune one pipeline.
type Options struct {
	Sources          []string
	FetchConcurrency int

	// ScheduleDays is the last queried day offset; offsets 0..ScheduleDays are queried.
	ScheduleDays   int
	Location       *time.Location
	EligibleTokens []string
	TimeLabel      string

	Fallback      FallbackPolicy
	FallbackGroup string

	ProbeConcurrency int
}

// Pipeline wires the collaborators of a generation run.
type Pipeline struct {
	Fetcher PlaylistFetcher
	// Events is optional; without it no channel is correlated.
	Events schedule.Source
	// Prober is optional; without it every channel is kept.
	Prober         LivenessProber
	LoadCategories func() (category.Dictionary, error)
	Metrics        *metrics.Recorder
	Logger         *logrus.Logger
	Options        Options
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run fetches every source and produces the playlist and its statistics.
// Source, dictionary and schedule failures degrade to empty data; the only
// error is a cancelled context.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.now()
	logger := p.logger()

	dict := p.loadDictionary()

	entries, sourceStats := p.fetchSources(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.Metrics.Channels(metrics.StageFetched, len(entries))

	unique := Dedupe(entries)
	p.Metrics.Channels(metrics.StageUnique, len(unique))

	classified := Classify(unique, dict)
	p.Metrics.Channels(metrics.StageMatched, len(classified))

	stats := Stats{
		Fetched: len(entries),
		Unique:  len(unique),
		Matched: len(classified),
		Sources: sourceStats,
	}

	if p.Prober != nil {
		classified = p.filterAlive(ctx, classified)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		alive := len(classified)
		stats.Alive = &alive
		p.Metrics.Channels(metrics.StageAlive, alive)
	}

	correlator := &Correlator{
		EligibleTokens: p.Options.EligibleTokens,
		Fallback:       p.Options.Fallback,
		FallbackGroup:  p.Options.FallbackGroup,
		TimeLabel:      p.Options.TimeLabel,
	}

	var dynamicTitles []string
	if p.Events != nil {
		days := schedule.Days(started, p.Options.Location, p.Options.ScheduleDays)
		correlator.Events = schedule.Collect(ctx, p.Events, days, p.Options.Location, logger)
		p.Metrics.Events(len(correlator.Events))
		dynamicTitles = correlator.dynamicTitles(dict, days)
	}

	enriched := make([]Enriched, 0, len(classified))
	for _, ch := range classified {
		enriched = append(enriched, correlator.Correlate(ch))
	}

	final := Disambiguate(enriched)
	groups := BuildGroups(final, dynamicTitles)

	for _, ch := range final {
		if ch.LiveToday {
			stats.LiveToday++
		}
	}
	stats.Groups = len(groups)
	stats.GeneratedAt = p.now().UTC().Format(GeneratedAtLayout)

	p.Metrics.Channels(metrics.StageOutput, len(final))
	p.Metrics.LiveToday(stats.LiveToday)

	logger.WithFields(logrus.Fields{
		"fetched":    stats.Fetched,
		"unique":     stats.Unique,
		"matched":    stats.Matched,
		"live_today": stats.LiveToday,
		"groups":     stats.Groups,
		"events":     len(correlator.Events),
	}).Info("Generated playlist")

	return &Result{
		Playlist: m3u.Render(groups),
		Stats:    stats,
		Channels: final,
		Groups:   groups,
	}, nil
}

// Classify keeps the channels that match a category, in order.
func Classify(entries []m3u.Entry, dict category.Dictionary) []Classified {
	classified := make([]Classified, 0, len(entries))
	for _, e := range entries {
		name, ok := dict.Classify(e.Name, e.URL)
		if !ok {
			continue
		}
		classified = append(classified, Classified{Entry: e, Category: name})
	}
	return classified
}

func (c *Correlator) dynamicTitles(dict category.Dictionary, days []schedule.Day) []string {
	var titles []string
	for _, name := range dict.Names() {
		if !c.Eligible(name) {
			continue
		}
		for _, day := range days {
			titles = append(titles, DynamicGroup(name, day.Date))
		}
	}
	return titles
}

func (p *Pipeline) loadDictionary() category.Dictionary {
	if p.LoadCategories == nil {
		return category.Dictionary{}
	}
	dict, err := p.LoadCategories()
	if err != nil {
		p.logger().WithError(err).Warn("Category dictionary unavailable, using empty dictionary")
		return category.Dictionary{}
	}
	p.logger().WithField("categories", len(dict)).Debug("Loaded category dictionary")
	return dict
}

// fetchSources fetches all sources concurrently and concatenates their entries
// in source order.
func (p *Pipeline) fetchSources(ctx context.Context) ([]m3u.Entry, []SourceStat) {
	sources := p.Options.Sources
	parsed := make([][]m3u.Entry, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if p.Options.FetchConcurrency > 0 {
		g.SetLimit(p.Options.FetchConcurrency)
	}

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			raw := p.Fetcher.FetchPlaylist(gctx, src)
			parsed[i] = m3u.Parse(raw)
			p.Metrics.SourceFetched(raw != "")
			return nil
		})
	}
	_ = g.Wait()

	var entries []m3u.Entry
	stats := make([]SourceStat, 0, len(sources))
	for i, src := range sources {
		entries = append(entries, parsed[i]...)
		stats = append(stats, SourceStat{URL: src, Entries: len(parsed[i])})
		p.logger().WithFields(logrus.Fields{
			"url":      src,
			"channels": len(parsed[i]),
		}).Info("Processed source")
	}

	return entries, stats
}

// filterAlive probes channels concurrently and keeps the reachable ones in order.
func (p *Pipeline) filterAlive(ctx context.Context, channels []Classified) []Classified {
	alive := make([]bool, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.Options.ProbeConcurrency
	if limit <= 0 {
		limit = 10
	}
	g.SetLimit(limit)

	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			alive[i] = p.Prober.Alive(gctx, ch.URL)
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]Classified, 0, len(channels))
	for i, ch := range channels {
		if alive[i] {
			kept = append(kept, ch)
		}
	}

	p.logger().WithFields(logrus.Fields{
		"probed": len(channels),
		"alive":  len(kept),
	}).Info("Probed stream liveness")

	return kept
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}
