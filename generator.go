package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/savid/iptv-livegen/config"
	"github.com/savid/iptv-livegen/internal/history"
	"github.com/savid/iptv-livegen/internal/lineup"
	"github.com/savid/iptv-livegen/internal/metrics"
	"github.com/savid/iptv-livegen/pkg/category"
	"github.com/savid/iptv-livegen/pkg/data"
	"github.com/savid/iptv-livegen/pkg/schedule"
)

// generator runs the pipeline and persists its outputs. It implements
// data.Generator for serve mode.
type generator struct {
	cfg         *config.Config
	fetcher     *data.Fetcher
	events      schedule.Source
	probeClient *http.Client
	location    *time.Location
	runs        *history.Store
	metrics     *metrics.Recorder
	logger      *logrus.Logger
}

func newGenerator(cfg *config.Config, runs *history.Store, recorder *metrics.Recorder, logger *logrus.Logger) (*generator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client, err := data.NewHTTPClient(cfg.FetchTimeout, cfg.FetchProxy)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch client: %w", err)
	}

	g := &generator{
		cfg:      cfg,
		fetcher:  data.NewFetcher(client, logger),
		location: loc,
		runs:     runs,
		metrics:  recorder,
		logger:   logger,
	}

	if cfg.ScheduleURL != "" {
		g.events = schedule.NewClient(cfg.ScheduleURL, cfg.ScheduleSport, client, rate.NewLimiter(rate.Every(time.Second), 2))
	}

	if cfg.ProbeStreams {
		g.probeClient, err = data.NewHTTPClient(cfg.ProbeTimeout, cfg.FetchProxy)
		if err != nil {
			return nil, fmt.Errorf("failed to create probe client: %w", err)
		}
	}

	return g, nil
}

func (g *generator) pipeline() *lineup.Pipeline {
	p := &lineup.Pipeline{
		Fetcher: g.fetcher,
		LoadCategories: func() (category.Dictionary, error) {
			return category.Load(g.cfg.CategoryFile)
		},
		Events:  g.events,
		Metrics: g.metrics,
		Logger:  g.logger,
		Options: lineup.Options{
			Sources:          g.cfg.Sources,
			ScheduleDays:     g.cfg.ScheduleDays,
			Location:         g.location,
			EligibleTokens:   g.cfg.ScheduleCategories,
			TimeLabel:        g.cfg.TimeLabel,
			Fallback:         lineup.FallbackPolicy(g.cfg.FallbackPolicy),
			FallbackGroup:    g.cfg.FallbackGroup,
			ProbeConcurrency: g.cfg.ProbeConcurrency,
		},
	}

	if g.probeClient != nil {
		var limiter *rate.Limiter
		if g.cfg.ProbeRate > 0 {
			limiter = rate.NewLimiter(rate.Limit(g.cfg.ProbeRate), max(1, int(g.cfg.ProbeRate)))
		}
		// A fresh prober per run so liveness is never cached across runs.
		p.Prober = data.NewProber(g.probeClient, limiter, g.logger)
	}

	return p
}

// run generates the playlist once and writes every configured output.
func (g *generator) run(ctx context.Context) (*lineup.Result, error) {
	started := time.Now()

	res, err := g.pipeline().Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := lineup.WriteOutputs(res, g.cfg.OutputPath, g.cfg.StatsPath); err != nil {
		return nil, err
	}

	finished := time.Now()
	g.metrics.RunCompleted(finished.Sub(started), finished)

	if g.runs != nil {
		run, err := g.runs.Record(ctx, history.Run{
			StartedAt:     started,
			FinishedAt:    finished,
			Fetched:       res.Stats.Fetched,
			Unique:        res.Stats.Unique,
			Matched:       res.Stats.Matched,
			Alive:         res.Stats.Alive,
			LiveToday:     res.Stats.LiveToday,
			Groups:        res.Stats.Groups,
			PlaylistBytes: len(res.Playlist),
		})
		if err != nil {
			g.logger.WithError(err).Warn("Failed to record run history")
		} else {
			g.logger.WithField("run_id", run.ID).Debug("Recorded run")
		}
	}

	if g.cfg.MetricsFile != "" {
		if err := g.metrics.WriteTextfile(g.cfg.MetricsFile); err != nil {
			g.logger.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	g.logger.WithFields(logrus.Fields{
		"output":     g.cfg.OutputPath,
		"size":       humanize.Bytes(uint64(len(res.Playlist))),
		"fetched":    humanize.Comma(int64(res.Stats.Fetched)),
		"matched":    humanize.Comma(int64(res.Stats.Matched)),
		"live_today": res.Stats.LiveToday,
		"took":       finished.Sub(started).Round(time.Millisecond).String(),
	}).Info("Playlist written")

	return res, nil
}

// Generate implements data.Generator.
func (g *generator) Generate(ctx context.Context) ([]byte, []byte, error) {
	res, err := g.run(ctx)
	if err != nil {
		return nil, nil, err
	}

	stats, err := json.Marshal(res.Stats)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode stats: %w", err)
	}

	return res.Playlist, stats, nil
}
