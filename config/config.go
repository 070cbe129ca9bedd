// Package config provides configuration management for the playlist generator.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	// ErrSourcesRequired is returned when no playlist source is provided.
	ErrSourcesRequired = errors.New("at least one source URL is required")
	// ErrInvalidSourceURL is returned when a source is not an absolute http(s) URL.
	ErrInvalidSourceURL = errors.New("invalid source URL")
	// ErrOutputRequired is returned when the playlist output path is empty.
	ErrOutputRequired = errors.New("output path is required")
	// ErrInvalidPort is returned when port number is invalid.
	ErrInvalidPort = errors.New("invalid port number")
	// ErrRefreshIntervalPositive is returned when refresh interval is not positive.
	ErrRefreshIntervalPositive = errors.New("refresh interval must be positive")
	// ErrTimeoutPositive is returned when a fetch or probe timeout is not positive.
	ErrTimeoutPositive = errors.New("timeout must be positive")
	// ErrInvalidLogLevel is returned when log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidScheduleDays is returned when the schedule window is negative.
	ErrInvalidScheduleDays = errors.New("schedule days must not be negative")
	// ErrInvalidTimezone is returned when the timezone cannot be loaded.
	ErrInvalidTimezone = errors.New("invalid timezone")
	// ErrInvalidFallbackPolicy is returned for an unknown fallback policy.
	ErrInvalidFallbackPolicy = errors.New("invalid fallback policy")
	// ErrInvalidHistoryDriver is returned for an unknown history driver.
	ErrInvalidHistoryDriver = errors.New("invalid history driver")
	// ErrHistoryDSNRequired is returned when a history driver is set without a DSN.
	ErrHistoryDSNRequired = errors.New("history DSN is required when a history driver is set")
	// ErrInvalidProxy is returned when the fetch proxy URL is malformed or unsupported.
	ErrInvalidProxy = errors.New("invalid fetch proxy")
)

// EnvPrefix prefixes every environment variable fallback.
const EnvPrefix = "LIVEGEN_"

// Config holds the application configuration.
type Config struct {
	Sources      []string
	CategoryFile string
	OutputPath   string
	StatsPath    string
	LogLevel     string

	FetchTimeout time.Duration
	FetchProxy   string

	ScheduleURL        string
	ScheduleSport      string
	ScheduleDays       int
	ScheduleCategories []string
	Timezone           string
	TimeLabel          string

	FallbackPolicy string
	FallbackGroup  string

	ProbeStreams     bool
	ProbeTimeout     time.Duration
	ProbeConcurrency int
	ProbeRate        float64

	HistoryDriver string
	HistoryDSN    string
	MetricsFile   string

	Serve           bool
	Port            int
	RefreshInterval time.Duration
}

// New creates a new configuration instance by loading an optional .env file and
// parsing command-line flags.
func New() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is New with explicit arguments.
func Load(args []string) (*Config, error) {
	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()

	return Parse(args)
}

// Parse builds a configuration from args. Every flag defaults to its LIVEGEN_*
// environment variable when set.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("iptv-livegen", flag.ContinueOnError)

	sources := newListValue(envString("SOURCES", ""))
	fs.Var(sources, "source", "Playlist source URL, repeatable or comma-separated (required)")
	fs.StringVar(&cfg.CategoryFile, "categories", envString("CATEGORIES", "channel-map.json"), "Path of the category dictionary JSON file")
	fs.StringVar(&cfg.OutputPath, "output", envString("OUTPUT", "live.m3u"), "Path of the generated playlist")
	fs.StringVar(&cfg.StatsPath, "stats", envString("STATS", "stats.json"), "Path of the generated statistics file (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", envDuration("FETCH_TIMEOUT", 15*time.Second), "Timeout of one source or schedule request")
	fs.StringVar(&cfg.FetchProxy, "fetch-proxy", envString("FETCH_PROXY", ""), "Proxy for outgoing requests (socks5://, http:// or https://)")

	fs.StringVar(&cfg.ScheduleURL, "schedule-url", envString("SCHEDULE_URL", "https://www.thesportsdb.com/api/v1/json/3/eventsday.php"), "Events-by-day endpoint (empty disables the schedule)")
	fs.StringVar(&cfg.ScheduleSport, "schedule-sport", envString("SCHEDULE_SPORT", "Soccer"), "Sport queried on the schedule endpoint")
	fs.IntVar(&cfg.ScheduleDays, "schedule-days", envInt("SCHEDULE_DAYS", 1), "Last day offset queried (0 queries only today)")
	categories := newListValue(envString("SCHEDULE_CATEGORIES", "football"))
	fs.Var(categories, "schedule-category", "Token selecting schedule-eligible categories, repeatable or comma-separated")
	fs.StringVar(&cfg.Timezone, "timezone", envString("TIMEZONE", "UTC"), "IANA timezone of schedule dates")
	fs.StringVar(&cfg.TimeLabel, "time-label", envString("TIME_LABEL", "UTC"), "Label printed after kickoff times")

	fs.StringVar(&cfg.FallbackPolicy, "fallback", envString("FALLBACK", "static"), "Group of uncorrelated channels (static, shared)")
	fs.StringVar(&cfg.FallbackGroup, "fallback-group", envString("FALLBACK_GROUP", "OTHER SPORTS"), "Group title used by the shared fallback policy")

	fs.BoolVar(&cfg.ProbeStreams, "probe", envBool("PROBE", false), "Drop channels whose stream does not answer")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", envDuration("PROBE_TIMEOUT", 5*time.Second), "Timeout of one stream probe")
	fs.IntVar(&cfg.ProbeConcurrency, "probe-concurrency", envInt("PROBE_CONCURRENCY", 10), "Maximum concurrent stream probes")
	fs.Float64Var(&cfg.ProbeRate, "probe-rate", envFloat("PROBE_RATE", 20), "Maximum probes per second (0 disables pacing)")

	fs.StringVar(&cfg.HistoryDriver, "history-driver", envString("HISTORY_DRIVER", ""), "Run history database (sqlite, postgres, empty disables)")
	fs.StringVar(&cfg.HistoryDSN, "history-dsn", envString("HISTORY_DSN", ""), "Run history data source name")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", envString("METRICS_FILE", ""), "Write Prometheus metrics to this textfile after a run")

	fs.BoolVar(&cfg.Serve, "serve", envBool("SERVE", false), "Keep running and serve the playlist over HTTP")
	fs.IntVar(&cfg.Port, "port", envInt("PORT", 8080), "Port to listen on in serve mode")
	fs.DurationVar(&cfg.RefreshInterval, "refresh-interval", envDuration("REFRESH_INTERVAL", 30*time.Minute), "Interval between regenerations in serve mode")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Sources = sources.values
	cfg.ScheduleCategories = categories.values

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrSourcesRequired
	}

	for _, src := range c.Sources {
		u, err := url.Parse(src)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s", ErrInvalidSourceURL, src)
		}
	}

	if c.OutputPath == "" {
		return ErrOutputRequired
	}

	if c.ScheduleURL != "" {
		if _, err := url.Parse(c.ScheduleURL); err != nil {
			return fmt.Errorf("invalid schedule URL: %w", err)
		}
	}

	if c.ScheduleDays < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScheduleDays, c.ScheduleDays)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.FetchTimeout <= 0 || c.ProbeTimeout <= 0 {
		return ErrTimeoutPositive
	}

	if c.FetchProxy != "" {
		u, err := url.Parse(c.FetchProxy)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
		switch u.Scheme {
		case "socks5", "socks5h", "http", "https":
		default:
			return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
		}
	}

	switch c.FallbackPolicy {
	case "static", "shared":
	default:
		return fmt.Errorf("%w: %s (must be static or shared)", ErrInvalidFallbackPolicy, c.FallbackPolicy)
	}

	switch c.HistoryDriver {
	case "":
	case "sqlite", "postgres":
		if c.HistoryDSN == "" {
			return ErrHistoryDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s (must be sqlite or postgres)", ErrInvalidHistoryDriver, c.HistoryDriver)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if c.Serve && c.RefreshInterval <= 0 {
		return ErrRefreshIntervalPositive
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %s (must be debug, info, warn, or error)", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// Location returns the timezone that schedule dates are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

// listValue collects repeated or comma-separated flag values. Values given on
// the command line replace the environment default.
type listValue struct {
	values []string
	set    bool
}

func newListValue(def string) *listValue {
	return &listValue{values: splitList(def)}
}

func (l *listValue) String() string {
	return strings.Join(l.values, ",")
}

func (l *listValue) Set(s string) error {
	if !l.set {
		l.values = nil
		l.set = true
	}
	l.values = append(l.values, splitList(s)...)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(envString(key, "")); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(envString(key, ""), 64); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(envString(key, "")); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(envString(key, "")); err == nil {
		return v
	}
	return def
}
