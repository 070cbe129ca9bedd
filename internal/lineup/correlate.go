package lineup

import (
	"fmt"
	"strings"

	"github.com/savid/iptv-livegen/pkg/schedule"
)

const (
	// DynamicMarker prefixes the title of dated match groups.
	DynamicMarker = "MATCHDAY"
	// SuffixSeparator starts the match detail appended to a channel name.
	SuffixSeparator = " ⚽ "
	// LiveTodayStatus is the status shown for matches on the reference day.
	LiveTodayStatus = "LIVE TODAY"
)

// FallbackPolicy decides where channels without a correlated match are placed.
type FallbackPolicy string

const (
	// FallbackStatic keeps the channel in its own category.
	FallbackStatic FallbackPolicy = "static"
	// FallbackShared moves the channel into a single shared group.
	FallbackShared FallbackPolicy = "shared"
)

// Correlator attaches the closest scheduled match to schedule-eligible channels.
type Correlator struct {
	Events []schedule.Event
	// EligibleTokens select schedule-eligible categories by case-insensitive
	// substring of the category name.
	EligibleTokens []string
	Fallback       FallbackPolicy
	FallbackGroup  string
	// TimeLabel follows the kickoff clock in the detail suffix, e.g. "UTC".
	TimeLabel string
}

// DynamicGroup returns the title of the dated match group for a category.
func DynamicGroup(category, date string) string {
	return fmt.Sprintf("%s %s %s", DynamicMarker, category, date)
}

// Eligible reports whether channels of category are correlated with the schedule.
func (c *Correlator) Eligible(category string) bool {
	lower := strings.ToLower(category)
	for _, token := range c.EligibleTokens {
		if token != "" && strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// Correlate resolves the group and display name of one channel.
func (c *Correlator) Correlate(ch Classified) Enriched {
	out := Enriched{
		Classified: ch,
		Group:      c.fallbackGroup(ch.Category),
		FinalName:  ch.Name,
	}

	if !c.Eligible(ch.Category) {
		return out
	}

	event, ok := c.closestEvent(ch)
	if !ok {
		return out
	}

	out.Group = DynamicGroup(ch.Category, event.Date)
	out.Dynamic = true
	out.FinalName = ch.Name + c.detailSuffix(event)
	out.LiveToday = event.DayOffset == 0
	return out
}

func (c *Correlator) fallbackGroup(category string) string {
	if c.Fallback == FallbackShared && c.FallbackGroup != "" {
		return c.FallbackGroup
	}
	return category
}

// closestEvent returns the matching event with the smallest day offset. The
// first event seen at that offset wins.
func (c *Correlator) closestEvent(ch Classified) (schedule.Event, bool) {
	name := strings.ToLower(ch.Name)
	url := strings.ToLower(ch.URL)
	category := strings.ToLower(ch.Category)

	var best schedule.Event
	found := false

	for _, e := range c.Events {
		if !eventMatches(name, url, category, e) {
			continue
		}
		if !found || e.DayOffset < best.DayOffset {
			best = e
			found = true
		}
	}

	return best, found
}

func eventMatches(name, url, category string, e schedule.Event) bool {
	for _, needle := range []string{e.HomeTeam, e.AwayTeam, strings.ToLower(e.Title), e.League} {
		// An empty needle is contained in every string.
		if needle == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(url, needle) {
			return true
		}
	}
	return e.League != "" && strings.Contains(category, e.League)
}

func (c *Correlator) detailSuffix(e schedule.Event) string {
	status := e.Date
	if e.DayOffset == 0 {
		status = LiveTodayStatus
	}

	parts := []string{status, e.League}
	if clock := kickoffClock(e.Time); clock != "" {
		if c.TimeLabel != "" {
			clock += " " + c.TimeLabel
		}
		parts = append(parts, clock)
	}
	parts = append(parts, e.Title)

	return SuffixSeparator + "[" + strings.Join(parts, " | ") + "]"
}

func kickoffClock(raw string) string {
	r := []rune(strings.TrimSpace(raw))
	if len(r) > 5 {
		r = r[:5]
	}
	return string(r)
}
