package lineup

import (
	"strings"
	"testing"

	"github.com/savid/iptv-livegen/pkg/m3u"
)

func groupChannel(group, name string, dynamic bool) Enriched {
	return Enriched{
		Classified: Classified{Entry: m3u.Entry{Name: name, URL: "http://x/" + name}},
		Group:      group,
		Dynamic:    dynamic,
		FinalName:  name,
	}
}

func TestBuildGroupsOrdering(t *testing.T) {
	channels := []Enriched{
		groupChannel("SPORTS", "Zeta", false),
		groupChannel("BASKET", "NBA", false),
		groupChannel("MATCHDAY FOOTBALL 2026-10-18", "Beta", true),
		groupChannel("SPORTS", "Alpha", false),
		groupChannel("MATCHDAY FOOTBALL 2026-10-17", "Gamma", true),
	}

	groups := BuildGroups(channels, nil)

	expectedTitles := []string{
		"MATCHDAY FOOTBALL 2026-10-17",
		"MATCHDAY FOOTBALL 2026-10-18",
		"BASKET",
		"SPORTS",
	}
	if len(groups) != len(expectedTitles) {
		t.Fatalf("Expected %d groups, got %d", len(expectedTitles), len(groups))
	}
	for i, title := range expectedTitles {
		if groups[i].Title != title {
			t.Errorf("groups[%d].Title = %q, want %q", i, groups[i].Title, title)
		}
	}

	sports := groups[3]
	if sports.Items[0].Name != "Alpha" || sports.Items[1].Name != "Zeta" {
		t.Errorf("Channels should be sorted by name, got %v", sports.Items)
	}
	if sports.Placeholder {
		t.Error("Static groups should not render a placeholder")
	}
}

func TestBuildGroupsEmptyDynamic(t *testing.T) {
	dynamic := []string{
		"MATCHDAY FOOTBALL 2026-10-17",
		"MATCHDAY FOOTBALL 2026-10-18",
	}
	channels := []Enriched{groupChannel("MATCHDAY FOOTBALL 2026-10-18", "Beta", true)}

	groups := BuildGroups(channels, dynamic)
	if len(groups) != 2 {
		t.Fatalf("Expected every dynamic group to exist, got %d", len(groups))
	}

	empty := groups[0]
	if empty.Title != "MATCHDAY FOOTBALL 2026-10-17" || len(empty.Items) != 0 || !empty.Placeholder {
		t.Errorf("Expected empty placeholder group first, got %+v", empty)
	}

	rendered := string(m3u.Render(groups))
	want := "#EXTINF:-1 group-title=\"MATCHDAY FOOTBALL 2026-10-17\"," + m3u.NoMatchesTitle
	if !strings.Contains(rendered, want) {
		t.Errorf("Expected placeholder record in output:\n%s", rendered)
	}
}
