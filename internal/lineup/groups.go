package lineup

import (
	"sort"

	"github.com/savid/iptv-livegen/pkg/m3u"
)

type bucket struct {
	title    string
	dynamic  bool
	channels []Enriched
}

// BuildGroups buckets channels by group and orders the result: dated match
// groups first, then static groups, each lexicographically by title; channels
// inside a group by final name. Every title in dynamicTitles is present even
// when no channel maps to it and then renders a placeholder record.
func BuildGroups(channels []Enriched, dynamicTitles []string) []m3u.Group {
	buckets := make(map[string]*bucket)

	for _, title := range dynamicTitles {
		buckets[title] = &bucket{title: title, dynamic: true}
	}

	for _, ch := range channels {
		b, ok := buckets[ch.Group]
		if !ok {
			b = &bucket{title: ch.Group, dynamic: ch.Dynamic}
			buckets[ch.Group] = b
		}
		b.channels = append(b.channels, ch)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].dynamic != ordered[j].dynamic {
			return ordered[i].dynamic
		}
		return ordered[i].title < ordered[j].title
	})

	groups := make([]m3u.Group, 0, len(ordered))
	for _, b := range ordered {
		sort.SliceStable(b.channels, func(i, j int) bool {
			return b.channels[i].FinalName < b.channels[j].FinalName
		})

		items := make([]m3u.Item, 0, len(b.channels))
		for _, ch := range b.channels {
			items = append(items, m3u.Item{
				Name: ch.FinalName,
				URL:  ch.URL,
				Logo: ch.Logo,
			})
		}

		groups = append(groups, m3u.Group{
			Title:       b.title,
			Items:       items,
			Placeholder: b.dynamic,
		})
	}

	return groups
}
