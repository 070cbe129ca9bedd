package m3u

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	// SeparatorURL is the unreachable placeholder stream used by banner and placeholder records.
	SeparatorURL = "https://separator.channel.available/offline.m3u8"
	// NoMatchesTitle names the placeholder record of an empty group.
	NoMatchesTitle = "No matches found"
)

// Item is one rendered channel.
type Item struct {
	Name string
	URL  string
	Logo string
}

// Group is a titled run of channels in the output playlist.
type Group struct {
	Title string
	Items []Item
	// Placeholder renders a "no matches" record when Items is empty.
	Placeholder bool
}

// Render writes the playlist header followed by every group. A group is preceded
// by a banner record carrying its title; empty groups are skipped unless they ask
// for a placeholder.
func Render(groups []Group) []byte {
	var buf bytes.Buffer

	buf.WriteString(HeaderMarker)
	buf.WriteString("\n")

	for _, group := range groups {
		if len(group.Items) == 0 && !group.Placeholder {
			continue
		}

		buf.WriteString("\n")
		writeRecord(&buf, group.Title, Item{
			Name: fmt.Sprintf("--- %s ---", group.Title),
			URL:  SeparatorURL,
		})

		if len(group.Items) == 0 {
			writeRecord(&buf, group.Title, Item{Name: NoMatchesTitle, URL: SeparatorURL})
			continue
		}

		for _, item := range group.Items {
			writeRecord(&buf, group.Title, item)
		}
	}

	return buf.Bytes()
}

func writeRecord(buf *bytes.Buffer, groupTitle string, item Item) {
	buf.WriteString(InfoMarker)
	buf.WriteString(":-1")
	if item.Logo != "" {
		fmt.Fprintf(buf, ` tvg-logo="%s"`, attributeValue(item.Logo))
	}
	fmt.Fprintf(buf, ` group-title="%s",%s`+"\n", attributeValue(groupTitle), item.Name)
	buf.WriteString(item.URL)
	buf.WriteString("\n")
}

var attributeReplacer = strings.NewReplacer(`"`, "'", "\r", " ", "\n", " ")

// attributeValue makes s safe inside a double-quoted attribute on one line.
func attributeValue(s string) string {
	return attributeReplacer.Replace(s)
}
