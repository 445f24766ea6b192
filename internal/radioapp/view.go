package radioapp

import (
	"fmt"
	"strings"

	"github.com/edward-ap/phradio/internal/catalog"
)

const (
	searchPlaceholder = "Find a station..."
	emptyTitle        = "No stations found"
	emptyHint         = "Try adjusting your search or category filters."
	loadingText       = "Loading stations…"
	tickerIdle        = "Live Radio"
	defaultRegion     = "Philippines"
)

// sectionTitle is the heading above the station list.
func sectionTitle(category string) string {
	if category == catalog.CategoryAll || category == "" {
		return "All Stations"
	}
	return category
}

func countLabel(n int) string {
	return fmt.Sprintf("%d Stations", n)
}

// rowSubtitle is the secondary line of a list row: primary tag and region.
func rowSubtitle(st catalog.Station) string {
	return strings.ToUpper(st.PrimaryTag()) + " · " + st.Region(defaultRegion)
}

// detailSubtitle is the location line of the detail view.
func detailSubtitle(st catalog.Station) string {
	s := st.Region(defaultRegion)
	if st.IsFM() {
		s += " - FM Radio"
	}
	return s
}

// detailFacts summarises codec, bitrate and language, skipping unknowns.
func detailFacts(st catalog.Station) string {
	var parts []string
	if c := strings.TrimSpace(st.Codec); c != "" {
		parts = append(parts, c)
	}
	if st.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", st.Bitrate))
	}
	if l := strings.TrimSpace(st.Language); l != "" {
		parts = append(parts, l)
	}
	return strings.Join(parts, " · ")
}

// tagLine lists up to max tags for display.
func tagLine(st catalog.Station, max int) string {
	tags := st.TagList()
	if len(tags) > max {
		tags = tags[:max]
	}
	return strings.Join(tags, ", ")
}

func favoriteTooltip(fav bool) string {
	if fav {
		return "Remove from favorites"
	}
	return "Add to favorites"
}
