package catalog

import "strings"

const (
	// CategoryAll disables the category constraint.
	CategoryAll = "All"
	// CategoryFavorites keeps only stations present in the favorite set.
	CategoryFavorites = "Favorites"
)

// Category groups stations by matching tag keywords.
type Category struct {
	Name     string
	Keywords []string
}

// categories is the fixed category table shown in the filter bar.
var categories = []Category{
	{Name: CategoryAll},
	{Name: CategoryFavorites},
	{Name: "Top Music", Keywords: []string{"music", "pop", "rock", "dance", "hits", "top 40", "alternative"}},
	{Name: "News & Talk", Keywords: []string{"news", "talk", "public radio", "information", "balita"}},
	{Name: "Religion", Keywords: []string{"religious", "christian", "gospel", "islamic", "catholic"}},
	{Name: "Regional", Keywords: []string{"provincial", "regional", "local", "community radio"}},
	{Name: "OPM", Keywords: []string{"opm", "original pilipino music", "pinoy", "filipino"}},
}

// Categories returns a copy of the category table in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// CategoryNames lists category names in display order.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}
	return out
}

// FindCategory looks up a category by exact name.
func FindCategory(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Membership answers whether a station ID is a favorite.
type Membership interface {
	Contains(id string) bool
}

// Filter returns the stations matching both the category and the search text,
// preserving catalog order. It never returns nil.
func Filter(stations []Station, category, search string, favs Membership) []Station {
	query := strings.ToLower(search)
	var keywords map[string]struct{}
	if category != CategoryAll && category != CategoryFavorites {
		keywords = map[string]struct{}{}
		if c, ok := FindCategory(category); ok {
			for _, k := range c.Keywords {
				keywords[strings.ToLower(k)] = struct{}{}
			}
		}
	}

	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if !matchesCategory(st, category, keywords, favs) {
			continue
		}
		if !matchesSearch(st, query) {
			continue
		}
		out = append(out, st)
	}
	return out
}

func matchesCategory(st Station, category string, keywords map[string]struct{}, favs Membership) bool {
	switch category {
	case CategoryAll:
		return true
	case CategoryFavorites:
		return favs != nil && favs.Contains(st.ID)
	}
	for _, tag := range st.TagList() {
		if _, ok := keywords[tag]; ok {
			return true
		}
	}
	return false
}

// matchesSearch expects query to be lower-cased already.
func matchesSearch(st Station, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(st.Name), query) ||
		strings.Contains(strings.ToLower(st.Tags), query) ||
		strings.Contains(strings.ToLower(st.Language), query)
}
