package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// CategoryAll is the sentinel category that disables category filtering.
const CategoryAll = "all"

// Category is a canonical catalog category.
type Category struct {
	ID   string
	Name string // pt-BR display name
	Icon string
}

var categories = []Category{
	{ID: CategoryAll, Name: "Todos", Icon: "🎬"},
	{ID: "action", Name: "Ação", Icon: "💥"},
	{ID: "adventure", Name: "Aventura", Icon: "🗺️"},
	{ID: "comedy", Name: "Comédia", Icon: "😂"},
	{ID: "drama", Name: "Drama", Icon: "🎭"},
	{ID: "horror", Name: "Terror", Icon: "👻"},
	{ID: "romance", Name: "Romance", Icon: "💕"},
	{ID: "sci-fi", Name: "Ficção Científica", Icon: "🚀"},
	{ID: "thriller", Name: "Thriller", Icon: "🔪"},
	{ID: "documentary", Name: "Documentário", Icon: "📹"},
	{ID: "animation", Name: "Animação", Icon: "🎨"},
	{ID: "fantasy", Name: "Fantasia", Icon: "🧙‍♂️"},
}

// genreMapping maps display-language genre labels to canonical category IDs.
// Lookup is exact (case and accents matter).
var genreMapping = map[string]string{
	"Ação":              "action",
	"Aventura":          "adventure",
	"Comédia":           "comedy",
	"Drama":             "drama",
	"Horror":            "horror",
	"Terror":            "horror",
	"Romance":           "romance",
	"Ficção Científica": "sci-fi",
	"Thriller":          "thriller",
	"Documentário":      "documentary",
	"Animação":          "animation",
	"Fantasia":          "fantasy",
}

// genreChoices are the labels offered by the item form, in display order.
var genreChoices = []string{
	"Ação", "Aventura", "Comédia", "Drama", "Ficção Científica",
	"Horror", "Romance", "Thriller", "Documentário",
}

// Categories returns the canonical categories, "all" first.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the category with the given ID.
func LookupCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryName returns the display name for a category ID, "Todos" when unknown.
func CategoryName(id string) string {
	if c, ok := LookupCategory(id); ok {
		return c.Name
	}
	return categories[0].Name
}

// CanonicalCategory resolves a raw genre label to its category ID. Labels
// missing from the mapping fall back to their lowercased form.
func CanonicalCategory(genre string) string {
	if id, ok := genreMapping[genre]; ok {
		return id
	}
	return strings.ToLower(genre)
}

// GenreChoices returns the genre labels offered when editing an item.
func GenreChoices() []string {
	out := make([]string, len(genreChoices))
	copy(out, genreChoices)
	return out
}

// SuggestGenre proposes a known label for a raw genre that does not resolve
// to any canonical category. Matching ignores case and diacritics, so
// "acao" suggests "Ação". ok is false when raw already resolves or nothing
// is close enough.
func SuggestGenre(raw string) (label string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, known := LookupCategory(CanonicalCategory(raw)); known {
		return "", false
	}

	labels := make([]string, 0, len(genreMapping))
	for l := range genreMapping {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	ranks := fuzzy.RankFindNormalizedFold(raw, labels)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Stable(ranks)
	return ranks[0].Target, true
}
