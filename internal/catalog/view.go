package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of the displayed items
type SortKey string

const (
	SortNewest SortKey = "newest" // created desc (default)
	SortRating SortKey = "rating" // rating desc
	SortTitle  SortKey = "title"  // title asc, pt-BR collation
)

// String returns the display label for the sort key
func (k SortKey) String() string {
	switch k {
	case SortRating:
		return "Melhor avaliados"
	case SortTitle:
		return "A-Z"
	default:
		return "Mais recentes"
	}
}

// SortOptions returns the available sort keys in display order
func SortOptions() []SortKey {
	return []SortKey{SortNewest, SortRating, SortTitle}
}

// ParseSortKey returns the sort key named s, SortNewest when unknown
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortRating:
		return SortRating
	case SortTitle:
		return SortTitle
	default:
		return SortNewest
	}
}

// Layout is how the browse view arranges items
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// ParseLayout returns the layout named s, LayoutGrid when unknown
func ParseLayout(s string) Layout {
	if Layout(strings.ToLower(strings.TrimSpace(s))) == LayoutList {
		return LayoutList
	}
	return LayoutGrid
}

// ViewState is the transient browse state owned by the UI. It is never
// persisted and is only read by the pipeline.
type ViewState struct {
	Search   string
	Category string
	Sort     SortKey
	Layout   Layout
}

// DefaultViewState shows every category, newest first, as a grid
func DefaultViewState() ViewState {
	return ViewState{Category: CategoryAll, Sort: SortNewest, Layout: LayoutGrid}
}

// WithCategory selects a category. Changing category clears the search.
func (v ViewState) WithCategory(id string) ViewState {
	if id == "" {
		id = CategoryAll
	}
	v.Category = id
	v.Search = ""
	return v
}

// WithSearch sets the search text. A non-empty search shows all categories.
func (v ViewState) WithSearch(text string) ViewState {
	v.Search = text
	if text != "" {
		v.Category = CategoryAll
	}
	return v
}

// WithSort selects the ordering
func (v ViewState) WithSort(k SortKey) ViewState {
	v.Sort = k
	return v
}

// ToggleLayout switches between grid and list
func (v ViewState) ToggleLayout() ViewState {
	if v.Layout == LayoutList {
		v.Layout = LayoutGrid
	} else {
		v.Layout = LayoutList
	}
	return v
}

// EmptyReason explains why a derived view has no items
type EmptyReason int

const (
	NotEmpty     EmptyReason = iota
	EmptyCatalog             // the cache holds no items at all
	EmptyNoMatch             // items exist but none pass search/category
)

// View is the result of running the pipeline.
type View struct {
	Items []domain.Item // displayed items, in display order
	Total int           // number of items in the cache before filtering
}

// Empty reports why the view is empty, or NotEmpty.
func (v View) Empty() EmptyReason {
	switch {
	case len(v.Items) > 0:
		return NotEmpty
	case v.Total == 0:
		return EmptyCatalog
	default:
		return EmptyNoMatch
	}
}

// Derive runs the pipeline and keeps the cache size alongside the result.
func Derive(items []domain.Item, state ViewState) View {
	return View{Items: Apply(items, state), Total: len(items)}
}

// Apply computes the displayed items: search, then category, then a stable
// sort. The input slice is not modified.
func Apply(items []domain.Item, state ViewState) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	needle := strings.ToLower(state.Search)
	for _, it := range items {
		if !matchesSearch(it, needle) {
			continue
		}
		if !matchesCategory(it, state.Category) {
			continue
		}
		out = append(out, it)
	}
	sortItems(out, state.Sort)
	return out
}

// matchesSearch does a literal substring match; needle is already lowercased
func matchesSearch(it domain.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Title), needle) ||
		strings.Contains(strings.ToLower(it.Description), needle)
}

func matchesCategory(it domain.Item, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return CanonicalCategory(it.Genre) == category
}

func sortItems(items []domain.Item, key SortKey) {
	switch key {
	case SortRating:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case SortTitle:
		// Collators keep internal buffers; one per call.
		col := collate.New(language.BrazilianPortuguese)
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return col.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}
