package catalog

import "github.com/mmcdole/marquee/internal/domain"

// Stats summarizes the catalog for the admin console
type Stats struct {
	Total         int     // number of items
	Genres        int     // distinct raw genre labels
	AverageRating float64 // 0 when there are no items
}

// Summarize computes admin statistics over items
func Summarize(items []domain.Item) Stats {
	if len(items) == 0 {
		return Stats{}
	}
	genres := make(map[string]struct{})
	var sum float64
	for _, it := range items {
		genres[it.Genre] = struct{}{}
		sum += it.Rating
	}
	return Stats{
		Total:         len(items),
		Genres:        len(genres),
		AverageRating: sum / float64(len(items)),
	}
}
