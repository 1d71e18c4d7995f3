package domain

import (
	"fmt"
	"time"
)

// Item is a catalog entry as stored by the data store.
type Item struct {
	ID            string    `json:"id"`              // Store-assigned, immutable
	Title         string    `json:"title"`           // Display title
	Description   string    `json:"description"`     // Synopsis
	EmbedURL      string    `json:"embed_url"`       // Playable media reference
	CoverImageURL string    `json:"cover_image_url"` // Cover art reference
	Genre         string    `json:"genre"`           // Free-text genre label
	ReleaseYear   int       `json:"release_year"`    // Release year
	Duration      string    `json:"duration"`        // Free text, e.g. "2h 15min"
	Rating        float64   `json:"rating"`          // 0-10 scale
	Views         *int64    `json:"views,omitempty"` // Optional, store may omit
	Likes         *int64    `json:"likes,omitempty"` // Optional, store may omit
	CreatedAt     time.Time `json:"created_at"`      // Store-assigned
	UpdatedAt     time.Time `json:"updated_at"`      // Refreshed on every update
}

// ViewCount returns the view counter, 0 when the store omitted it.
func (i Item) ViewCount() int64 {
	if i.Views == nil {
		return 0
	}
	return *i.Views
}

// LikeCount returns the like counter, 0 when the store omitted it.
func (i Item) LikeCount() int64 {
	if i.Likes == nil {
		return 0
	}
	return *i.Likes
}

// FormattedRating returns the rating with one decimal place
func (i Item) FormattedRating() string {
	return fmt.Sprintf("%.1f", i.Rating)
}

// Draft returns the store-writable fields of the item.
func (i Item) Draft() ItemDraft {
	return ItemDraft{
		Title:         i.Title,
		Description:   i.Description,
		EmbedURL:      i.EmbedURL,
		CoverImageURL: i.CoverImageURL,
		Genre:         i.Genre,
		ReleaseYear:   i.ReleaseYear,
		Duration:      i.Duration,
		Rating:        i.Rating,
		Views:         i.Views,
		Likes:         i.Likes,
	}
}

// ItemDraft is an item that has not been stored yet. The store assigns
// the ID and both timestamps.
type ItemDraft struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	EmbedURL      string  `json:"embed_url"`
	CoverImageURL string  `json:"cover_image_url"`
	Genre         string  `json:"genre"`
	ReleaseYear   int     `json:"release_year"`
	Duration      string  `json:"duration"`
	Rating        float64 `json:"rating"`
	Views         *int64  `json:"views,omitempty"`
	Likes         *int64  `json:"likes,omitempty"`
}

// ItemPatch carries only the fields a caller wants to change. Nil fields
// are left untouched by the store. UpdatedAt is always sent.
type ItemPatch struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	EmbedURL      *string   `json:"embed_url,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	Genre         *string   `json:"genre,omitempty"`
	ReleaseYear   *int      `json:"release_year,omitempty"`
	Duration      *string   `json:"duration,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	Views         *int64    `json:"views,omitempty"`
	Likes         *int64    `json:"likes,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsEmpty reports whether the patch changes no item field.
func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.EmbedURL == nil &&
		p.CoverImageURL == nil && p.Genre == nil && p.ReleaseYear == nil &&
		p.Duration == nil && p.Rating == nil && p.Views == nil && p.Likes == nil
}

// Apply merges the patch onto item and returns the result.
// Used by stores that hold items in memory.
func (p ItemPatch) Apply(item Item) Item {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.EmbedURL != nil {
		item.EmbedURL = *p.EmbedURL
	}
	if p.CoverImageURL != nil {
		item.CoverImageURL = *p.CoverImageURL
	}
	if p.Genre != nil {
		item.Genre = *p.Genre
	}
	if p.ReleaseYear != nil {
		item.ReleaseYear = *p.ReleaseYear
	}
	if p.Duration != nil {
		item.Duration = *p.Duration
	}
	if p.Rating != nil {
		item.Rating = *p.Rating
	}
	if p.Views != nil {
		v := *p.Views
		item.Views = &v
	}
	if p.Likes != nil {
		v := *p.Likes
		item.Likes = &v
	}
	if !p.UpdatedAt.IsZero() {
		item.UpdatedAt = p.UpdatedAt
	}
	return item
}

// Diff builds a patch containing the fields of next that differ from prev.
func Diff(prev Item, next ItemDraft) ItemPatch {
	var p ItemPatch
	if next.Title != prev.Title {
		p.Title = &next.Title
	}
	if next.Description != prev.Description {
		p.Description = &next.Description
	}
	if next.EmbedURL != prev.EmbedURL {
		p.EmbedURL = &next.EmbedURL
	}
	if next.CoverImageURL != prev.CoverImageURL {
		p.CoverImageURL = &next.CoverImageURL
	}
	if next.Genre != prev.Genre {
		p.Genre = &next.Genre
	}
	if next.ReleaseYear != prev.ReleaseYear {
		p.ReleaseYear = &next.ReleaseYear
	}
	if next.Duration != prev.Duration {
		p.Duration = &next.Duration
	}
	if next.Rating != prev.Rating {
		p.Rating = &next.Rating
	}
	return p
}
