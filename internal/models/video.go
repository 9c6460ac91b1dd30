package models

import "time"

// VideoRecord is a normalized search result with its engagement counters.
// Counters default to 0 when the statistics API omits them.
type VideoRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
}

// Window bounds a fetch to videos published inside [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastDays returns a window covering the previous n days up to now.
func LastDays(n int) Window {
	end := time.Now().UTC()
	return Window{Start: end.AddDate(0, 0, -n), End: end}
}
