package domain

import "time"

// SearchHistoryItem is one entry of a user's local search history.
type SearchHistoryItem struct {
	Query       string `json:"query"`
	Timestamp   int64  `json:"timestamp"`
	ResultCount int    `json:"resultCount"`
}

// Time returns the timestamp (milliseconds since epoch) as a time.Time.
func (h SearchHistoryItem) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}
