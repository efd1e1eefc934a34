package suggest

// HistoryReader exposes the session's recent query strings, newest first.
type HistoryReader interface {
	RecentQueries(limit int) []string
}

// PopularReader exposes the platform-wide most frequent query strings.
type PopularReader interface {
	PopularQueries(limit int) []string
}
