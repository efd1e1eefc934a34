package analytics

// Store persists the aggregated analytics state.
type Store interface {
	LoadAnalytics() (State, error)
	SaveAnalytics(state State) error
}
