package engagement

import "time"

// Sort modes accepted by movie listing. Unknown values fall back to newest.
const (
	SortNewest       = "newest"
	SortHighestRated = "highestRated"
	SortMostLiked    = "mostLiked"
	SortTrending     = "trending"
)

// MovieSummary carries the aggregate values a sort order needs.
type MovieSummary struct {
	AverageRating float64
	Likes         int
	CreatedAt     time.Time
}

// Score is the trending ranking value. Derived on demand, never stored.
func Score(averageRating float64, likes int) float64 {
	return averageRating*2 + float64(likes)
}

// Less orders two summaries under the given mode, descending. Ties are
// deliberately unordered; callers use sort.SliceStable so ties keep
// input order.
func Less(a, b MovieSummary, mode string) bool {
	switch mode {
	case SortHighestRated:
		return a.AverageRating > b.AverageRating
	case SortMostLiked:
		return a.Likes > b.Likes
	case SortTrending:
		return Score(a.AverageRating, a.Likes) > Score(b.AverageRating, b.Likes)
	default: // SortNewest
		return a.CreatedAt.After(b.CreatedAt)
	}
}
