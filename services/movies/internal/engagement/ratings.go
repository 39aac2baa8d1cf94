package engagement

import "math"

// Rating is one user's score for a movie, 1 to 5.
type Rating struct {
	UserID string `json:"user_id"`
	Value  int    `json:"value"`
}

// RatingSummary is the derived aggregate for one movie. AverageRating
// keeps full precision; presentation layers round with Round2.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// Rate upserts userID's rating. An existing rating is overwritten in
// place (count unchanged); otherwise a new rating is appended. Values
// outside [1,5] fail with ErrInvalidInput and leave the input unchanged.
func Rate(ratings []Rating, userID string, value int) ([]Rating, RatingSummary, error) {
	if value < 1 || value > 5 {
		return nil, RatingSummary{}, ErrInvalidInput
	}

	out := append([]Rating(nil), ratings...)
	found := false
	for i := range out {
		if out[i].UserID == userID {
			out[i].Value = value
			found = true
			break
		}
	}
	if !found {
		out = append(out, Rating{UserID: userID, Value: value})
	}
	return out, Summarize(out), nil
}

// Summarize computes the arithmetic mean over all ratings; 0 when empty.
func Summarize(ratings []Rating) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	total := 0
	for _, r := range ratings {
		total += r.Value
	}
	return RatingSummary{
		AverageRating: float64(total) / float64(len(ratings)),
		TotalRatings:  len(ratings),
	}
}

// Round2 rounds to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
