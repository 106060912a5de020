package service

import (
	"cmp"
	"math"
	"slices"

	"github.com/msomdec/predictions/internal/domain"
)

// Score applies the pairwise logarithmic scoring rule to predictions, which
// must be in time order. Each prediction after the first earns its author
// 100*ln(p_now/p_before) of the probability given to the actual outcome.
// Until someone other than the creator has predicted, the creator's own
// revisions of the house odds neither earn nor cost points. Users with no
// scoring events are absent from the result.
func Score(predictions []domain.Prediction, creatorID int64, resolution bool) map[int64]float64 {
	scores := make(map[int64]float64)
	seenNonHouse := false

	var previous *domain.Prediction
	for i := range predictions {
		current := &predictions[i]
		if current.UserID != creatorID {
			seenNonHouse = true
		}

		if previous != nil && seenNonHouse {
			var ratio float64
			if resolution {
				ratio = current.Value / previous.Value
			} else {
				ratio = (1 - current.Value) / (1 - previous.Value)
			}
			scores[current.UserID] += 100 * math.Log(ratio)
		}
		previous = current
	}
	return scores
}

// UserScore is one line of a scoreboard.
type UserScore struct {
	UserID     int64
	ExternalID string
	Points     float64
}

// RankScores orders scores from best to worst. Equal scores fall back to
// external id order.
func RankScores(scores map[int64]float64, externalIDs map[int64]string) []UserScore {
	ranked := make([]UserScore, 0, len(scores))
	for id, points := range scores {
		ranked = append(ranked, UserScore{UserID: id, ExternalID: externalIDs[id], Points: points})
	}
	slices.SortFunc(ranked, func(a, b UserScore) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.ExternalID, b.ExternalID)
	})
	return ranked
}
