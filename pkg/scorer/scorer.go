package score

import (
	"math"
	"strings"

	domain "github.com/awharton/catwatch/pkg/types"
)

// Weights defines the relative importance of each matching factor.
type Weights struct {
	Title float64
	Brand float64
	Price float64
}

// DefaultWeights returns the default matching weights.
func DefaultWeights() Weights {
	return Weights{
		Title: 0.55,
		Brand: 0.25,
		Price: 0.20,
	}
}

// Breakdown shows per-factor match scores in [0, 1].
type Breakdown struct {
	Title float64 `json:"title"`
	Brand float64 `json:"brand"`
	Price float64 `json:"price"`
	Total float64 `json:"total"`
}

// Confidence estimates how likely two listings describe the same physical
// product, as a value in [0, 1]. Either listing may be nil, which scores 0.
// It is pure; the same pair always yields the same confidence.
func Confidence(amz, vnd *domain.Listing) float64 {
	return Match(amz, vnd, DefaultWeights()).Total
}

// Match computes the per-factor breakdown for a listing pair.
func Match(amz, vnd *domain.Listing, w Weights) Breakdown {
	b := Breakdown{}
	if amz == nil || vnd == nil {
		return b
	}

	b.Title = titleScore(amz.Title, vnd.Title)
	b.Brand = brandScore(amz.Brand, vnd.Brand)
	b.Price = priceScore(amz.Price, vnd.Price)

	total := b.Title*w.Title + b.Brand*w.Brand + b.Price*w.Price
	b.Total = math.Min(math.Max(total, 0), 1)

	return b
}

// titleScore is the Jaccard overlap of the two titles' lowercase tokens.
func titleScore(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// brandScore rewards an exact case-insensitive brand match. A missing brand on
// either side is neutral rather than a mismatch.
func brandScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0.5
	}
	if strings.EqualFold(a, b) {
		return 1
	}
	return 0
}

// priceScore maps the relative price gap to a score: identical prices get 1,
// a gap at or beyond double the cheaper price gets 0, linear in between.
func priceScore(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0.5
	}
	lo := math.Min(a, b)
	hi := math.Max(a, b)
	gap := (hi - lo) / lo
	return lerp(gap, 0, 1, 1, 0)
}

func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:()[]")
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// lerp linearly interpolates a value between two score boundaries, clamping
// outside the range.
func lerp(val, minVal, maxVal, minScore, maxScore float64) float64 {
	if maxVal == minVal {
		return minScore
	}
	t := (val - minVal) / (maxVal - minVal)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return minScore + t*(maxScore-minScore)
}
