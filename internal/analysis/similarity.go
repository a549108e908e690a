package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// Weights of each component in the overall similarity score, in percent.
const (
	weightDirect  = 30
	weightZone    = 25
	weightSum     = 20
	weightSpacing = 15
	weightSpecial = 10
)

// Breakdown holds the 0..100 component scores before weighting.
type Breakdown struct {
	DirectMatch   float64 `json:"direct_match"`
	ZonePattern   float64 `json:"zone_pattern"`
	SumSimilarity float64 `json:"sum_similarity"`
	Spacing       float64 `json:"spacing"`
	Powerball     float64 `json:"powerball"`
}

// ZoneComparison pairs the zone counts of both sets.
type ZoneComparison struct {
	Generated  Zones   `json:"generated"`
	Historical Zones   `json:"historical"`
	Similarity float64 `json:"similarity"`
}

// SpacingComparison pairs the gap lists of both sets.
type SpacingComparison struct {
	Generated  []int   `json:"generated"`
	Historical []int   `json:"historical"`
	Similarity float64 `json:"similarity"`
}

// Similarity is the scored comparison of a generated set against one draw.
// OverallScore is a synthetic display value.
type Similarity struct {
	OverallScore   float64           `json:"overall_score"`
	DirectMatches  int               `json:"direct_matches"`
	SumDifference  int               `json:"sum_difference"`
	PowerballMatch bool              `json:"powerball_match"`
	ZonePattern    ZoneComparison    `json:"zone_pattern"`
	Spacing        SpacingComparison `json:"spacing"`
	Breakdown      Breakdown         `json:"breakdown"`
}

// Compare scores main/special against a historical draw.
func Compare(main []int, special int, draw Draw) Similarity {
	direct := directMatches(main, draw.Numbers)
	sumDiff := abs(sum(main) - sum(draw.Numbers))

	genZones, histZones := zonesOf(main), zonesOf(draw.Numbers)
	genGaps, histGaps := spacing(main), spacing(draw.Numbers)

	b := Breakdown{
		DirectMatch:   float64(direct) * 100 / 5,
		ZonePattern:   zoneSimilarity(genZones, histZones),
		SumSimilarity: math.Max(0, 100-float64(sumDiff)/2),
		Spacing:       spacingSimilarity(genGaps, histGaps),
	}
	if special == draw.Powerball {
		b.Powerball = 100
	}

	overall := (b.DirectMatch*weightDirect +
		b.ZonePattern*weightZone +
		b.SumSimilarity*weightSum +
		b.Spacing*weightSpacing +
		b.Powerball*weightSpecial) / 100

	return Similarity{
		OverallScore:   round2(overall),
		DirectMatches:  direct,
		SumDifference:  sumDiff,
		PowerballMatch: special == draw.Powerball,
		ZonePattern:    ZoneComparison{Generated: genZones, Historical: histZones, Similarity: round2(b.ZonePattern)},
		Spacing:        SpacingComparison{Generated: genGaps, Historical: histGaps, Similarity: round2(b.Spacing)},
		Breakdown:      b,
	}
}

// Grade maps a 0..100 score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	case score >= 45:
		return "D+"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

func directMatches(a, b []int) int {
	n := 0
	for _, v := range a {
		for _, w := range b {
			if v == w {
				n++
				break
			}
		}
	}
	return n
}

// zoneSimilarity is 100 minus the mean absolute difference of the two
// percentage distributions.
func zoneSimilarity(a, b Zones) float64 {
	ta, tb := a.total(), b.total()
	if ta == 0 || tb == 0 {
		return 0
	}
	pct := func(n, total int) float64 { return float64(n) / float64(total) * 100 }
	diff := math.Abs(pct(a.Low, ta)-pct(b.Low, tb)) +
		math.Abs(pct(a.Mid, ta)-pct(b.Mid, tb)) +
		math.Abs(pct(a.High, ta)-pct(b.High, tb))
	return math.Max(0, 100-diff/3)
}

// spacingSimilarity scores gap lists of equal length; unequal lengths score 0.
func spacingSimilarity(a, b []int) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	total := 0
	for i := range a {
		total += abs(a[i] - b[i])
	}
	avg := float64(total) / float64(len(a))
	return math.Max(0, 100-avg*5)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
