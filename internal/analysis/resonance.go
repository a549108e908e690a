package analysis

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

type signature struct {
	name     string
	sequence []int
}

var signatures = []signature{
	{"fibonacci", []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}},
	{"prime numbers", []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	{"perfect squares", []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}},
	{"triangular numbers", []int{1, 3, 6, 10, 15, 21, 28, 36, 45, 55}},
	{"powers of 2", []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}},
	{"catalan numbers", []int{1, 1, 2, 5, 14, 42, 132, 429, 1430, 4862}},
	{"lucky numbers", []int{1, 3, 7, 9, 13, 15, 21, 25, 31, 33}},
	{"happy numbers", []int{1, 7, 10, 13, 19, 23, 28, 31, 32, 44}},
}

// ExactMatches lists the values both sets share.
type ExactMatches struct {
	Count      int     `json:"count"`
	Numbers    []int   `json:"numbers"`
	Percentage float64 `json:"percentage"`
}

// PatternMatch compares the pattern labels of two sets.
type PatternMatch struct {
	Left       []string `json:"left"`
	Right      []string `json:"right"`
	Common     []string `json:"common"`
	Similarity float64  `json:"similarity"`
}

// Distance measures how far each left value is from its nearest right value.
type Distance struct {
	Average    float64 `json:"average"`
	Max        int     `json:"max"`
	Total      int     `json:"total"`
	Normalized float64 `json:"normalized"`
}

// Resonance groups the numerology-style comparisons.
type Resonance struct {
	Statistical  float64 `json:"statistical"`
	Harmonic     float64 `json:"harmonic"`
	DigitalRoots float64 `json:"digital_roots"`
	Phase        float64 `json:"phase"`
	Overall      float64 `json:"overall"`
}

// Coherence compares value entropy and a sine interference term.
type Coherence struct {
	LeftEntropy  float64 `json:"left_entropy"`
	RightEntropy float64 `json:"right_entropy"`
	Interference float64 `json:"interference"`
	Score        float64 `json:"score"`
}

// Comparison is a set-against-set report. Every score in it is a synthetic
// display value.
type Comparison struct {
	Exact     ExactMatches `json:"exact_matches"`
	Patterns  PatternMatch `json:"patterns"`
	Distance  Distance     `json:"distance"`
	Resonance Resonance    `json:"resonance"`
	Coherence Coherence    `json:"coherence"`
	Score     float64      `json:"score"`
	Insights  []string     `json:"insights"`
}

// CompareSets compares two arbitrary non-empty number sets. Weights are
// 40/25/20/10/5 for exact matches, shared patterns, distance, resonance and
// coherence.
func CompareSets(left, right []int) Comparison {
	c := Comparison{
		Exact:     exactMatches(left, right),
		Patterns:  patternMatch(left, right),
		Distance:  distance(left, right),
		Resonance: resonance(left, right),
		Coherence: coherence(left, right),
	}
	score := (c.Exact.Percentage/100*0.4 +
		c.Patterns.Similarity*0.25 +
		c.Distance.Normalized*0.2 +
		c.Resonance.Overall*0.1 +
		c.Coherence.Score*0.05) * 100
	c.Score = round2(math.Min(100, math.Max(0, score)))
	c.Insights = insights(c)
	return c
}

func exactMatches(left, right []int) ExactMatches {
	var m ExactMatches
	for _, v := range left {
		if slices.Contains(right, v) {
			m.Numbers = append(m.Numbers, v)
		}
	}
	m.Count = len(m.Numbers)
	if n := min(len(left), len(right)); n > 0 {
		m.Percentage = round2(float64(m.Count) / float64(n) * 100)
	}
	return m
}

func patternMatch(left, right []int) PatternMatch {
	p := PatternMatch{Left: patternLabels(left), Right: patternLabels(right)}
	for _, l := range p.Left {
		if slices.Contains(p.Right, l) {
			p.Common = append(p.Common, l)
		}
	}
	p.Similarity = float64(len(p.Common)) / float64(max(len(p.Left), len(p.Right), 1))
	return p
}

// patternLabels names the shape properties of a set.
func patternLabels(numbers []int) []string {
	var labels []string
	sorted := sortedCopy(numbers)

	if strictlyIncreasing(sorted) {
		labels = append(labels, "ascending", "descending")
	}
	if slices.Contains(spacing(sorted), 1) {
		labels = append(labels, "consecutive")
	}
	allEven, allOdd := true, true
	for _, n := range numbers {
		if n%2 == 0 {
			allOdd = false
		} else {
			allEven = false
		}
	}
	if allEven {
		labels = append(labels, "all_even")
	}
	if allOdd {
		labels = append(labels, "all_odd")
	}
	if isPalindrome(numbers) {
		labels = append(labels, "palindrome")
	}
	if isAlternating(sorted) {
		labels = append(labels, "alternating")
	}
	if sum(numbers)%7 == 0 {
		labels = append(labels, "sum_divisible_by_7")
	}
	for _, sig := range signatures {
		hits := 0
		for _, n := range numbers {
			if slices.Contains(sig.sequence, n) {
				hits++
			}
		}
		if hits >= 2 {
			labels = append(labels, "cosmic_"+sig.name)
		}
	}
	return labels
}

// strictlyIncreasing reports whether sorted has no repeated values; such a
// set is both ascending and descending once ordered each way.
func strictlyIncreasing(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] <= sorted[i-1] {
			return false
		}
	}
	return true
}

func isPalindrome(numbers []int) bool {
	var b strings.Builder
	for _, n := range numbers {
		fmt.Fprint(&b, n)
	}
	s := b.String()
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}

// isAlternating reports whether consecutive differences change sign. A sorted
// set never alternates; the check is kept for unsorted inputs.
func isAlternating(numbers []int) bool {
	if len(numbers) < 3 {
		return false
	}
	sign := func(v int) int {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	}
	for i := 2; i < len(numbers); i++ {
		if sign(numbers[i-1]-numbers[i-2]) == sign(numbers[i]-numbers[i-1]) {
			return false
		}
	}
	return true
}

func distance(left, right []int) Distance {
	var d Distance
	if len(left) == 0 || len(right) == 0 {
		return d
	}
	for _, a := range left {
		closest := math.MaxInt
		for _, b := range right {
			closest = min(closest, abs(a-b))
		}
		d.Total += closest
		d.Max = max(d.Max, closest)
	}
	avg := float64(d.Total) / float64(len(left))
	d.Average = round2(avg)
	d.Normalized = math.Max(0, 1-avg/50)
	return d
}

func resonance(left, right []int) Resonance {
	r := Resonance{
		Statistical:  statisticalSimilarity(left, right),
		Harmonic:     harmonic(left, right),
		DigitalRoots: digitalRootOverlap(left, right),
		Phase:        phase(left, right),
	}
	r.Overall = r.Statistical*0.3 + r.Harmonic*0.3 + r.DigitalRoots*0.2 + r.Phase*0.2
	return r
}

func meanVariance(numbers []int) (float64, float64) {
	mean := float64(sum(numbers)) / float64(len(numbers))
	var v float64
	for _, n := range numbers {
		d := float64(n) - mean
		v += d * d
	}
	return mean, v / float64(len(numbers))
}

func statisticalSimilarity(left, right []int) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	m1, v1 := meanVariance(left)
	m2, v2 := meanVariance(right)
	return math.Max(0, 1-(math.Abs(m1-m2)+math.Abs(v1-v2))/100)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// harmonic rewards pairs within a 2:1 ratio and pairs with a shared factor.
func harmonic(left, right []int) float64 {
	var score float64
	comparisons := 0
	for _, a := range left {
		for _, b := range right {
			comparisons++
			lo, hi := min(a, b), max(a, b)
			if lo > 0 && float64(hi)/float64(lo) <= 2 {
				score += 0.5
			}
			if g := gcd(abs(a), abs(b)); g > 1 {
				score += float64(g) / 10
			}
		}
	}
	if comparisons == 0 {
		return 0
	}
	return score / float64(comparisons)
}

func digitalRoot(n int) int {
	n = abs(n)
	for n >= 10 {
		s := 0
		for ; n > 0; n /= 10 {
			s += n % 10
		}
		n = s
	}
	return n
}

func digitalRootOverlap(left, right []int) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	roots := make([]int, len(right))
	for i, n := range right {
		roots[i] = digitalRoot(n)
	}
	common := 0
	for _, n := range left {
		if slices.Contains(roots, digitalRoot(n)) {
			common++
		}
	}
	return float64(common) / float64(max(len(left), len(right)))
}

func phase(left, right []int) float64 {
	p := func(numbers []int) float64 {
		var acc float64
		for i, n := range numbers {
			acc += float64(n) * math.Cos(float64(i)*math.Pi/3)
		}
		return acc
	}
	return math.Max(0, 1-math.Abs(p(left)-p(right))/1000)
}

func coherence(left, right []int) Coherence {
	c := Coherence{
		LeftEntropy:  shannon(left),
		RightEntropy: shannon(right),
		Interference: interference(left, right),
	}
	c.Score = math.Max(0, 1-math.Abs(c.LeftEntropy-c.RightEntropy)/5) * c.Interference
	return c
}

// shannon returns the entropy in bits of the value frequencies.
func shannon(numbers []int) float64 {
	if len(numbers) == 0 {
		return 0
	}
	freq := map[int]int{}
	for _, n := range numbers {
		freq[n]++
	}
	var h float64
	for _, c := range freq {
		p := float64(c) / float64(len(numbers))
		h -= p * math.Log2(p)
	}
	return h
}

func interference(left, right []int) float64 {
	n := min(len(left), len(right))
	if n == 0 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += math.Abs(math.Sin(float64(left[i])*math.Pi/35) + math.Sin(float64(right[i])*math.Pi/35))
	}
	return total / float64(n)
}

func insights(c Comparison) []string {
	var out []string
	if c.Exact.Count > 0 {
		parts := make([]string, len(c.Exact.Numbers))
		for i, n := range c.Exact.Numbers {
			parts[i] = fmt.Sprint(n)
		}
		out = append(out, fmt.Sprintf("%d exact matches: %s", c.Exact.Count, strings.Join(parts, ", ")))
	}
	if len(c.Patterns.Common) > 0 {
		out = append(out, "shared patterns: "+strings.Join(c.Patterns.Common, ", "))
	}
	if c.Resonance.Overall > 0.7 {
		out = append(out, "high resonance")
	}
	if c.Coherence.Score > 0.8 {
		out = append(out, "high coherence")
	}
	if c.Distance.Average < 5 {
		out = append(out, "numbers are numerically close")
	}
	switch {
	case c.Score > 80:
		out = append(out, "exceptional similarity")
	case c.Score > 60:
		out = append(out, "good similarity")
	case c.Score > 40:
		out = append(out, "moderate similarity")
	default:
		out = append(out, "low similarity")
	}
	return out
}
