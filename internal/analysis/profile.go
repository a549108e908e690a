package analysis

import (
	"math"
	"slices"
)

// Zone boundaries over the 1..69 main range.
const (
	lowZoneMax = 23
	midZoneMax = 46
)

// Zones counts numbers per third of the main range.
type Zones struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

func (z Zones) total() int { return z.Low + z.Mid + z.High }

// Patterns lists the structural patterns detected in a set.
type Patterns struct {
	Arithmetic bool        `json:"arithmetic"`
	Geometric  bool        `json:"geometric"`
	Fibonacci  bool        `json:"fibonacci"`
	Multiples  map[int]int `json:"multiples"`
}

// Profile summarises a single set of main numbers.
type Profile struct {
	Sum         int      `json:"sum"`
	Range       int      `json:"range"`
	Average     float64  `json:"average"`
	Zones       Zones    `json:"zones"`
	Spacing     []int    `json:"spacing"`
	Consecutive bool     `json:"is_consecutive"`
	Patterns    Patterns `json:"patterns"`
	EvenCount   int      `json:"even_count"`
	OddCount    int      `json:"odd_count"`
	PrimeCount  int      `json:"prime_count"`
}

// NewProfile computes the profile of numbers. An empty set yields a zero
// profile.
func NewProfile(numbers []int) Profile {
	if len(numbers) == 0 {
		return Profile{Patterns: Patterns{Multiples: map[int]int{}}}
	}
	sorted := sortedCopy(numbers)
	p := Profile{
		Sum:     sum(numbers),
		Range:   sorted[len(sorted)-1] - sorted[0],
		Zones:   zonesOf(numbers),
		Spacing: spacing(numbers),
		Patterns: Patterns{
			Arithmetic: isArithmetic(sorted),
			Geometric:  isGeometric(sorted),
			Fibonacci:  containsAny(numbers, fibonacci),
			Multiples:  multiples(numbers),
		},
	}
	p.Average = round2(float64(p.Sum) / float64(len(numbers)))
	p.Consecutive = slices.Contains(p.Spacing, 1)
	for _, n := range numbers {
		if n%2 == 0 {
			p.EvenCount++
		} else {
			p.OddCount++
		}
		if isPrime(n) {
			p.PrimeCount++
		}
	}
	return p
}

var fibonacci = []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}

func zonesOf(numbers []int) Zones {
	var z Zones
	for _, n := range numbers {
		switch {
		case n <= lowZoneMax:
			z.Low++
		case n <= midZoneMax:
			z.Mid++
		default:
			z.High++
		}
	}
	return z
}

// spacing returns the gaps between consecutive sorted values.
func spacing(numbers []int) []int {
	sorted := sortedCopy(numbers)
	gaps := make([]int, 0, max(len(sorted)-1, 0))
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i]-sorted[i-1])
	}
	return gaps
}

func isArithmetic(sorted []int) bool {
	if len(sorted) < 3 {
		return false
	}
	diff := sorted[1] - sorted[0]
	for i := 2; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != diff {
			return false
		}
	}
	return true
}

func isGeometric(sorted []int) bool {
	if len(sorted) < 3 || sorted[0] == 0 {
		return false
	}
	ratio := float64(sorted[1]) / float64(sorted[0])
	for i := 2; i < len(sorted); i++ {
		if sorted[i-1] == 0 || math.Abs(float64(sorted[i])/float64(sorted[i-1])-ratio) > 0.001 {
			return false
		}
	}
	return true
}

// multiples maps each divisor in 2..10 to how many numbers it divides, when
// it divides at least two.
func multiples(numbers []int) map[int]int {
	out := map[int]int{}
	for d := 2; d <= 10; d++ {
		count := 0
		for _, n := range numbers {
			if n%d == 0 {
				count++
			}
		}
		if count >= 2 {
			out[d] = count
		}
	}
	return out
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for i := 3; i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

func containsAny(numbers, set []int) bool {
	for _, n := range numbers {
		if slices.Contains(set, n) {
			return true
		}
	}
	return false
}

func sortedCopy(numbers []int) []int {
	out := slices.Clone(numbers)
	slices.Sort(out)
	return out
}

func sum(numbers []int) int {
	total := 0
	for _, n := range numbers {
		total += n
	}
	return total
}
