package engine

// MapRange maps seed into [min, max] as seed mod size + min.
//
// The reduction is not uniform when size does not divide 2^32; low values are
// very slightly favoured. Ranges wider than 2^32 only ever yield values in
// [min, min+2^32). Callers must ensure min <= max; a reversed range returns
// min.
func MapRange(seed uint32, min, max int) int {
	if min >= max {
		return min
	}
	r := Range{Min: min, Max: max}
	return r.at(uint64(seed) % r.Size())
}
