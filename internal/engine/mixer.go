package engine

import "math/bits"

// Mixing constants applied after each rotation.
const (
	mixConst1 = 0x9E3779B9
	mixConst2 = 0x6C078965
	mixConst3 = 0xB5297A4D
)

// Mix folds any number of entropy words into one seed: XOR of all inputs,
// then three rotate-left/XOR rounds (13, 17, 5). Mix is pure. A source that
// was absent should be passed as zero; it simply adds nothing to the XOR.
func Mix(values ...uint32) uint32 {
	var seed uint32
	for _, v := range values {
		seed ^= v
	}
	seed = bits.RotateLeft32(seed, 13) ^ mixConst1
	seed = bits.RotateLeft32(seed, 17) ^ mixConst2
	seed = bits.RotateLeft32(seed, 5) ^ mixConst3
	return seed
}
