package inline

import "math"

// UnitsPerMM is the number of fixed-point units in one millimetre.
const UnitsPerMM = 1000

// Unbounded is used as the right edge of a segment that never overflows.
const Unbounded int64 = math.MaxInt64 / 4

// FromMM converts millimetres to fixed-point units, rounding to the nearest unit.
func FromMM(mm float64) int64 {
	return int64(math.Round(mm * UnitsPerMM))
}

// ToMM converts fixed-point units back to millimetres.
func ToMM(v int64) float64 {
	return float64(v) / UnitsPerMM
}
