// Package bits implements the pure bit-reinterpretation helpers the
// simulator needs to match a hardware FPU bit-for-bit: IEEE-754
// float/double encodings and the 64-bit word split/join used by the
// long_* opcodes.
package bits

import "math"

// FloatToBits returns the IEEE-754 single-precision bit pattern of f,
// reinterpreted as a signed 32-bit integer.
func FloatToBits(f float32) int32 {
	return int32(math.Float32bits(f))
}

// BitsToFloat is the inverse of FloatToBits.
func BitsToFloat(i int32) float32 {
	return math.Float32frombits(uint32(i))
}

// DoubleToBits returns the IEEE-754 double-precision bit pattern of d.
func DoubleToBits(d float64) uint64 {
	return math.Float64bits(d)
}

// BitsToDouble is the inverse of DoubleToBits.
func BitsToDouble(u uint64) float64 {
	return math.Float64frombits(u)
}

// JoinWords combines a high and low 32-bit half into a signed 64-bit
// word: (hi << 32) | (lo & 0xffffffff).
func JoinWords(hi, lo int32) int64 {
	return int64(uint64(uint32(hi))<<32 | uint64(uint32(lo)))
}

// SplitWord splits a signed 64-bit word into (high, low) 32-bit halves,
// each reinterpreted as signed.
func SplitWord(w int64) (hi, lo int32) {
	u := uint64(w)
	return int32(uint32(u >> 32)), int32(uint32(u))
}

// JoinDoubleBits packs a hi/lo 32-bit register pair into the uint64 bit
// pattern a double occupies in a_hi:a_lo (or b_hi:b_lo).
func JoinDoubleBits(hi, lo int32) uint64 {
	return uint64(JoinWords(hi, lo))
}

// SplitDoubleBits is the inverse of JoinDoubleBits.
func SplitDoubleBits(bits uint64) (hi, lo int32) {
	return SplitWord(int64(bits))
}
