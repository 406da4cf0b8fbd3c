package result

import "github.com/chewxy/math32"

const (
	// MinAverageCount is the smallest supported accumulator depth.
	MinAverageCount AverageCount = 1
	// MaxAverageCount is the deepest averaging the accumulator supports.
	MaxAverageCount AverageCount = 256
)

// AverageCount is the number of conversions accumulated into one result.
// A valid count is a power of two between MinAverageCount and
// MaxAverageCount.
type AverageCount int32

// Halve returns the next lower count. The minimum saturates instead of
// dropping to zero.
func (c AverageCount) Halve() AverageCount {
	if c <= MinAverageCount {
		return MinAverageCount
	}
	return c / 2
}

// Double returns the next higher count, saturating at the maximum.
func (c AverageCount) Double() AverageCount {
	if c >= MaxAverageCount {
		return MaxAverageCount
	}
	return c * 2
}

// Valid reports whether the count is a power of two within the supported
// range.
func (c AverageCount) Valid() bool {
	return c >= MinAverageCount && c <= MaxAverageCount && c&(c-1) == 0
}

// Shift returns log2 of the count, the right shift that turns an
// accumulated sum back into a single code.
func (c AverageCount) Shift() uint8 {
	return uint8(math32.Log2(float32(c)))
}
