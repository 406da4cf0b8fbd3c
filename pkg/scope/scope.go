package scope

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// DefaultDepth is the default number of readings kept in the window.
const DefaultDepth = 512

// glyphs are the vertical bar levels of the sparkline, lowest first.
var glyphs = []rune("▁▂▃▄▅▆▇█")

// Trace keeps a rolling window of voltage readings and renders it as a one
// line sparkline.
type Trace struct {
	values  []float32
	display []float32 // reused by Render for downsampling
	depth   int
}

// NewTrace creates a trace holding up to depth readings.
func NewTrace(depth int) *Trace {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Trace{
		values:  make([]float32, 0, depth),
		display: make([]float32, 0, 256),
		depth:   depth,
	}
}

// Push appends one reading in millivolts, dropping the oldest one once the
// window is full.
func (t *Trace) Push(millivolts uint32) {
	if len(t.values) == t.depth {
		copy(t.values, t.values[1:])
		t.values = t.values[:len(t.values)-1]
	}
	t.values = append(t.values, float32(millivolts))
}

// Len returns the number of readings in the window.
func (t *Trace) Len() int {
	return len(t.values)
}

// Span returns the lowest and highest reading in the window.
func (t *Trace) Span() (lo, hi float32) {
	if len(t.values) == 0 {
		return 0, 0
	}
	lo, hi = t.values[0], t.values[0]
	for _, v := range t.values[1:] {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	return lo, hi
}

// Render draws the window as a sparkline at most width characters wide,
// scaled to the window span. A flat window draws at mid height. An empty
// window renders as an empty string.
func (t *Trace) Render(width int) string {
	if len(t.values) == 0 || width <= 0 {
		return ""
	}

	t.display = downsample(t.display, t.values, width)

	lo, hi := t.Span()
	span := hi - lo

	var b strings.Builder
	b.WriteString("Voltage history: ")
	for _, v := range t.display {
		level := len(glyphs) / 2
		if span > 0 {
			level = int(math32.Round((v - lo) / span * float32(len(glyphs)-1)))
		}
		b.WriteRune(glyphs[level])
	}
	fmt.Fprintf(&b, " [%d..%dmV]", uint32(lo), uint32(hi))

	return b.String()
}

// downsample decimates src to at most maxPoints values.
// Destination-based: reuses dst if it has sufficient capacity, otherwise
// allocates new. Returns the destination slice.
func downsample(dst, src []float32, maxPoints int) []float32 {
	if len(src) <= maxPoints {
		// Need to copy all values
		if cap(dst) >= len(src) {
			dst = dst[:len(src)]
			copy(dst, src)
			return dst
		}
		// dst too small, allocate new
		out := make([]float32, len(src))
		copy(out, src)
		return out
	}

	// Need to downsample
	if cap(dst) >= maxPoints {
		// Reuse dst
		dst = dst[:0] // Reset length but keep capacity
	} else {
		// Allocate new slice
		dst = make([]float32, 0, maxPoints)
	}

	// Calculate step size for decimation
	step := float32(len(src)) / float32(maxPoints)

	for i := 0; i < maxPoints; i++ {
		idx := int(float32(i) * step)
		if idx < len(src) {
			dst = append(dst, src[idx])
		}
	}

	return dst
}
