package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Resample linearly interpolates values, sampled at increasing times, onto
// n evenly spaced times spanning the same interval.
func Resample(times, values []float64, n int) []float64 {
	if len(times) == 0 || len(times) != len(values) || n <= 0 {
		return nil
	}
	if len(times) == 1 || n == 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = values[len(values)-1]
		}
		return out
	}

	t0, t1 := times[0], times[len(times)-1]
	out := make([]float64, n)
	j := 0
	for i := range out {
		t := t0 + (t1-t0)*float64(i)/float64(n-1)
		for j < len(times)-2 && times[j+1] < t {
			j++
		}
		span := times[j+1] - times[j]
		if span <= 0 {
			out[i] = values[j+1]
			continue
		}
		w := (t - times[j]) / span
		if w > 1 {
			w = 1
		}
		out[i] = values[j] + w*(values[j+1]-values[j])
	}
	return out
}

// Profile plots values against times.
func Profile(times, values []float64, width, height int, caption string) string {
	data := Resample(times, values, width)
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Sparkline renders values as a single row of block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}
