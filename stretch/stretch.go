// Package stretch implements the tone-mapping transforms used to render raw
// linear pixel data for previews and thumbnails. All functions take and
// return slices of intensities; outputs are in [0, 1].
package stretch

import (
	"awi/models"
	"math"
	"sort"
)

// STFParams are the Screen Transfer Function parameters.
type STFParams struct {
	ShadowClip      float64
	HighlightClip   float64
	MidtonesBalance float64
	Strength        float64
}

// Apply stretches data with the transform selected by s.
// Custom stretches have no transform of their own and render as linear.
func Apply(s models.FolderStretchSettings, data []float64) []float64 {
	if s.StretchType == models.StretchPixInsightSTF {
		return STF(data, STFParams{
			ShadowClip:      s.STFShadowClip,
			HighlightClip:   s.STFHighlightClip,
			MidtonesBalance: s.STFMidtonesBalance,
			Strength:        s.STFStrength,
		})
	}
	return Linear(data, s.LinearLowPercent, s.LinearHighPercent)
}

// Linear clips data to the [lowPercent, highPercent] percentile range and
// rescales it to [0, 1]. NaN samples are ignored when computing percentiles
// and map to 0. A degenerate range yields all zeros.
func Linear(data []float64, lowPercent, highPercent float64) []float64 {
	out := make([]float64, len(data))

	sorted := finiteSorted(data)
	if len(sorted) == 0 {
		return out
	}
	low := percentile(sorted, lowPercent)
	high := percentile(sorted, highPercent)
	if high <= low {
		return out
	}

	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		out[i] = clamp01((v - low) / (high - low))
	}
	return out
}

// STF normalizes data to its min/max range, applies shadow/highlight clipping,
// a midtones gamma and finally the strength adjustment.
func STF(data []float64, p STFParams) []float64 {
	out := make([]float64, len(data))

	lo, hi, ok := finiteRange(data)
	if !ok || hi <= lo {
		return out
	}

	clip := p.ShadowClip > 0 || p.HighlightClip > 0
	shadow, highlight := p.ShadowClip, 1-p.HighlightClip
	if clip && highlight <= shadow {
		return out
	}
	gamma := midtonesGamma(p.MidtonesBalance)

	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		orig := (v - lo) / (hi - lo)
		n := orig
		if clip {
			n = clamp01((n - shadow) / (highlight - shadow))
		}
		if gamma != 1 {
			n = math.Pow(n, gamma)
		}
		switch {
		case p.Strength < 1:
			n = p.Strength*n + (1-p.Strength)*orig
		case p.Strength > 1:
			n = math.Pow(n, 1/p.Strength)
		}
		out[i] = clamp01(n)
	}
	return out
}

// midtonesGamma maps a midtones balance in [0, 1] to a power-law exponent:
// below 0.5 darkens (gamma up to 5.5), above 0.5 lightens.
func midtonesGamma(m float64) float64 {
	switch {
	case m < 0.5:
		return 1 + 9*(0.5-m)
	case m > 0.5:
		return 1 / (1 + 9*(m-0.5))
	}
	return 1
}

// ToUint8 quantizes stretched data to 8 bits.
func ToUint8(data []float64) []uint8 {
	out := make([]uint8, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		out[i] = uint8(clamp01(v) * 255)
	}
	return out
}

const (
	DefaultCurveSamples = 64
	MinCurveSamples     = 2
	MaxCurveSamples     = 1024
)

// Curve samples the transfer function of s over an evenly spaced ramp in [0, 1].
// samples is clamped to [MinCurveSamples, MaxCurveSamples].
func Curve(s models.FolderStretchSettings, samples int) (input, output []float64) {
	samples = min(max(samples, MinCurveSamples), MaxCurveSamples)
	input = make([]float64, samples)
	for i := range input {
		input[i] = float64(i) / float64(samples-1)
	}
	return input, Apply(s, input)
}

func finiteSorted(data []float64) []float64 {
	sorted := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	return sorted
}

func finiteRange(data []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// percentile interpolates linearly between the closest ranks of sorted,
// matching numpy's default method. p is clamped to [0, 100].
func percentile(sorted []float64, p float64) float64 {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Min(math.Max(p, 0), 100)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
