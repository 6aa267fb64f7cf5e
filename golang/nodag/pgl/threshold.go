package pgl

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//SoftThreshold is the proximal operator of threshold*|x| applied elementwise:
//every entry is shrunk toward zero by threshold and clipped to exactly zero inside the band.
//The input is not modified.
func SoftThreshold(m mat.Matrix, threshold float64) (*mat.Dense, error) {
	if m == nil {
		return nil, invalidf("nil matrix")
	}
	if !isFinite(threshold) || threshold < 0 {
		return nil, invalidf("threshold must be a non-negative finite number, got %g", threshold)
	}

	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		return shrink(v, threshold)
	}, m)
	return out, nil
}

func shrink(v, threshold float64) float64 {
	magnitude := math.Abs(v) - threshold
	if magnitude <= 0 {
		return 0
	}
	return math.Copysign(magnitude, v)
}
