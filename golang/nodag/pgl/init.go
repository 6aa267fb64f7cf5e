package pgl

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//Zeros is the default initialisation: an n×n matrix without edges.
func Zeros(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, invalidf("matrix size must be positive, got %d", n)
	}
	return mat.NewDense(n, n, nil), nil
}

//RandomNormal fills the off-diagonal entries with N(0, stddev²) samples drawn from a
//source seeded with seed. The diagonal stays zero.
func RandomNormal(n int, stddev float64, seed uint64) (*mat.Dense, error) {
	if n <= 0 {
		return nil, invalidf("matrix size must be positive, got %d", n)
	}
	if !isFinite(stddev) || stddev <= 0 {
		return nil, invalidf("stddev must be a positive finite number, got %g", stddev)
	}

	normal := distuv.Normal{Mu: 0, Sigma: stddev, Src: rand.NewSource(seed)}
	a := mat.NewDense(n, n, nil)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p != q {
				a.Set(p, q, normal.Rand())
			}
		}
	}
	return a, nil
}
