package sem

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/sbinet/npyio"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

//ReadNpy reads a two-dimensional float64 array from an npy file.
func ReadNpy(fileName string) (*mat.Dense, error) {
	log.Print("\ttry to load <", fileName, ">")
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("sem: %s: %w", fileName, err)
	}

	denseMat := &mat.Dense{}
	if err := r.Read(denseMat); err != nil {
		return nil, fmt.Errorf("sem: %s: %w", fileName, err)
	}
	return denseMat, nil
}

//WriteNpy stores m in an npy file.
func WriteNpy(fileName string, m *mat.Dense) (err error) {
	dst, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
	}()
	return npyio.Write(dst, m)
}

//Standardize returns a copy of x with every column shifted to zero mean.
func Standardize(x *mat.Dense) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n, nil)
	column := make([]float64, m)
	for q := 0; q < n; q++ {
		mat.Col(column, q, x)
		mean := stat.Mean(column, nil)
		for p := 0; p < m; p++ {
			out.Set(p, q, column[p]-mean)
		}
	}
	return out
}

//Simulate draws samples rows from the linear model X = X·A + E, E ~ N(0, noise²),
//that is X = E·(I - A)^-1. A has to leave I - A invertible, which holds for any DAG.
func Simulate(a *mat.Dense, samples int, noise float64, seed uint64) (*mat.Dense, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%w: samples must be positive, got %d", ErrEmpty, samples)
	}
	if math.IsNaN(noise) || math.IsInf(noise, 0) || noise < 0 {
		return nil, fmt.Errorf("sem: noise must be a non-negative finite number, got %g", noise)
	}
	n, c := a.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: adjacency matrix is %dx%d", ErrShape, n, c)
	}

	normal := distuv.Normal{Mu: 0, Sigma: noise, Src: rand.NewSource(seed)}
	e := mat.NewDense(samples, n, nil)
	for p := 0; p < samples; p++ {
		for q := 0; q < n; q++ {
			e.Set(p, q, normal.Rand())
		}
	}

	system := mat.NewDense(n, n, nil)
	system.Sub(eye(n), a)
	var inverse mat.Dense
	if err := inverse.Inverse(system); err != nil {
		return nil, fmt.Errorf("sem: I - A is not invertible: %w", err)
	}

	x := mat.NewDense(samples, n, nil)
	x.Mul(e, &inverse)
	return x, nil
}

func eye(n int) *mat.Dense {
	identity := mat.NewDense(n, n, nil)
	for p := 0; p < n; p++ {
		identity.Set(p, p, 1)
	}
	return identity
}
