package pgl

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

//Trace keeps the iterates of one run in a (capacity, n, n) tensor together with their losses.
//Iterates beyond capacity are not stored, their losses still are.
type Trace struct {
	n        int
	capacity int
	count    int
	iterates *tensor.Dense
	losses   []float64
}

//NewTrace allocates room for capacity iterates of an n×n matrix.
func NewTrace(capacity, n int) (*Trace, error) {
	if capacity <= 0 || n <= 0 {
		return nil, invalidf("trace needs positive capacity and size, got %d and %d", capacity, n)
	}
	return &Trace{
		n:        n,
		capacity: capacity,
		iterates: tensor.New(tensor.WithShape(capacity, n, n), tensor.Of(tensor.Float64)),
		losses:   make([]float64, 0, capacity),
	}, nil
}

func (t *Trace) record(a mat.Matrix, loss float64) error {
	t.losses = append(t.losses, loss)
	if t.count >= t.capacity {
		return nil
	}
	r, c := a.Dims()
	if r != t.n || c != t.n {
		return shapef("trace holds %dx%d matrices, got %dx%d", t.n, t.n, r, c)
	}
	for p := 0; p < t.n; p++ {
		for q := 0; q < t.n; q++ {
			if err := t.iterates.SetAt(a.At(p, q), t.count, p, q); err != nil {
				return err
			}
		}
	}
	t.count++
	return nil
}

//Len is the number of stored iterates.
func (t *Trace) Len() int { return t.count }

//Losses returns the loss of every recorded iteration, including those past capacity.
func (t *Trace) Losses() []float64 {
	return append([]float64(nil), t.losses...)
}

//Iterate returns a copy of the k-th stored iterate (0-based).
func (t *Trace) Iterate(k int) (*mat.Dense, error) {
	if k < 0 || k >= t.count {
		return nil, fmt.Errorf("pgl: iterate %d out of range [0, %d)", k, t.count)
	}
	out := mat.NewDense(t.n, t.n, nil)
	for p := 0; p < t.n; p++ {
		for q := 0; q < t.n; q++ {
			v, err := t.iterates.At(k, p, q)
			if err != nil {
				return nil, err
			}
			out.Set(p, q, v.(float64))
		}
	}
	return out, nil
}

//Flatten returns the stored iterates as a Len()×n² matrix, one row-major iterate per row.
func (t *Trace) Flatten() (*mat.Dense, error) {
	if t.count == 0 {
		return nil, fmt.Errorf("pgl: trace is empty")
	}
	data, ok := t.iterates.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("pgl: trace backing is %T", t.iterates.Data())
	}
	size := t.n * t.n
	return mat.NewDense(t.count, size, append([]float64(nil), data[:t.count*size]...)), nil
}
