package sem

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNonFinite = errors.New("sem: matrix contains NaN or Inf")
	ErrShape     = errors.New("sem: shape mismatch")
	ErrEmpty     = errors.New("sem: empty data set")
)

//Quadratic is f(A) = 0.5*||A - Target||_F^2. Its gradient A - Target is 1-Lipschitz.
type Quadratic struct {
	Target *mat.Dense
}

func (o Quadratic) Gradient(a mat.Matrix) (*mat.Dense, error) {
	if err := o.check(a); err != nil {
		return nil, err
	}
	grad := &mat.Dense{}
	grad.Sub(a, o.Target)
	return grad, nil
}

func (o Quadratic) Loss(a mat.Matrix) (float64, error) {
	if err := o.check(a); err != nil {
		return 0, err
	}
	var diff mat.Dense
	diff.Sub(a, o.Target)
	norm := mat.Norm(&diff, 2)
	return 0.5 * norm * norm, nil
}

func (o Quadratic) check(a mat.Matrix) error {
	if o.Target == nil {
		return fmt.Errorf("%w: target is not set", ErrEmpty)
	}
	n, c := o.Target.Dims()
	if n != c {
		return fmt.Errorf("%w: target is %dx%d", ErrShape, n, c)
	}
	return checkMatrix(a, n)
}

//LeastSquares is the loss of the linear structural equation model X ≈ X·A:
//
//	f(A) = 1/(2m) * ||X - X·A||_F^2,   ∇f(A) = -1/m * Xᵀ(X - X·A)
//
//where X holds m samples (rows) of n variables (columns). Column j of X·A is the
//prediction of variable j from the other variables, so A[i][j] is the influence of i on j.
type LeastSquares struct {
	X *mat.Dense
}

//NewLeastSquares validates the data set.
func NewLeastSquares(x *mat.Dense) (*LeastSquares, error) {
	if x == nil {
		return nil, ErrEmpty
	}
	m, n := x.Dims()
	if m == 0 || n == 0 {
		return nil, ErrEmpty
	}
	if err := checkFinite(x); err != nil {
		return nil, err
	}
	return &LeastSquares{X: x}, nil
}

func (o LeastSquares) residual(a mat.Matrix) (*mat.Dense, error) {
	m, n := o.X.Dims()
	if err := checkMatrix(a, n); err != nil {
		return nil, err
	}
	residual := mat.NewDense(m, n, nil)
	residual.Mul(o.X, a)
	residual.Sub(o.X, residual)
	return residual, nil
}

func (o LeastSquares) Gradient(a mat.Matrix) (*mat.Dense, error) {
	residual, err := o.residual(a)
	if err != nil {
		return nil, err
	}
	m, n := o.X.Dims()
	grad := mat.NewDense(n, n, nil)
	grad.Mul(o.X.T(), residual)
	grad.Scale(-1/float64(m), grad)
	return grad, nil
}

func (o LeastSquares) Loss(a mat.Matrix) (float64, error) {
	residual, err := o.residual(a)
	if err != nil {
		return 0, err
	}
	m, _ := o.X.Dims()
	norm := mat.Norm(residual, 2)
	return norm * norm / (2 * float64(m)), nil
}

//Lipschitz returns the Lipschitz constant of the gradient, the largest eigenvalue of XᵀX/m.
//A step size of 1/Lipschitz() or less keeps plain gradient descent monotone.
func (o LeastSquares) Lipschitz() (float64, error) {
	m, n := o.X.Dims()
	gram := mat.NewSymDense(n, nil)
	gram.SymOuterK(1/float64(m), o.X.T())

	var eigen mat.EigenSym
	if ok := eigen.Factorize(gram, false); !ok {
		return 0, errors.New("sem: eigen decomposition of the gram matrix failed")
	}
	values := eigen.Values(nil)
	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, v)
	}
	return largest, nil
}

func checkMatrix(a mat.Matrix, n int) error {
	if a == nil {
		return fmt.Errorf("%w: nil matrix", ErrShape)
	}
	r, c := a.Dims()
	if r != n || c != n {
		return fmt.Errorf("%w: expected %dx%d, got %dx%d", ErrShape, n, n, r, c)
	}
	return checkFinite(a)
}

func checkFinite(a mat.Matrix) error {
	r, c := a.Dims()
	for p := 0; p < r; p++ {
		for q := 0; q < c; q++ {
			v := a.At(p, q)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: entry (%d,%d) = %g", ErrNonFinite, p, q, v)
			}
		}
	}
	return nil
}
