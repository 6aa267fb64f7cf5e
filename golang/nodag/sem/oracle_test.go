package sem

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tarstars/nodag/golang/nodag/pgl"
	"gonum.org/v1/gonum/mat"
)

func smallData() *mat.Dense {
	return mat.NewDense(5, 3, []float64{
		1.0, 2.1, -0.5,
		-0.3, 0.4, 1.2,
		0.8, 1.9, 0.1,
		-1.1, -2.0, 0.7,
		0.2, 0.3, -1.4,
	})
}

//numericGradient approximates the gradient with central differences.
func numericGradient(t *testing.T, o pgl.Oracle, a *mat.Dense) *mat.Dense {
	const h = 1e-6
	n, _ := a.Dims()
	grad := mat.NewDense(n, n, nil)
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			plus, minus := mat.DenseCopyOf(a), mat.DenseCopyOf(a)
			plus.Set(p, q, a.At(p, q)+h)
			minus.Set(p, q, a.At(p, q)-h)
			fPlus, err := o.Loss(plus)
			require.NoError(t, err)
			fMinus, err := o.Loss(minus)
			require.NoError(t, err)
			grad.Set(p, q, (fPlus-fMinus)/(2*h))
		}
	}
	return grad
}

func TestQuadraticGradient(t *testing.T) {
	o := Quadratic{Target: mat.NewDense(2, 2, []float64{0, 2, 0, 0})}
	a := mat.NewDense(2, 2, []float64{1, 0.5, -1, 0})

	grad, err := o.Gradient(a)
	require.NoError(t, err)
	require.True(t, mat.Equal(grad, mat.NewDense(2, 2, []float64{1, -1.5, -1, 0})))

	loss, err := o.Loss(a)
	require.NoError(t, err)
	require.InDelta(t, 0.5*(1+2.25+1), loss, 1e-12)
	require.True(t, mat.EqualApprox(grad, numericGradient(t, o, a), 1e-6))
}

func TestLeastSquaresGradientMatchesFiniteDifferences(t *testing.T) {
	o, err := NewLeastSquares(smallData())
	require.NoError(t, err)
	a := mat.NewDense(3, 3, []float64{
		0, 0.7, -0.2,
		0.1, 0, 0.4,
		-0.3, 0.2, 0,
	})

	grad, err := o.Gradient(a)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(grad, numericGradient(t, o, a), 1e-5), "got\n%v", mat.Formatted(grad))
}

func TestLeastSquaresLossAtZero(t *testing.T) {
	x := smallData()
	o, err := NewLeastSquares(x)
	require.NoError(t, err)

	loss, err := o.Loss(mat.NewDense(3, 3, nil))
	require.NoError(t, err)
	norm := mat.Norm(x, 2)
	require.InDelta(t, norm*norm/10, loss, 1e-12)
}

func TestLeastSquaresLipschitz(t *testing.T) {
	// columns are orthogonal with squared norms 4 and 16 over m = 4 rows
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		1, -2,
		1, 2,
		1, -2,
	})
	o, err := NewLeastSquares(x)
	require.NoError(t, err)
	l, err := o.Lipschitz()
	require.NoError(t, err)
	require.InDelta(t, 4.0, l, 1e-9)
}

func TestOraclesRejectBadInput(t *testing.T) {
	o, err := NewLeastSquares(smallData())
	require.NoError(t, err)

	_, err = o.Gradient(mat.NewDense(2, 2, nil))
	require.ErrorIs(t, err, ErrShape)

	bad := mat.NewDense(3, 3, nil)
	bad.Set(1, 2, math.NaN())
	_, err = o.Loss(bad)
	require.ErrorIs(t, err, ErrNonFinite)

	_, err = Quadratic{}.Loss(mat.NewDense(2, 2, nil))
	require.ErrorIs(t, err, ErrEmpty)

	wide := Quadratic{Target: mat.NewDense(2, 3, nil)}
	_, err = wide.Gradient(mat.NewDense(2, 2, nil))
	require.ErrorIs(t, err, ErrShape)
	_, err = wide.Loss(mat.NewDense(2, 2, nil))
	require.ErrorIs(t, err, ErrShape)

	_, err = NewLeastSquares(nil)
	require.ErrorIs(t, err, ErrEmpty)

	data := smallData()
	data.Set(0, 0, math.Inf(1))
	_, err = NewLeastSquares(data)
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestLeastSquaresFailureStopsTheLoop(t *testing.T) {
	o, err := NewLeastSquares(smallData())
	require.NoError(t, err)
	a0 := mat.NewDense(3, 3, nil)
	a0.Set(0, 1, math.Inf(1))
	cfg := pgl.Config{MaxIters: 10, LambdaParam: 0.1, StepSize: 0.1, ConvThreshold: 1e-8}

	_, err = pgl.ProximalGradient(context.Background(), a0, cfg, o)
	require.ErrorIs(t, err, pgl.ErrOracle)
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestNonSquareTargetStopsTheLoop(t *testing.T) {
	cfg := pgl.Config{MaxIters: 10, LambdaParam: 0.1, StepSize: 0.5, ConvThreshold: 1e-8}
	oracle := Quadratic{Target: mat.NewDense(2, 3, nil)}

	var err error
	require.NotPanics(t, func() {
		_, err = pgl.ProximalGradient(context.Background(), mat.NewDense(2, 2, nil), cfg, oracle)
	})
	var oracleErr *pgl.OracleError
	require.ErrorAs(t, err, &oracleErr)
	require.Equal(t, 1, oracleErr.Iteration)
	require.ErrorIs(t, err, ErrShape)
}

func TestLeastSquaresRecoversPlantedChain(t *testing.T) {
	truth := mat.NewDense(3, 3, []float64{
		0, 1.5, 0,
		0, 0, -1,
		0, 0, 0,
	})
	x, err := Simulate(truth, 2000, 1, 42)
	require.NoError(t, err)

	o, err := NewLeastSquares(Standardize(x))
	require.NoError(t, err)
	l, err := o.Lipschitz()
	require.NoError(t, err)

	cfg := pgl.Config{MaxIters: 5000, LambdaParam: 0.05, StepSize: 1 / l, ConvThreshold: 1e-10}
	result, err := pgl.ProximalGradient(context.Background(), mat.NewDense(3, 3, nil), cfg, o, pgl.WithZeroDiagonal())
	require.NoError(t, err)

	initial, err := o.Loss(mat.NewDense(3, 3, nil))
	require.NoError(t, err)
	require.Less(t, result.Loss, initial)
	require.Greater(t, result.Matrix.At(0, 1), 0.3)
	require.Less(t, result.Matrix.At(1, 2), -0.3)
	require.Less(t, math.Abs(result.Matrix.At(0, 2)), 0.05)
	for p := 0; p < 3; p++ {
		require.Equal(t, 0.0, result.Matrix.At(p, p))
	}
}

func TestNpyRoundTrip(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "data.npy")
	x := smallData()
	require.NoError(t, WriteNpy(fileName, x))

	back, err := ReadNpy(fileName)
	require.NoError(t, err)
	require.True(t, mat.Equal(x, back))

	_, err = ReadNpy(filepath.Join(t.TempDir(), "missing.npy"))
	require.Error(t, err)
}

func TestStandardize(t *testing.T) {
	out := Standardize(smallData())
	m, n := out.Dims()
	for q := 0; q < n; q++ {
		sum := 0.0
		for p := 0; p < m; p++ {
			sum += out.At(p, q)
		}
		require.InDelta(t, 0, sum, 1e-12)
	}
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := Simulate(mat.NewDense(2, 3, nil), 10, 1, 1)
	require.ErrorIs(t, err, ErrShape)
	_, err = Simulate(mat.NewDense(2, 2, nil), 0, 1, 1)
	require.ErrorIs(t, err, ErrEmpty)
	// a two-cycle with unit weights makes I - A singular
	_, err = Simulate(mat.NewDense(2, 2, []float64{0, 1, 1, 0}), 10, 1, 1)
	require.Error(t, err)
}
