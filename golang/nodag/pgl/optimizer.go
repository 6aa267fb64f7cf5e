package pgl

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Status is the state of the optimiser. Converged and Exhausted are terminal.
type Status int

const (
	Running Status = iota
	Converged
	Exhausted
)

var statusNames = map[Status]string{
	Running:   "running",
	Converged: "converged",
	Exhausted: "exhausted",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("pgl: unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("pgl: unknown status %q", text)
}

//Result is what a finished run hands to the graph builder.
type Result struct {
	Matrix      *mat.Dense
	Status      Status
	Iterations  int
	Loss        float64
	LossHistory []float64
}

//Step performs one gradient step followed by the proximal step and returns a new matrix.
//a is left untouched.
func Step(a mat.Matrix, cfg Config, oracle Oracle, opts ...Option) (*mat.Dense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, invalidf("nil oracle")
	}
	if _, err := squareSize(a); err != nil {
		return nil, err
	}
	return step(a, cfg, oracle, 0, newOptions(opts).zeroDiagonal)
}

func step(a mat.Matrix, cfg Config, oracle Oracle, iteration int, zeroDiagonal bool) (*mat.Dense, error) {
	grad, err := oracle.Gradient(a)
	if err != nil {
		return nil, &OracleError{Op: "gradient", Iteration: iteration, State: mat.DenseCopyOf(a), Err: err}
	}
	if grad == nil {
		return nil, shapef("gradient is nil at iteration %d", iteration)
	}
	r, c := a.Dims()
	if gr, gc := grad.Dims(); gr != r || gc != c {
		return nil, shapef("gradient is %dx%d, matrix is %dx%d", gr, gc, r, c)
	}
	if p, q, found := firstNonFinite(grad); found {
		return nil, &OracleError{
			Op:        "gradient",
			Iteration: iteration,
			State:     mat.DenseCopyOf(a),
			Err:       fmt.Errorf("%w: gradient[%d][%d] = %g", ErrNonFinite, p, q, grad.At(p, q)),
		}
	}

	intermediate := mat.NewDense(r, c, nil)
	intermediate.Scale(cfg.StepSize, grad)
	intermediate.Sub(a, intermediate)

	next, err := SoftThreshold(intermediate, cfg.Threshold())
	if err != nil {
		return nil, err
	}
	if nr, nc := next.Dims(); nr != r || nc != c {
		return nil, shapef("thresholded matrix is %dx%d, matrix is %dx%d", nr, nc, r, c)
	}
	if zeroDiagonal {
		for p := 0; p < r; p++ {
			next.Set(p, p, 0)
		}
	}
	return next, nil
}

//ProximalGradient minimises f(A) + lambda_param*|A|_1 starting from a0.
//
//The run stops with Converged as soon as the absolute change of the loss between two
//iterations falls below ConvThreshold, or with Exhausted after MaxIters iterations.
//The change is absolute, so ConvThreshold has to be scaled with the magnitude of the loss.
//Exhausted is a normal outcome. Any oracle failure stops the run with an *OracleError.
//ctx is checked between iterations only.
func ProximalGradient(ctx context.Context, a0 mat.Matrix, cfg Config, oracle Oracle, opts ...Option) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if oracle == nil {
		return Result{}, invalidf("nil oracle")
	}
	n, err := squareSize(a0)
	if err != nil {
		return Result{}, err
	}
	o := newOptions(opts)
	if o.trace != nil && o.trace.n != n {
		return Result{}, shapef("trace holds %dx%d matrices, initial matrix is %dx%d", o.trace.n, o.trace.n, n, n)
	}

	a := mat.DenseCopyOf(a0)
	prevLoss := math.Inf(1)
	result := Result{
		Status:      Running,
		LossHistory: make([]float64, 0, min(cfg.MaxIters, 1024)),
	}

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("pgl: stopped before iteration %d: %w", iteration, err)
		}

		next, err := step(a, cfg, oracle, iteration, o.zeroDiagonal)
		if err != nil {
			return result, err
		}

		newLoss, err := oracle.Loss(next)
		if err != nil {
			return result, &OracleError{Op: "loss", Iteration: iteration, State: next, Err: err}
		}
		if !isFinite(newLoss) {
			return result, &OracleError{
				Op:        "loss",
				Iteration: iteration,
				State:     next,
				Err:       fmt.Errorf("%w: loss = %g", ErrNonFinite, newLoss),
			}
		}

		result.Matrix = next
		result.Iterations = iteration
		result.Loss = newLoss
		result.LossHistory = append(result.LossHistory, newLoss)
		if o.trace != nil {
			if err := o.trace.record(next, newLoss); err != nil {
				return result, err
			}
		}
		if o.logger != nil {
			o.logger.Printf("Iteration %d of %d: loss = %.6g, edges = %d\n", iteration, cfg.MaxIters, newLoss, countNonZeroOffDiagonal(next, n))
		}

		if math.Abs(newLoss-prevLoss) < cfg.ConvThreshold {
			result.Status = Converged
			return result, nil
		}
		if iteration >= cfg.MaxIters {
			result.Status = Exhausted
			return result, nil
		}
		a, prevLoss = next, newLoss
	}
}

func squareSize(a mat.Matrix) (int, error) {
	if a == nil {
		return 0, invalidf("nil initial matrix")
	}
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return 0, invalidf("empty initial matrix")
	}
	if r != c {
		return 0, shapef("adjacency matrix must be square, got %dx%d", r, c)
	}
	return r, nil
}

func firstNonFinite(m mat.Matrix) (int, int, bool) {
	r, c := m.Dims()
	for p := 0; p < r; p++ {
		for q := 0; q < c; q++ {
			if !isFinite(m.At(p, q)) {
				return p, q, true
			}
		}
	}
	return 0, 0, false
}

func countNonZeroOffDiagonal(m mat.Matrix, n int) int {
	count := 0
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p != q && m.At(p, q) != 0 {
				count++
			}
		}
	}
	return count
}
