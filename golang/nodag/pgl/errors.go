package pgl

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidParameter reports a malformed Config, a negative threshold
	// or an unusable initial matrix. It is always returned before the oracle is called.
	ErrInvalidParameter = errors.New("pgl: invalid parameter")

	// ErrOracle is matched by every *OracleError.
	ErrOracle = errors.New("pgl: oracle failed")

	// ErrShapeMismatch reports a non-square matrix or a gradient whose shape differs from A.
	ErrShapeMismatch = errors.New("pgl: shape mismatch")

	// ErrNonFinite is wrapped into an OracleError when the oracle returns NaN or Inf.
	ErrNonFinite = errors.New("pgl: non-finite value")
)

//OracleError carries the state of the loop at the moment the oracle failed.
type OracleError struct {
	Op        string // "gradient" or "loss"
	Iteration int    // 1-based
	State     *mat.Dense
	Err       error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("pgl: oracle %s failed at iteration %d: %v", e.Op, e.Iteration, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

//Is makes errors.Is(err, ErrOracle) true for any OracleError.
func (e *OracleError) Is(target error) bool { return target == ErrOracle }

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func shapef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
