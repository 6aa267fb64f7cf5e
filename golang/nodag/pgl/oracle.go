package pgl

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

//Oracle supplies the smooth part of the objective. Both methods must be
//deterministic and must not modify a.
type Oracle interface {
	Gradient(a mat.Matrix) (*mat.Dense, error)
	Loss(a mat.Matrix) (float64, error)
}

//OracleFuncs adapts a pair of plain functions to the Oracle interface.
type OracleFuncs struct {
	GradientFunc func(a mat.Matrix) (*mat.Dense, error)
	LossFunc     func(a mat.Matrix) (float64, error)
}

func (o OracleFuncs) Gradient(a mat.Matrix) (*mat.Dense, error) {
	if o.GradientFunc == nil {
		return nil, errors.New("pgl: gradient function is not set")
	}
	return o.GradientFunc(a)
}

func (o OracleFuncs) Loss(a mat.Matrix) (float64, error) {
	if o.LossFunc == nil {
		return 0, errors.New("pgl: loss function is not set")
	}
	return o.LossFunc(a)
}
