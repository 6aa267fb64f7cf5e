package pgl_test

import (
	"context"
	"fmt"

	"github.com/tarstars/nodag/golang/nodag/pgl"
	"gonum.org/v1/gonum/mat"
)

func ExampleProximalGradient() {
	target := mat.NewDense(2, 2, []float64{0, 2, 0, 0})
	oracle := pgl.OracleFuncs{
		GradientFunc: func(a mat.Matrix) (*mat.Dense, error) {
			var grad mat.Dense
			grad.Sub(a, target)
			return &grad, nil
		},
		LossFunc: func(a mat.Matrix) (float64, error) {
			var diff mat.Dense
			diff.Sub(a, target)
			norm := mat.Norm(&diff, 2)
			return 0.5 * norm * norm, nil
		},
	}

	a0, _ := pgl.Zeros(2)
	cfg := pgl.Config{MaxIters: 100, LambdaParam: 0.1, StepSize: 0.5, ConvThreshold: 1e-6}
	result, err := pgl.ProximalGradient(context.Background(), a0, cfg, oracle)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s, A[0][1] = %.2f, A[1][0] = %.2f\n", result.Status, result.Matrix.At(0, 1), result.Matrix.At(1, 0))
	// Output: converged, A[0][1] = 1.90, A[1][0] = 0.00
}
