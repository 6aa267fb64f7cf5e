// SPDX-License-Identifier: Apache-2.0

package main

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"unsafe"

	"github.com/tarstars/nodag/golang/nodag/dgraph"
	"github.com/tarstars/nodag/golang/nodag/pgl"
	"github.com/tarstars/nodag/golang/nodag/sem"
	"gonum.org/v1/gonum/mat"
)

//learnedGraph is what a handle refers to.
type learnedGraph struct {
	config pgl.Config
	result pgl.Result
}

var (
	handleMu   sync.Mutex
	nextHandle uint64 = 1
	results           = make(map[uint64]*learnedGraph)

	logSilenceOnce sync.Once
)

//bridgeError is the message of the last failed call, read back through GetLastError.
var bridgeError struct {
	sync.Mutex
	message string
}

//fail records err and returns code, so exported functions can end with `return fail(err, code)`.
func fail[T any](err error, code T) T {
	bridgeError.Lock()
	bridgeError.message = err.Error()
	bridgeError.Unlock()
	return code
}

func clearError() {
	bridgeError.Lock()
	bridgeError.message = ""
	bridgeError.Unlock()
}

func storeResult(r *learnedGraph) uint64 {
	handleMu.Lock()
	defer handleMu.Unlock()
	handle := nextHandle
	results[handle] = r
	nextHandle++
	return handle
}

func fetchResult(handle C.ulonglong) (*learnedGraph, error) {
	handleMu.Lock()
	defer handleMu.Unlock()
	r, ok := results[uint64(handle)]
	if !ok {
		return nil, fmt.Errorf("pybridge: unknown result handle %d", uint64(handle))
	}
	return r, nil
}

//export FreeResult
func FreeResult(handle C.ulonglong) {
	handleMu.Lock()
	defer handleMu.Unlock()
	delete(results, uint64(handle))
}

//doubles views length C doubles at ptr as a Go slice without copying.
func doubles(ptr *C.double, length int) ([]float64, error) {
	switch {
	case length <= 0:
		return nil, fmt.Errorf("pybridge: length must be positive, got %d", length)
	case ptr == nil:
		return nil, errors.New("pybridge: null pointer")
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(ptr)), length), nil
}

//buildDense copies a row-major rows×cols C array into a new matrix.
func buildDense(ptr *C.double, rows, cols C.int) (*mat.Dense, error) {
	r, c := int(rows), int(cols)
	if r <= 0 || c <= 0 {
		return nil, fmt.Errorf("pybridge: invalid matrix dimensions %dx%d", r, c)
	}
	view, err := doubles(ptr, r*c)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(r, c, append([]float64(nil), view...)), nil
}

//export LearnGraph
func LearnGraph(
	dataPtr *C.double,
	rows C.int,
	cols C.int,
	initPtr *C.double,
	maxIters C.int,
	lambdaParam C.double,
	stepSize C.double,
	convThreshold C.double,
	zeroDiagonal C.int,
) C.ulonglong {
	clearError()
	logSilenceOnce.Do(func() {
		log.SetOutput(io.Discard)
	})

	x, err := buildDense(dataPtr, rows, cols)
	if err != nil {
		return fail(err, C.ulonglong(0))
	}
	oracle, err := sem.NewLeastSquares(x)
	if err != nil {
		return fail(err, C.ulonglong(0))
	}

	a0 := mat.NewDense(int(cols), int(cols), nil)
	if initPtr != nil {
		if a0, err = buildDense(initPtr, cols, cols); err != nil {
			return fail(err, C.ulonglong(0))
		}
	}

	cfg := pgl.Config{
		MaxIters:      int(maxIters),
		LambdaParam:   float64(lambdaParam),
		StepSize:      float64(stepSize),
		ConvThreshold: float64(convThreshold),
	}
	var opts []pgl.Option
	if zeroDiagonal != 0 {
		opts = append(opts, pgl.WithZeroDiagonal())
	}

	result, err := pgl.ProximalGradient(context.Background(), a0, cfg, oracle, opts...)
	if err != nil {
		return fail(err, C.ulonglong(0))
	}
	return C.ulonglong(storeResult(&learnedGraph{config: cfg, result: result}))
}

//export GetMatrix
func GetMatrix(handle C.ulonglong, outputPtr *C.double, n C.int) C.int {
	clearError()
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.int(1))
	}
	size, _ := r.result.Matrix.Dims()
	if int(n) != size {
		return fail(fmt.Errorf("pybridge: learned matrix is %dx%d, buffer is for %d", size, size, int(n)), C.int(2))
	}
	out, err := doubles(outputPtr, size*size)
	if err != nil {
		return fail(err, C.int(3))
	}
	for p := 0; p < size; p++ {
		mat.Row(out[p*size:(p+1)*size], p, r.result.Matrix)
	}
	return 0
}

//export GetStatus
func GetStatus(handle C.ulonglong) C.int {
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.int(-1))
	}
	return C.int(r.result.Status)
}

//export GetIterations
func GetIterations(handle C.ulonglong) C.int {
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.int(-1))
	}
	return C.int(r.result.Iterations)
}

//export GetLoss
func GetLoss(handle C.ulonglong) C.double {
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.double(math.NaN()))
	}
	return C.double(r.result.Loss)
}

//splitNames reads a comma separated list of variable names. NULL or "" means no names.
func splitNames(names *C.char) []string {
	if names == nil {
		return nil
	}
	if joined := C.GoString(names); joined != "" {
		return strings.Split(joined, ",")
	}
	return nil
}

//export SaveResult
func SaveResult(handle C.ulonglong, path, names *C.char) C.int {
	clearError()
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.int(1))
	}
	if err := dgraph.NewModel(r.config, r.result, splitNames(names)).Save(C.GoString(path)); err != nil {
		return fail(err, C.int(2))
	}
	return 0
}

//export RenderResult
func RenderResult(handle C.ulonglong, path, figureType, names *C.char, tolerance C.double) C.int {
	clearError()
	r, err := fetchResult(handle)
	if err != nil {
		return fail(err, C.int(1))
	}
	g, err := dgraph.Build(r.result.Matrix, float64(tolerance))
	if err != nil {
		return fail(err, C.int(2))
	}
	format := "svg"
	if figureType != nil {
		if requested := C.GoString(figureType); requested != "" {
			format = requested
		}
	}
	if err := g.Render(splitNames(names), format, C.GoString(path)); err != nil {
		return fail(err, C.int(3))
	}
	return 0
}

//GetLastError returns the message of the last failed call or NULL.
//The caller releases a non-NULL result with FreeCString.
//
//export GetLastError
func GetLastError() *C.char {
	bridgeError.Lock()
	defer bridgeError.Unlock()
	if bridgeError.message == "" {
		return nil
	}
	return C.CString(bridgeError.message)
}

//export FreeCString
func FreeCString(str *C.char) {
	C.free(unsafe.Pointer(str))
}

func main() {}
