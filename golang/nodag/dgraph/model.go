package dgraph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tarstars/nodag/golang/nodag/pgl"
	"gonum.org/v1/gonum/mat"
)

//Model is a finished run as it is stored on disk.
type Model struct {
	Config      pgl.Config  `json:"config"`
	Status      pgl.Status  `json:"status"`
	Iterations  int         `json:"iterations"`
	Loss        float64     `json:"loss"`
	LossHistory []float64   `json:"loss_history"`
	Matrix      [][]float64 `json:"matrix"`
	Names       []string    `json:"names,omitempty"`
}

//NewModel captures the result of a run.
func NewModel(cfg pgl.Config, result pgl.Result, names []string) Model {
	return Model{
		Config:      cfg,
		Status:      result.Status,
		Iterations:  result.Iterations,
		Loss:        result.Loss,
		LossHistory: append([]float64(nil), result.LossHistory...),
		Matrix:      rows(result.Matrix),
		Names:       names,
	}
}

//Dense converts the stored matrix back to gonum.
func (model Model) Dense() (*mat.Dense, error) {
	n := len(model.Matrix)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrNotSquare)
	}
	a := mat.NewDense(n, n, nil)
	for p, row := range model.Matrix {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, p, len(row), n)
		}
		a.SetRow(p, row)
	}
	return a, nil
}

//Graph builds the edge set of the stored matrix.
func (model Model) Graph(tolerance float64) (Graph, error) {
	a, err := model.Dense()
	if err != nil {
		return Graph{}, err
	}
	return Build(a, tolerance)
}

func (model Model) Save(filename string) (err error) {
	dest, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()

	modelByteRepr, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	_, err = dest.Write(modelByteRepr)
	return err
}

func LoadModel(filename string) (model Model, err error) {
	source, err := os.Open(filename)
	if err != nil {
		return Model{}, err
	}
	defer source.Close()

	if err := json.NewDecoder(source).Decode(&model); err != nil {
		return Model{}, fmt.Errorf("dgraph: %s: %w", filename, err)
	}
	return model, nil
}

//LearningCurveDump is the on-disk form of the loss history.
type LearningCurveDump struct {
	Status     pgl.Status `json:"status"`
	Iterations int        `json:"iterations"`
	Values     []float64  `json:"values"`
}

//DumpLearningCurve writes the loss of every iteration to filename.
func (model Model) DumpLearningCurve(filename string) error {
	bytesResult, err := json.MarshalIndent(LearningCurveDump{
		Status:     model.Status,
		Iterations: model.Iterations,
		Values:     model.LossHistory,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytesResult, 0o644)
}

func rows(a *mat.Dense) [][]float64 {
	if a == nil {
		return nil
	}
	r, _ := a.Dims()
	out := make([][]float64, r)
	for p := 0; p < r; p++ {
		out[p] = mat.Row(nil, p, a)
	}
	return out
}
