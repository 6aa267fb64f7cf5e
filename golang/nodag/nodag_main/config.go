package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/tarstars/nodag/golang/nodag/pgl"
)

//decodeConfig reads srcConfig into out. Files ending in .hcl are HCL, everything else is JSON.
func decodeConfig(srcConfig string, out interface{}) error {
	if strings.EqualFold(filepath.Ext(srcConfig), ".hcl") {
		if err := hclsimple.DecodeFile(srcConfig, nil, out); err != nil {
			return fmt.Errorf("config %s: %w", srcConfig, err)
		}
		return nil
	}

	file, err := os.Open(srcConfig)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("config %s: %w", srcConfig, err)
	}
	return nil
}

type LearnConfig struct {
	FileNameData    string     `json:"filename_data" hcl:"filename_data"`
	Names           []string   `json:"names" hcl:"names,optional"`
	Standardize     bool       `json:"standardize" hcl:"standardize,optional"`
	Init            string     `json:"init" hcl:"init,optional"` // "zeros" or "random"
	InitStddev      float64    `json:"init_stddev" hcl:"init_stddev,optional"`
	Seed            int        `json:"seed" hcl:"seed,optional"`
	ZeroDiagonal    bool       `json:"zero_diagonal" hcl:"zero_diagonal,optional"`
	Tolerance       float64    `json:"tolerance" hcl:"tolerance,optional"`
	FileNameModel   string     `json:"filename_model" hcl:"filename_model"`
	FileNameMatrix  string     `json:"filename_matrix" hcl:"filename_matrix,optional"`
	FigureType      string     `json:"figure_type" hcl:"figure_type,optional"`
	FileNamePicture string     `json:"filename_picture" hcl:"filename_picture,optional"`
	TraceCapacity   int        `json:"trace_capacity" hcl:"trace_capacity,optional"`
	FileNameTrace   string     `json:"filename_trace" hcl:"filename_trace,optional"`
	Optimizer       pgl.Config `json:"optimizer" hcl:"optimizer,block"`
}

type GraphConfig struct {
	ModelFileName   string  `json:"filename_model" hcl:"filename_model"`
	FigureType      string  `json:"figure_type" hcl:"figure_type"`
	PictureFileName string  `json:"filename_picture" hcl:"filename_picture"`
	Tolerance       float64 `json:"tolerance" hcl:"tolerance,optional"`
}

type LcurveConfig struct {
	ModelFileName         string `json:"filename_model" hcl:"filename_model"`
	LearningCurveFileName string `json:"filename_learning_curve" hcl:"filename_learning_curve"`
}

type EdgesConfig struct {
	ModelFileName string  `json:"filename_model" hcl:"filename_model"`
	Tolerance     float64 `json:"tolerance" hcl:"tolerance,optional"`
}

type SimulateConfig struct {
	FileNameAdjacency string  `json:"filename_adjacency" hcl:"filename_adjacency"`
	FileNameData      string  `json:"filename_data" hcl:"filename_data"`
	Samples           int     `json:"samples" hcl:"samples"`
	Noise             float64 `json:"noise" hcl:"noise"`
	Seed              int     `json:"seed" hcl:"seed,optional"`
}
