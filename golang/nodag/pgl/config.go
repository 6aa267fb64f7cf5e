package pgl

import (
	"bytes"
	"encoding/json"
	"math"
)

//Config collects the arguments of the optimiser. It is passed by value and never
//changed by the loop.
type Config struct {
	MaxIters      int     `json:"max_iters" hcl:"max_iters"`
	LambdaParam   float64 `json:"lambda_param" hcl:"lambda_param"`
	StepSize      float64 `json:"step_size" hcl:"step_size"`
	ConvThreshold float64 `json:"conv_threshold" hcl:"conv_threshold"`
}

//Validate checks every field and returns an error wrapping ErrInvalidParameter
//for the first violation found.
func (c Config) Validate() error {
	if c.MaxIters <= 0 {
		return invalidf("max_iters must be positive, got %d", c.MaxIters)
	}
	if !isFinite(c.StepSize) || c.StepSize <= 0 {
		return invalidf("step_size must be a positive finite number, got %g", c.StepSize)
	}
	if !isFinite(c.LambdaParam) || c.LambdaParam < 0 {
		return invalidf("lambda_param must be a non-negative finite number, got %g", c.LambdaParam)
	}
	if !isFinite(c.ConvThreshold) || c.ConvThreshold < 0 {
		return invalidf("conv_threshold must be a non-negative finite number, got %g", c.ConvThreshold)
	}
	return nil
}

//UnmarshalJSON requires all four fields to be present, an omitted field is not read as zero.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw struct {
		MaxIters      *int     `json:"max_iters"`
		LambdaParam   *float64 `json:"lambda_param"`
		StepSize      *float64 `json:"step_size"`
		ConvThreshold *float64 `json:"conv_threshold"`
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	switch {
	case raw.MaxIters == nil:
		return invalidf("max_iters is missing")
	case raw.LambdaParam == nil:
		return invalidf("lambda_param is missing")
	case raw.StepSize == nil:
		return invalidf("step_size is missing")
	case raw.ConvThreshold == nil:
		return invalidf("conv_threshold is missing")
	}
	*c = Config{
		MaxIters:      *raw.MaxIters,
		LambdaParam:   *raw.LambdaParam,
		StepSize:      *raw.StepSize,
		ConvThreshold: *raw.ConvThreshold,
	}
	return nil
}

//Threshold is the shrinkage applied by the proximal step.
func (c Config) Threshold() float64 {
	return c.LambdaParam * c.StepSize
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
