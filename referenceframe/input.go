// Package referenceframe defines the values that drive the actuated axes of a kinematic model.
package referenceframe

import (
	"github.com/robotcell/cellsim/utils"
)

// Input wraps the input to a mutable frame, e.g. a joint angle or a gantry position.
//   - revolute inputs should be in radians.
//   - prismatic inputs should be in mm.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// InputsToDegrees unwraps revolute Inputs into degrees, each wrapped onto (-180, 180].
func InputsToDegrees(inputs []Input) []float64 {
	wrapped := make([]float64, len(inputs))
	for i, in := range inputs {
		wrapped[i] = utils.WrapAngle(in.Value)
	}
	return utils.RadsToDegs(wrapped)
}
