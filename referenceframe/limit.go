package referenceframe

import (
	"math"

	"github.com/robotcell/cellsim/utils"
)

// Limit represents the limits of motion for a single actuated axis.
type Limit struct {
	Min float64
	Max float64
}

// Clamp bounds v to the limit. The second return is true when v had to be moved.
func (l Limit) Clamp(v float64) (float64, bool) {
	return utils.Clamp(v, l.Min, l.Max)
}

// UnboundedRevolute is the limit given to a revolute axis with no mechanical stop.
var UnboundedRevolute = Limit{Min: -2 * math.Pi, Max: 2 * math.Pi}
