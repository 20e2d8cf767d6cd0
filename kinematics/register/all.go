// Package register registers all kinematic topologies.
package register

import (
	// register topologies.
	_ "github.com/robotcell/cellsim/kinematics/portal"
	_ "github.com/robotcell/cellsim/kinematics/sixaxis"
)
