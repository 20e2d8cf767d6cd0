package kinematics

import "github.com/robotcell/cellsim/logging"

// Logger is the logger models are constructed with.
type Logger = logging.Logger
