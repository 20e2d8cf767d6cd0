package referenceframe

import "github.com/pkg/errors"

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match
// the number of actuated axes of the model it is given to.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewIncorrectLengthCountError returns an error indicating that a link length list has the wrong size.
func NewIncorrectLengthCountError(actual int, expected ...int) error {
	if len(expected) == 1 {
		return errors.Errorf("expected %d link lengths but got %d", expected[0], actual)
	}
	return errors.Errorf("expected one of %v link lengths but got %d", expected, actual)
}
