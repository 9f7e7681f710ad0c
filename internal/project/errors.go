package project

import "errors"

// ErrUnknownOption indicates a select value outside its closed option set.
var ErrUnknownOption = errors.New("value is not one of the allowed options")
