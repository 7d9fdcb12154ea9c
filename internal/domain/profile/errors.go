package profile

import "errors"

// ErrOutOfRange marks a profile with a numeric field outside its capture bounds.
var ErrOutOfRange = errors.New("profile field out of range")
