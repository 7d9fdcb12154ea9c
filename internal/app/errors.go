package service

import "errors"

// ErrNotStarted is returned by Classify before Start succeeds.
var ErrNotStarted = errors.New("service not started")
