package smoketest

import "errors"

// Error constants.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrVerification = errors.New("response verification failed")
	ErrRunFailed    = errors.New("smoke run failed")
)
