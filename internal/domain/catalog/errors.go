package catalog

import "errors"

// Sentinel kinds for catalog construction errors.
var (
	ErrEmpty         = errors.New("catalog is empty")
	ErrInvalidGame   = errors.New("invalid game")
	ErrDuplicateGame = errors.New("duplicate game")
)
