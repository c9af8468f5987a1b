package library

import "errors"

// Index lookups and writes return these, wrapped with the failing operation.
var (
	ErrNotFound   = errors.New("asset index: not found")
	ErrDuplicate  = errors.New("asset index: path already indexed")
	ErrConstraint = errors.New("asset index: constraint violation")
)
