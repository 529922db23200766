package repository

import "errors"

// Sentinel kinds for source errors.
var (
	ErrNotFound   = errors.New("colony not found")
	ErrOpenSource = errors.New("open source failed")
	ErrQuery      = errors.New("source query failed")
)
