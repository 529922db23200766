package service

import "errors"

// Sentinel errors returned by the service layer.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrQueueFull         = errors.New("job queue full")
	ErrDuplicateSnapshot = errors.New("snapshot already submitted")
)
