package elo

import "errors"

// Sentinel kinds for configuration errors. Bad input data is never an error.
var (
	ErrInvalidConfig        = errors.New("invalid elo config")
	ErrEmptyVocabulary      = errors.New("dominance vocabulary is empty")
	ErrEmptyCode            = errors.New("dominance vocabulary contains an empty code")
	ErrUnsupportedDirection = errors.New("unsupported dominance direction")
)
