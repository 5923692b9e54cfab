package models

import "errors"

// Custom errors
var (
	ErrMissingColumns = errors.New("required columns missing")
	ErrInvalidOdds    = errors.New("odds must be greater than 1.0")
	ErrNotFound       = errors.New("record not found")
	ErrNoTrainingData = errors.New("no training samples available")
)
