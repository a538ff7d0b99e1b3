package client

import "errors"

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrDataLoss              = errors.New("data integrity check failed")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
