package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSubscriber   = errors.New("user is not a channel subscriber")
	ErrNoCaption       = errors.New("media group has no caption")
	ErrUnknownProvider = errors.New("unknown model provider")
)
