package repository

import "errors"

var (
	// ErrImageNotFound indicates the image is not in the working set
	ErrImageNotFound = errors.New("image not found in working set")

	// ErrSessionNotFound indicates no working set exists for the session
	ErrSessionNotFound = errors.New("session not found")
)
