package dao

import "errors"

// Sentinel errors shared by every store backend; callers match them with
// errors.Is.
var (
	ErrNotFound      = errors.New("dao: not found")
	ErrInvalidID     = errors.New("dao: invalid id")
	ErrNilEntity     = errors.New("dao: nil entity")
	ErrAlreadyExists = errors.New("dao: already exists")
)
