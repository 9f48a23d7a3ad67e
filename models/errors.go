package models

import "errors"

var (
	ErrDuplicateVideo = errors.New("video already registered")
	ErrInvalidLogin   = errors.New("invalid username or password")
)
