package service

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateSubmit = errors.New("duplicate submit")
)
