package errvalues

import "errors"

var (
	ErrEmptyTitle       = errors.New("title required")
	ErrTitleTooLong     = errors.New("title too long")
	ErrTaskNotFound     = errors.New("task doesn't exist")
	ErrWrongCredentials = errors.New("invalid credentials")
	ErrInvalidToken     = errors.New("invalid token")
)
