package moderation

import "errors"

var (
	ErrHWICBlocked      = errors.New("hwic is blocked")
	ErrRecordNotFound   = errors.New("record not found")
	ErrAlreadyProcessed = errors.New("record already processed")
	ErrInvalidStatus    = errors.New("invalid status")
)
