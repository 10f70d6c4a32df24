package admin

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
)
