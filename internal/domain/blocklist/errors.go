package blocklist

import "errors"

var (
	ErrHWICRequired = errors.New("hwic is required")
)
