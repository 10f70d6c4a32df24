package banlist

import "errors"

var (
	ErrInvalidPagination = errors.New("invalid page or page_size")
)
