package repository

import "errors"

// ErrNotFound is returned by point reads when no row matches.
var ErrNotFound = errors.New("not found")
