package rosterdb

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("roster record not found")
