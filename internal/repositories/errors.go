package repositories

import "errors"

// ErrNotFound reports a missing item or user record. Callers test for it
// with errors.Is; everything else from a repository is a backend failure.
var ErrNotFound = errors.New("record not found")
