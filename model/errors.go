package model

import "errors"

// ErrNotFound reports that a lookup matched no record, as distinct from a record that was found but
// has nothing to report
var ErrNotFound = errors.New("not found")
