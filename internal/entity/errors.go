package entity

import "errors"

// ErrNotFound is the storage-level sentinel for a missing row. Repositories
// return it; services translate it into the transport-facing error kind.
var ErrNotFound = errors.New("entity not found")
