package repository

import "errors"

// ErrNotFound indicates the requested record does not exist. Moderation
// operations rely on it to distinguish a vanished row from a store failure.
var ErrNotFound = errors.New("repository: not found")
