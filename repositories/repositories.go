package repositories

import "errors"

// ErrNotFound is returned when a lookup matches no document. Implementations
// translate driver sentinels (mongo.ErrNoDocuments) into it so callers never
// depend on the driver.
var ErrNotFound = errors.New("repositories: not found")
