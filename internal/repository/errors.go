package repository

import "errors"

// ErrNotConfigured is returned by stores constructed without a database pool.
var ErrNotConfigured = errors.New("repository: database not configured")
