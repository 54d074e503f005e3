package catalog

import "errors"

// ErrInvalidCatalog indicates the catalog YAML is malformed or incomplete.
var ErrInvalidCatalog = errors.New("invalid pricing catalog")
