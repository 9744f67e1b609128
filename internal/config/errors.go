package config

import "errors"

// ErrConfiguration marks an invalid or unsatisfiable configuration: an unknown
// packaging tool or naming scheme, or a required tool missing from PATH.
var ErrConfiguration = errors.New("configuration error")
