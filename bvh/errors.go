package bvh

import "errors"

// ErrInvariant is wrapped by all errors returned by Index.Validate.
var ErrInvariant = errors.New("bvh: invariant violation")
