package fusion

import "errors"

// ErrUnknownAlgorithm is returned for an unrecognized fusion algorithm.
var ErrUnknownAlgorithm = errors.New("unknown fusion algorithm")
