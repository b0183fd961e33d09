package irt

import "errors"

// Sentinel errors for the irt package.
// Use errors.Is to check: errors.Is(err, irt.ErrInvalidParameter)
var (
	ErrInvalidParameter = errors.New("irt: invalid parameter")
	ErrBadResponse      = errors.New("irt: response out of category range")
)
