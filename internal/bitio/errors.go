package bitio

import "errors"

// Sentinel errors returned by Writer and Reader. Callers higher up the
// stack map these to the package-level Kind taxonomy via errors.Is.
var (
	ErrInvalidArgument  = errors.New("bitio: invalid argument")
	ErrResourceExhausted = errors.New("bitio: resource exhausted")
)
