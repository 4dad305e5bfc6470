package heritage

import "errors"

var (
	// ErrNilUpstream indicates New was called without an upstream.
	ErrNilUpstream = errors.New("heritage: nil upstream")

	// ErrInvalidResponse indicates an upstream body could not be decoded.
	ErrInvalidResponse = errors.New("heritage: invalid upstream response")

	// ErrObjectNotFound indicates an id lookup returned no hits.
	ErrObjectNotFound = errors.New("heritage: object not found")
)
