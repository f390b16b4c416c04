package wspr

import "errors"

// Error taxonomy per spec.md §7. Callers should use errors.Is against these
// sentinels rather than matching message text.
var (
	ErrInvalidInput     = errors.New("wspr: invalid input")
	ErrInsufficientData = errors.New("wspr: insufficient data")
	ErrArithmeticDomain = errors.New("wspr: arithmetic domain error")
)
