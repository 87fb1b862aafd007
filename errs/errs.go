// Package errs defines the sentinel errors returned by the region engine.
//
// Errors are wrapped with context using fmt.Errorf and the %w verb, so callers
// should match them with errors.Is:
//
//	data, ok, err := r.Chunk(x, z)
//	if errors.Is(err, errs.ErrFormat) {
//	    // the container is corrupt, regenerate or report
//	}
//
// I/O errors from the underlying filesystem are never replaced by these
// sentinels; they surface unchanged (possibly wrapped with context).
package errs

import "errors"

// Format errors. Every refinement below also matches ErrFormat.
var (
	// ErrFormat reports a malformed container: bad table entry, unknown compression
	// id, truncated payload or a tree that could not be decoded.
	ErrFormat = errors.New("region: malformed data")

	ErrInvalidLocation      = formatError("region: invalid location entry")
	ErrUnknownCompression   = formatError("region: unknown compression id")
	ErrInvalidPayloadLength = formatError("region: invalid payload length")
	ErrTruncatedHeader      = formatError("region: truncated region header")
	ErrInvalidHeaderSize    = formatError("region: invalid header size")
	ErrTreeDecode           = formatError("region: tree decode failed")
)

var (
	// ErrOutOfRange reports a sector offset or sector count that cannot be encoded
	// in a 4-byte location entry.
	ErrOutOfRange = errors.New("region: value out of range")

	// ErrInvalidArgument reports a caller error such as saving with a scheme that
	// has no on-disk id.
	ErrInvalidArgument = errors.New("region: invalid argument")
)

type refinedError struct {
	msg string
}

func formatError(msg string) error {
	return &refinedError{msg: msg}
}

func (e *refinedError) Error() string { return e.msg }

// Is lets every refinement match ErrFormat.
func (e *refinedError) Is(target error) bool {
	return target == ErrFormat
}
