package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the core. Every failure returned by the catalogs,
// scanner, release index and pipeline wraps exactly one of these, so callers
// can branch with errors.Is.
var (
	ErrNetwork       = errors.New("network error")
	ErrParse         = errors.New("unexpected payload")
	ErrAssetNotFound = errors.New("asset not found")
	ErrVerification  = errors.New("verification failed")
	ErrExtraction    = errors.New("extraction failed")
	ErrFilesystem    = errors.New("filesystem error")
)

var kinds = []error{
	ErrNetwork,
	ErrParse,
	ErrAssetNotFound,
	ErrVerification,
	ErrExtraction,
	ErrFilesystem,
}

// Wrap tags cause with kind. The message reads "<kind>: <msg>: <cause>".
func Wrap(kind error, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%w: %s", kind, msg)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, cause)
}

// Kind returns the taxonomy sentinel err carries, or nil.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Retryable reports whether re-issuing the same request may succeed.
// Network failures, digest mismatches and broken archives can be transient;
// everything else needs a fix on the caller's or the feed's side.
func Retryable(err error) bool {
	switch Kind(err) {
	case ErrNetwork, ErrVerification, ErrExtraction:
		return true
	default:
		return false
	}
}
