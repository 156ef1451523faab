package assetstream

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when operating on a closed Manager.
	ErrClosed = errors.New("assetstream: manager closed")

	// ErrTooManyAssets is returned when the id space configured by MaxAssets is exhausted.
	ErrTooManyAssets = errors.New("assetstream: too many assets")

	// ErrInvalidAssetID is returned for ids that were never handed out.
	ErrInvalidAssetID = errors.New("assetstream: invalid asset id")

	// ErrNilHandle is returned when Register is called without a blob.
	ErrNilHandle = errors.New("assetstream: nil blob handle")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("assetstream: invalid config")
)

// RegisterError indicates that a path could not be registered.
//
// The open error is available through errors.Unwrap.
type RegisterError struct {
	Path  string
	cause error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("assetstream: register %q: %v", e.Path, e.cause)
}

func (e *RegisterError) Unwrap() error { return e.cause }
