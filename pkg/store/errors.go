package store

import (
	"fmt"
	"strings"

	apperrors "github.com/vango-dev/appstore/internal/errors"
)

// Sentinel errors for use with errors.Is.
var (
	ErrUnregisteredType = apperrors.KindError(apperrors.KindUnregisteredType)
	ErrNetworkFailure   = apperrors.KindError(apperrors.KindNetworkFailure)
	ErrRecordNotFound   = apperrors.KindError(apperrors.KindRecordNotFound)
	ErrInvalidArgument  = apperrors.KindError(apperrors.KindInvalidArgument)
)

func unregistered(name string) error {
	return apperrors.New(apperrors.CodeUnregisteredType).WithDetailf("model %q", name)
}

// FetchError reports the ids of a Fetch call that could not be loaded.
// Records for the other ids of the call were cached. errors.Is sees every
// per-id error, so a FetchError matches ErrNetworkFailure only when a
// request actually failed.
type FetchError struct {
	Model string
	IDs   []string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s [%s]: %v", e.Model, strings.Join(e.IDs, ", "), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
