package api

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks malformed request bodies and parameters.
var ErrBadRequest = errors.New("bad request")

// WrapKind tags err with kind so handlers can map it to a status.
func WrapKind(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
