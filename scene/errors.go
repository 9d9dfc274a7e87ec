package scene

import "github.com/pkg/errors"

// ErrAnchorReleased is returned when an operation targets an anchor, or a shape of an anchor,
// that has already been destroyed.
var ErrAnchorReleased = errors.New("anchor has been released")
