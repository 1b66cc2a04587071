package order

import (
	"errors"
	"fmt"
)

// Domain error kinds. Handlers translate these to HTTP statuses; everything
// else wraps them with context and lets errors.Is classify.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency unavailable")
)

// ErrOpenOrderExists is returned by the order store when the unique open-order
// index rejects a second dine-in order for the same table. Callers refetch the
// surviving order and merge into it. It is a kind of ErrConflict.
var ErrOpenOrderExists = fmt.Errorf("%w: open order already exists for table", ErrConflict)
