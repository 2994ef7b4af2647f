package fractal

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfMemory is returned when a drawing's buffers do not fit in the
// session's memory budget.
var ErrOutOfMemory = errors.New("out of memory")

// Budget accounts for the bytes held by pixel buffers and colour-index grids.
// A zero limit means unlimited.
type Budget struct {
	mu    sync.Mutex
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit}
}

// Reserve claims n bytes or fails with ErrOutOfMemory.
func (b *Budget) Reserve(n int64) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit > 0 && b.used+n > b.limit {
		return fmt.Errorf("reserve %d bytes (%d of %d in use): %w", n, b.used, b.limit, ErrOutOfMemory)
	}
	b.used += n
	return nil
}

// Release returns n bytes to the budget.
func (b *Budget) Release(n int64) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.used -= n
	if b.used < 0 {
		b.used = 0
	}
	b.mu.Unlock()
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}
