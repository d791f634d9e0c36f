// Package buddy implements a power-of-two buddy allocator over a contiguous
// address range. It tracks address ranges and bookkeeping only and never
// touches backing memory, so it can manage device windows, file regions or
// any other resource addressed by offset.
package buddy

import (
	"fmt"
	"math/bits"
)

// Config describes an arena. It is copied by New and never mutated afterwards.
type Config struct {
	// UnitSize is the order-0 block size in bytes. Must be a power of two.
	UnitSize uint64
	// MaxOrder is the highest order; the arena spans UnitSize << MaxOrder
	// bytes. Must be >= 0.
	MaxOrder int
	// BaseAddr is the start address of the managed range.
	BaseAddr uint64
}

// Arena owns the block tree and the per-order free/allocated lists.
//
// An Arena is not safe for concurrent use. Callers embedding it in a
// multi-threaded host must serialize Alloc, Free and Snapshot behind a single
// lock; a coalesce at one order mutates state at the order above, so there is
// no finer-grained locking scheme that would be correct.
type Arena struct {
	unitSize uint64
	maxOrder int32
	baseAddr uint64

	blocks    []block
	freeSlots []int32
	classes   []orderClass
}

// New validates cfg and builds an arena holding a single free block of the
// highest order.
func New(cfg Config) (*Arena, error) {
	if cfg.UnitSize == 0 || cfg.UnitSize&(cfg.UnitSize-1) != 0 {
		return nil, fmt.Errorf("%w: unit size must be a power of two, got %d", ErrInvalidConfig, cfg.UnitSize)
	}
	if cfg.MaxOrder < 0 {
		return nil, fmt.Errorf("%w: max order must be >= 0, got %d", ErrInvalidConfig, cfg.MaxOrder)
	}
	if bits.Len64(cfg.UnitSize)-1+cfg.MaxOrder > 63 {
		return nil, fmt.Errorf("%w: unit size %d at order %d overflows the address space",
			ErrInvalidConfig, cfg.UnitSize, cfg.MaxOrder)
	}
	a := &Arena{
		unitSize: cfg.UnitSize,
		maxOrder: int32(cfg.MaxOrder),
		baseAddr: cfg.BaseAddr,
		classes:  make([]orderClass, cfg.MaxOrder+1),
	}
	root := a.newBlock(cfg.BaseAddr, a.maxOrder, noBlock)
	a.pushFree(root)
	return a, nil
}

// UnitSize returns the order-0 block size.
func (a *Arena) UnitSize() uint64 { return a.unitSize }

// MaxOrder returns the highest order.
func (a *Arena) MaxOrder() int { return int(a.maxOrder) }

// BaseAddr returns the start address of the managed range.
func (a *Arena) BaseAddr() uint64 { return a.baseAddr }

// OrderSize returns the size in bytes of an order-k block.
func (a *Arena) OrderSize(order int) uint64 { return a.unitSize << order }

// OrderForSize converts a byte size to an order. The size must be the unit
// size scaled by a power of two no greater than the arena itself; anything
// else fails with ErrInvalidSize.
func (a *Arena) OrderForSize(size uint64) (int, error) {
	if size == 0 || size%a.unitSize != 0 {
		return 0, fmt.Errorf("%w: size %d is not a multiple of the unit size %d", ErrInvalidSize, size, a.unitSize)
	}
	units := size / a.unitSize
	if units&(units-1) != 0 {
		return 0, fmt.Errorf("%w: size %d is not the unit size scaled by a power of two", ErrInvalidSize, size)
	}
	order := bits.TrailingZeros64(units)
	if order > int(a.maxOrder) {
		return 0, fmt.Errorf("%w: size %d exceeds the order-%d block size", ErrInvalidSize, size, a.maxOrder)
	}
	return order, nil
}
