package buddy

import "fmt"

// Alloc allocates a block of exactly size bytes. The size must be the unit
// size scaled by an in-range power of two; see OrderForSize.
func (a *Arena) Alloc(size uint64) (Handle, error) {
	order, err := a.OrderForSize(size)
	if err != nil {
		return Handle{}, err
	}
	return a.AllocOrder(order)
}

// AllocOrder allocates one block of the given order. If no block of that
// order is free, the nearest larger free block is split down level by level.
// The returned block is aligned to its own size and disjoint from every
// other live block. Fails with ErrOutOfMemory when the whole tree is
// exhausted; the arena is left unchanged in that case.
func (a *Arena) AllocOrder(order int) (Handle, error) {
	if order < 0 || order > int(a.maxOrder) {
		return Handle{}, fmt.Errorf("%w: order %d not in [0, %d]", ErrInvalidOrder, order, a.maxOrder)
	}
	src := order
	for src <= int(a.maxOrder) && len(a.classes[src].free) == 0 {
		src++
	}
	if src > int(a.maxOrder) {
		return Handle{}, ErrOutOfMemory
	}
	i := a.popFree(int32(src))
	for src > order {
		src--
		i = a.split(i, int32(src))
	}
	a.pushAllocated(i)
	return Handle{index: i, gen: a.blocks[i].gen}, nil
}

// split demotes the free block in hand to an internal node and creates its
// two children one order below. The high-address child joins the free list;
// the low-address child is returned and stays in hand, so a chain of splits
// hands out the lowest address that can satisfy the request.
func (a *Arena) split(parent, childOrder int32) int32 {
	a.blocks[parent].status = statusSplit
	addr := a.blocks[parent].addr
	left := a.newBlock(addr, childOrder, parent)
	right := a.newBlock(addr+a.unitSize<<childOrder, childOrder, parent)
	a.blocks[left].buddy = right
	a.blocks[right].buddy = left
	a.pushFree(right)
	return left
}

// Free returns an allocated block to the arena and eagerly merges it with
// its buddy, recursively up the tree, as far as free-buddy chains permit.
// A rejected handle leaves the arena untouched.
func (a *Arena) Free(h Handle) error {
	if err := a.check(h); err != nil {
		return err
	}
	i := h.index
	a.removeAllocated(i)
	// The block in hand is in no list. Either it lands on its order's free
	// list, or it merges with a free buddy and the reactivated parent
	// becomes the block in hand one level up.
	for {
		buddy := a.blocks[i].buddy
		if buddy == noBlock || a.blocks[buddy].status != statusFree {
			a.pushFree(i)
			return nil
		}
		a.removeFree(buddy)
		parent := a.blocks[i].parent
		a.destroyBlock(i)
		a.destroyBlock(buddy)
		i = parent
	}
}

// Address returns the start address of an allocated block.
func (a *Arena) Address(h Handle) (uint64, error) {
	if err := a.check(h); err != nil {
		return 0, err
	}
	return a.blocks[h.index].addr, nil
}

// OrderOf returns the order of an allocated block.
func (a *Arena) OrderOf(h Handle) (int, error) {
	if err := a.check(h); err != nil {
		return 0, err
	}
	return int(a.blocks[h.index].order), nil
}

// check reports whether h references a currently allocated block. A stale
// generation means the block was destroyed by a coalesce; a status mismatch
// means it was freed (or never allocated).
func (a *Arena) check(h Handle) error {
	if h.index < 0 || int(h.index) >= len(a.blocks) {
		return ErrInvalidHandle
	}
	b := &a.blocks[h.index]
	if b.gen != h.gen || b.status != statusAllocated {
		return ErrInvalidHandle
	}
	return nil
}
