package buddy

// noBlock marks an absent buddy or parent relation.
const noBlock int32 = -1

type blockStatus uint8

const (
	statusFree blockStatus = iota
	statusAllocated
	statusSplit
	statusDead
)

// block is one node of the region tree. Blocks live in the arena's table and
// refer to each other by table index, never by pointer, so destroy/recreate
// cycles during coalescing cannot dangle.
type block struct {
	addr   uint64
	order  int32
	status blockStatus
	buddy  int32
	parent int32
	// gen is bumped every time the slot's block is destroyed. A handle is
	// only valid while its generation matches.
	gen uint32
	// pos is the block's index inside its current free or allocated list.
	pos int32
}

// orderClass tracks the free and allocated blocks of a single order. A split
// block belongs to neither list.
type orderClass struct {
	free      []int32
	allocated []int32
}

// Handle identifies an allocated block. It is the only reference external
// code may keep across calls; everything else is owned by the Arena.
type Handle struct {
	index int32
	gen   uint32
}

// newBlock takes a recycled slot if one exists, otherwise grows the table.
// The block starts dead and unlinked; the caller wires buddy and status.
func (a *Arena) newBlock(addr uint64, order, parent int32) int32 {
	if n := len(a.freeSlots); n > 0 {
		i := a.freeSlots[n-1]
		a.freeSlots = a.freeSlots[:n-1]
		b := &a.blocks[i]
		b.addr = addr
		b.order = order
		b.status = statusDead
		b.buddy = noBlock
		b.parent = parent
		return i
	}
	a.blocks = append(a.blocks, block{
		addr:   addr,
		order:  order,
		status: statusDead,
		buddy:  noBlock,
		parent: parent,
	})
	return int32(len(a.blocks) - 1)
}

// destroyBlock retires a slot after a coalesce. The generation bump
// invalidates any handle still pointing at it.
func (a *Arena) destroyBlock(i int32) {
	b := &a.blocks[i]
	b.status = statusDead
	b.buddy = noBlock
	b.parent = noBlock
	b.gen++
	a.freeSlots = append(a.freeSlots, i)
}

func (a *Arena) pushFree(i int32) {
	b := &a.blocks[i]
	cls := &a.classes[b.order]
	b.status = statusFree
	b.pos = int32(len(cls.free))
	cls.free = append(cls.free, i)
}

// popFree removes and returns the most recently inserted free block of the
// given order. The caller must have checked the list is non-empty.
func (a *Arena) popFree(order int32) int32 {
	cls := &a.classes[order]
	n := len(cls.free) - 1
	i := cls.free[n]
	cls.free = cls.free[:n]
	return i
}

func (a *Arena) pushAllocated(i int32) {
	b := &a.blocks[i]
	cls := &a.classes[b.order]
	b.status = statusAllocated
	b.pos = int32(len(cls.allocated))
	cls.allocated = append(cls.allocated, i)
}

func (a *Arena) removeFree(i int32) {
	cls := &a.classes[a.blocks[i].order]
	cls.free = a.removeAt(cls.free, a.blocks[i].pos)
}

func (a *Arena) removeAllocated(i int32) {
	cls := &a.classes[a.blocks[i].order]
	cls.allocated = a.removeAt(cls.allocated, a.blocks[i].pos)
}

// removeAt swap-removes list[pos]. Only the LIFO pop order of the newest
// entry is guaranteed to callers, so moving the tail into the hole is fine.
func (a *Arena) removeAt(list []int32, pos int32) []int32 {
	n := int32(len(list)) - 1
	if pos != n {
		moved := list[n]
		list[pos] = moved
		a.blocks[moved].pos = pos
	}
	return list[:n]
}
