// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package page

import (
	"fmt"
	"iter"
)

// Slot is an index into the physical tile pool, in [0, tileNum²).
// Slot s lives at column s%tileNum, row s/tileNum of the pool.
type Slot uint32

// Entry describes a resident page.
type Entry struct {
	ID              ID
	Slot            Slot
	LastActiveFrame int
}

// TableStats is a snapshot of page table occupancy.
type TableStats struct {
	// Len is the number of resident pages.
	Len int
	// Free is the number of unassigned slots.
	Free int
	// Capacity is the total number of slots (tileNum²).
	Capacity int
	// Evictions counts pages displaced by SetActive since the last Clear.
	Evictions uint64
}

// nilIndex terminates the recency list.
const nilIndex int32 = -1

// node is one arena cell of the recency list.
// Nodes are linked by index so the list holds no pointers.
type node struct {
	entry Entry
	prev  int32
	next  int32
}

// Table maps page IDs to physical tile slots and evicts the least recently
// used page when the pool is full.
//
// Lookup, insertion, refresh and eviction are all O(1). Nodes live in a flat
// arena that never shrinks; an evicted node is re-keyed in place and reused
// together with its slot.
//
// Table is not safe for concurrent use. It is owned by the frame coordinator.
type Table struct {
	tileNum  int
	capacity int

	nodes []node
	index map[ID]int32

	// head is the least recently used node, tail the most recently used.
	head int32
	tail int32

	free      []Slot
	evictions uint64
}

// NewTable creates an empty page table for a tileNum×tileNum tile pool.
// It panics if tileNum is not positive.
func NewTable(tileNum int) *Table {
	if tileNum <= 0 {
		panic(fmt.Sprintf("page: invalid tile count %d", tileNum))
	}
	t := &Table{
		tileNum:  tileNum,
		capacity: tileNum * tileNum,
	}
	t.reset()
	return t
}

func (t *Table) reset() {
	t.nodes = make([]node, 0, t.capacity)
	t.index = make(map[ID]int32, t.capacity)
	t.head = nilIndex
	t.tail = nilIndex
	t.free = make([]Slot, t.capacity)
	for i := range t.free {
		t.free[i] = Slot(i) //nolint:gosec // capacity fits in uint32
	}
	t.evictions = 0
}

// TileNum returns the number of tiles per side of the pool.
func (t *Table) TileNum() int { return t.tileNum }

// Capacity returns the total number of slots.
func (t *Table) Capacity() int { return t.capacity }

// Len returns the number of resident pages.
func (t *Table) Len() int { return len(t.index) }

// Stats returns a snapshot of table occupancy.
func (t *Table) Stats() TableStats {
	return TableStats{
		Len:       len(t.index),
		Free:      len(t.free),
		Capacity:  t.capacity,
		Evictions: t.evictions,
	}
}

// IsActive reports whether id is resident and, if so, the frame at which it
// was last touched. It does not change recency.
func (t *Table) IsActive(id ID) (lastActiveFrame int, ok bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	return t.nodes[i].entry.LastActiveFrame, true
}

// Lookup returns the entry for id without changing recency.
func (t *Table) Lookup(id ID) (Entry, bool) {
	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.nodes[i].entry, true
}

// TileSlot returns the slot holding id. id must be resident.
func (t *Table) TileSlot(id ID) Slot {
	return t.nodes[t.mustIndex(id, "TileSlot")].entry.Slot
}

// Refresh stamps id with frame and makes it the most recently used page.
// id must be resident.
func (t *Table) Refresh(id ID, frame int) {
	i := t.mustIndex(id, "Refresh")
	t.nodes[i].entry.LastActiveFrame = frame
	t.moveToTail(i)
}

// SetActive makes id resident and returns its slot. id must not be resident;
// callers check IsActive first.
//
// When no slot is free the least recently used page is evicted and its slot
// handed to id. The tile content at that slot then belongs to id and must be
// re-rendered by the caller.
func (t *Table) SetActive(id ID, frame int) Slot {
	if _, ok := t.index[id]; ok {
		panic(fmt.Sprintf("page: SetActive on resident %v", id))
	}

	if len(t.free) > 0 {
		slot := t.free[0]
		t.free = t.free[1:]

		i := int32(len(t.nodes)) //nolint:gosec // bounded by capacity
		t.nodes = append(t.nodes, node{
			entry: Entry{ID: id, Slot: slot, LastActiveFrame: frame},
			prev:  nilIndex,
			next:  nilIndex,
		})
		t.pushTail(i)
		t.index[id] = i
		return slot
	}

	// Pool is full: re-key the least recently used node.
	i := t.head
	n := &t.nodes[i]
	delete(t.index, n.entry.ID)
	n.entry.ID = id
	n.entry.LastActiveFrame = frame
	t.index[id] = i
	t.moveToTail(i)
	t.evictions++
	return n.entry.Slot
}

// Oldest returns the least recently used entry, the next eviction candidate.
func (t *Table) Oldest() (Entry, bool) {
	if t.head == nilIndex {
		return Entry{}, false
	}
	return t.nodes[t.head].entry, true
}

// Entries yields resident entries from least to most recently used.
// The table must not be modified during iteration.
func (t *Table) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i := t.head; i != nilIndex; i = t.nodes[i].next {
			if !yield(t.nodes[i].entry) {
				return
			}
		}
	}
}

// Clear drops every resident page and returns all slots to the free pool.
func (t *Table) Clear() {
	t.reset()
}

func (t *Table) mustIndex(id ID, op string) int32 {
	i, ok := t.index[id]
	if !ok {
		panic(fmt.Sprintf("page: %s on non-resident %v", op, id))
	}
	return i
}

func (t *Table) pushTail(i int32) {
	n := &t.nodes[i]
	n.prev = t.tail
	n.next = nilIndex
	if t.tail != nilIndex {
		t.nodes[t.tail].next = i
	} else {
		t.head = i
	}
	t.tail = i
}

func (t *Table) unlink(i int32) {
	n := &t.nodes[i]
	if n.prev != nilIndex {
		t.nodes[n.prev].next = n.next
	} else {
		t.head = n.next
	}
	if n.next != nilIndex {
		t.nodes[n.next].prev = n.prev
	} else {
		t.tail = n.prev
	}
	n.prev = nilIndex
	n.next = nilIndex
}

func (t *Table) moveToTail(i int32) {
	if i == t.tail {
		return
	}
	t.unlink(i)
	t.pushTail(i)
}
