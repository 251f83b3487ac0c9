// Package malloctable implements the user-level allocation tracker: a
// fixed-size open hash table of live malloc blocks, fed by lines the
// interceptor (see the interceptor/ directory) writes to the notify pipe,
// and an address-ordered index used to make leak reporting deterministic.
package malloctable

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/btree"
)

// TableSize is the number of buckets in the hash table. It must be a
// power of two; 1024 keeps average chain length short even under heavy
// allocation churn.
const TableSize = 1024

// Block is one live user-level heap allocation as reported by the
// interceptor.
type Block struct {
	Address uintptr
	Size    uint64
}

// node is a bucket entry. Buckets are singly-linked lists.
type node struct {
	block Block
	next  *node
}

// addrItem adapts a Block into a btree.Item ordered by address, giving the
// leak analyzer and the report builder a stable, address-sorted view over
// a structure whose bucket order is otherwise unspecified.
type addrItem Block

func (a addrItem) Less(than btree.Item) bool {
	return a.Address < than.(addrItem).Address
}

// Table is the live-block hash table plus running counters. The zero
// value is not ready to use -- call NewTable.
type Table struct {
	buckets [TableSize]*node
	index   *btree.BTree

	Allocations     uint64
	Frees           uint64
	BytesAllocated  uint64
	BytesFreed      uint64
	UnmatchedFrees  uint64 // advisory double-free counter

	// carry holds a trailing, not-yet-newline-terminated fragment of pipe
	// data between DrainEvents calls.
	carry []byte
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{index: btree.New(32)}
}

func hash(addr uintptr) uint64 {
	// Drop the low 3 bits: heap allocations are at minimum pointer-aligned,
	// so those bits never distinguish two distinct blocks.
	return (uint64(addr) >> 3) % TableSize
}

// TrackAlloc inserts a new live block. It does not check for an existing
// block at addr -- the real allocator guarantees a live address is never
// handed out twice.
func (t *Table) TrackAlloc(addr uintptr, size uint64) {
	idx := hash(addr)
	t.buckets[idx] = &node{block: Block{Address: addr, Size: size}, next: t.buckets[idx]}
	t.index.ReplaceOrInsert(addrItem{Address: addr, Size: size})
	t.Allocations++
	t.BytesAllocated += size
}

// TrackFree removes the live block at addr, if any. A miss is recorded as
// an advisory double-free/unmatched-free and does not panic or error --
// the interceptor cannot distinguish a genuine double free from a free of
// memory allocated before the tracker attached.
func (t *Table) TrackFree(addr uintptr) {
	idx := hash(addr)
	cur := &t.buckets[idx]
	for *cur != nil {
		if (*cur).block.Address == addr {
			removed := *cur
			*cur = removed.next
			t.Frees++
			t.BytesFreed += removed.block.Size
			t.index.Delete(addrItem(removed.block))
			return
		}
		cur = &(*cur).next
	}
	t.UnmatchedFrees++
}

// Live returns the number of blocks currently tracked as allocated. An
// unmatched free never removed a tracked block, so it does not reduce
// this count.
func (t *Table) Live() int {
	return int(t.Allocations - t.Frees)
}

// Range calls fn once for every live block, in ascending address order.
// Visiting in address order, rather than the hash table's unspecified
// bucket order, is what makes leak listings and tests reproducible.
func (t *Table) Range(fn func(Block)) {
	t.index.Ascend(func(item btree.Item) bool {
		fn(Block(item.(addrItem)))
		return true
	})
}

// Clone returns a Table holding an independent copy of every live block
// and the running counters. Used to take a stable snapshot of in-flight
// state -- reflection-based deep copy can't reach buckets/index, since
// they are unexported.
func (t *Table) Clone() *Table {
	c := NewTable()
	t.Range(func(b Block) {
		c.buckets[hash(b.Address)] = &node{block: b, next: c.buckets[hash(b.Address)]}
		c.index.ReplaceOrInsert(addrItem(b))
	})
	c.Allocations = t.Allocations
	c.Frees = t.Frees
	c.BytesAllocated = t.BytesAllocated
	c.BytesFreed = t.BytesFreed
	c.UnmatchedFrees = t.UnmatchedFrees
	return c
}

// DrainEvents reads every currently-available byte from r and dispatches
// complete "ALLOC <addr> <size>" / "FREE <addr>" lines to TrackAlloc and
// TrackFree. A line with any other prefix, or one that fails to parse, is
// silently dropped. A trailing partial line (no terminating newline yet)
// is preserved and prefixed onto the next call's data, so a read that
// splits a line across two buffers never loses it.
//
// r is expected to be a non-blocking pipe read end; DrainEvents treats
// io.EOF and "no data available" the same way: stop and return nil.
func (t *Table) DrainEvents(r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			t.carry = append(t.carry, buf[:n]...)
			t.consumeLines()
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, syscall.EAGAIN) {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (t *Table) consumeLines() {
	for {
		i := indexByte(t.carry, '\n')
		if i < 0 {
			return
		}
		line := string(t.carry[:i])
		t.carry = t.carry[i+1:]
		t.dispatchLine(line)
	}
}

func (t *Table) dispatchLine(line string) {
	switch {
	case strings.HasPrefix(line, "ALLOC "):
		addr, size, ok := parseAlloc(line[len("ALLOC "):])
		if ok {
			t.TrackAlloc(addr, size)
		}
	case strings.HasPrefix(line, "FREE "):
		addr, ok := parseFree(line[len("FREE "):])
		if ok {
			t.TrackFree(addr)
		}
	}
}

func parseAlloc(rest string) (uintptr, uint64, bool) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return 0, 0, false
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
	if err != nil {
		return 0, 0, false
	}
	size, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return uintptr(addr), size, true
}

func parseFree(rest string) (uintptr, bool) {
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		return 0, false
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
	if err != nil {
		return 0, false
	}
	return uintptr(addr), true
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

