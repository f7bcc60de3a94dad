package buffer

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrRingFull is returned by [Ring.Push] when every slot holds unread data.
var ErrRingFull = errors.New("buffer: ring full")

// Ring is a bounded single-producer/single-consumer queue of fixed-size
// sample blocks. All blocks are allocated up front; neither side ever blocks.
//
// The producer fills a slot obtained from Acquire and publishes it with
// Commit (or uses Push). The consumer inspects the oldest block with Peek and
// releases it with Remove. Exactly one goroutine may act as producer and one
// as consumer at a time.
type Ring struct {
	blocks   [][]float64
	blockLen int

	head atomic.Uint64 // next block to read
	tail atomic.Uint64 // next block to write

	dropped atomic.Uint64
}

// NewRing allocates a ring of numBlocks blocks of blockLen samples each.
func NewRing(numBlocks, blockLen int) (*Ring, error) {
	if numBlocks <= 0 {
		return nil, fmt.Errorf("buffer: ring block count must be > 0: %d", numBlocks)
	}
	if blockLen <= 0 {
		return nil, fmt.Errorf("buffer: ring block length must be > 0: %d", blockLen)
	}

	backing := make([]float64, numBlocks*blockLen)
	blocks := make([][]float64, numBlocks)
	for i := range blocks {
		blocks[i] = backing[i*blockLen : (i+1)*blockLen : (i+1)*blockLen]
	}

	return &Ring{blocks: blocks, blockLen: blockLen}, nil
}

// Cap returns the number of block slots.
func (r *Ring) Cap() int { return len(r.blocks) }

// BlockLen returns the number of samples per block.
func (r *Ring) BlockLen() int { return r.blockLen }

// HasData returns the number of committed blocks that have not been removed.
func (r *Ring) HasData() int {
	return int(r.tail.Load() - r.head.Load())
}

// Acquire returns the next free block for writing, or nil if the ring is
// full. The block becomes visible to the consumer only after Commit.
func (r *Ring) Acquire() []float64 {
	tail := r.tail.Load()
	if tail-r.head.Load() >= uint64(len(r.blocks)) {
		return nil
	}

	return r.blocks[tail%uint64(len(r.blocks))]
}

// Commit publishes the block returned by the last successful Acquire.
func (r *Ring) Commit() {
	r.tail.Add(1)
}

// Push copies src into the next free block and commits it. When the ring is
// full the block is dropped, the drop counter is incremented and ErrRingFull
// is returned. src shorter than BlockLen is zero-padded.
func (r *Ring) Push(src []float64) error {
	dst := r.Acquire()
	if dst == nil {
		r.dropped.Add(1)
		return ErrRingFull
	}

	n := copy(dst, src)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}

	r.Commit()

	return nil
}

// Peek returns the oldest committed block without removing it, or nil when
// the ring is empty. The returned slice stays valid until Remove.
func (r *Ring) Peek() []float64 {
	head := r.head.Load()
	if head == r.tail.Load() {
		return nil
	}

	return r.blocks[head%uint64(len(r.blocks))]
}

// Remove releases the oldest block. It is a no-op on an empty ring.
func (r *Ring) Remove() {
	head := r.head.Load()
	if head == r.tail.Load() {
		return
	}

	r.head.Store(head + 1)
}

// Pop copies the oldest block into dst and removes it. It reports false when
// the ring is empty.
func (r *Ring) Pop(dst []float64) bool {
	blk := r.Peek()
	if blk == nil {
		return false
	}

	copy(dst, blk)
	r.Remove()

	return true
}

// Dropped returns the number of blocks rejected by Push because the ring was full.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}

// Reset discards all queued blocks. It must only be called while neither
// side is active.
func (r *Ring) Reset() {
	r.head.Store(0)
	r.tail.Store(0)
	r.dropped.Store(0)
}
