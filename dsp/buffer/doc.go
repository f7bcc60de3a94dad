// Package buffer queues fixed-size sample blocks between two goroutines.
//
// Ring is lock-free and preallocated so that a real-time producer never
// blocks or allocates; a full ring drops the block and counts it.
package buffer
