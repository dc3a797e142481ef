/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

// nilIdx marks an absent link between arena slots.
const nilIdx = -1

// arena is a slice-backed pool of slots addressed by index.
// Released slots are zeroed and reused by subsequent allocations.
// Pointers returned by at are valid only until the next alloc call.
type arena[T any] struct {
	slots []T
	free  []int
}

func (a *arena[T]) alloc(v T) int {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx] = v
		return idx
	}
	a.slots = append(a.slots, v)
	return len(a.slots) - 1
}

func (a *arena[T]) release(idx int) {
	var zero T
	a.slots[idx] = zero
	a.free = append(a.free, idx)
}

func (a *arena[T]) at(idx int) *T {
	return &a.slots[idx]
}

func (a *arena[T]) live() int {
	return len(a.slots) - len(a.free)
}

func (a *arena[T]) reset() {
	a.slots = nil
	a.free = nil
}
