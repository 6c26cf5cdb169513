package device

import (
	"runtime"
	"sync/atomic"
)

type childTracker interface {
	retainChild()
	releaseChild()
}

// owner holds a single native handle and destroys it exactly once. Disposal happens in two
// steps: dispose (or the finalizer) marks the handle as no longer wanted, and the handle is
// destroyed as soon as it is both disposed and has no live children. A child keeps its
// parent reachable, so a parent's finalizer never runs while a child is still alive.
//
// The destroy func runs on the finalizer goroutine when disposal is left to the garbage
// collector. It must only release the native handle and must not capture the object that
// owns this owner, or the finalizer will never run.
type owner[H comparable] struct {
	handle  H
	destroy func(H)
	parent  childTracker

	children  atomic.Int32
	disposed  atomic.Bool
	destroyed atomic.Bool
}

func newOwner[H comparable](handle H, destroy func(H), parent childTracker) *owner[H] {
	o := &owner[H]{
		handle:  handle,
		destroy: destroy,
		parent:  parent,
	}

	if parent != nil {
		parent.retainChild()
	}

	runtime.SetFinalizer(o, (*owner[H]).finalize)
	return o
}

func (o *owner[H]) retainChild() {
	o.children.Add(1)
}

func (o *owner[H]) releaseChild() {
	if o.children.Add(-1) == 0 {
		o.tryDestroy()
	}
}

// dispose is the deterministic path. It reports whether this call was the one that
// disposed the owner.
func (o *owner[H]) dispose() bool {
	if !o.disposed.CompareAndSwap(false, true) {
		return false
	}

	runtime.SetFinalizer(o, nil)
	o.tryDestroy()
	return true
}

func (o *owner[H]) finalize() {
	if o.disposed.CompareAndSwap(false, true) {
		o.tryDestroy()
	}
}

func (o *owner[H]) isDisposed() bool {
	return o.disposed.Load()
}

func (o *owner[H]) isDestroyed() bool {
	return o.destroyed.Load()
}

func (o *owner[H]) tryDestroy() {
	if !o.disposed.Load() || o.children.Load() > 0 {
		return
	}

	if !o.destroyed.CompareAndSwap(false, true) {
		return
	}

	o.destroy(o.handle)

	if o.parent != nil {
		o.parent.releaseChild()
	}
}
