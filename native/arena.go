package native

import (
	"runtime"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
)

// Arena owns everything handed to a single native call. Go memory acquired through the
// arena is pinned in place, strings and pointer arrays are copied into C memory drawn from
// a cgoparam allocator. Release gives all of it back at once, so every address obtained
// from the arena is invalid afterwards.
type Arena struct {
	alloc    *cgoparam.Allocator
	pinner   runtime.Pinner
	acquired int
}

func NewArena() *Arena {
	return &Arena{alloc: cgoparam.GetAlloc()}
}

// WithArena runs call with a fresh arena and releases the arena when call exits, whether
// it returns normally, returns an error, or panics.
func WithArena(call func(arena *Arena) error) error {
	arena := NewArena()
	defer arena.Release()

	return call(arena)
}

func (a *Arena) checkLive() {
	if a.alloc == nil {
		panic("native: arena used after release")
	}
}

// Pin keeps the Go object pointer refers to in place until the arena is released
func (a *Arena) Pin(pointer any) {
	a.checkLive()
	a.pinner.Pin(pointer)
	a.acquired++
}

// PinSlice pins the backing array of s and returns the address of its first element, or
// nil when s is empty
func PinSlice[T any](a *Arena, s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}

	a.Pin(&s[0])
	return unsafe.Pointer(&s[0])
}

// CString copies str into NUL-terminated arena memory
func (a *Arena) CString(str string) unsafe.Pointer {
	a.checkLive()
	a.acquired++
	return a.alloc.CString(str)
}

// CStringArray copies strs into arena memory and returns a pointer to an array of
// pointers to the copies, or nil when strs is empty
func (a *Arena) CStringArray(strs []string) unsafe.Pointer {
	if len(strs) == 0 {
		return nil
	}

	a.checkLive()
	arrayPtr := a.alloc.Malloc(len(strs) * int(unsafe.Sizeof(uintptr(0))))
	a.acquired++

	array := unsafe.Slice((*unsafe.Pointer)(arrayPtr), len(strs))
	for i, str := range strs {
		array[i] = a.CString(str)
	}

	return arrayPtr
}

// Pinned is the number of acquisitions made from this arena
func (a *Arena) Pinned() int {
	return a.acquired
}

// Released reports whether Release has run
func (a *Arena) Released() bool {
	return a.alloc == nil
}

// Release unpins all Go memory and returns the C memory. It is safe to call more than once.
func (a *Arena) Release() {
	if a.alloc == nil {
		return
	}

	a.pinner.Unpin()
	cgoparam.ReturnAlloc(a.alloc)
	a.alloc = nil
}
