package catalog

import "sync/atomic"

// Holder publishes the current catalog index to concurrent readers.
//
// Readers Load the pointer once per request and keep using that index for
// the whole call; Swap installs a fully built replacement atomically, so no
// reader ever observes a partially constructed catalog.
type Holder struct {
	ptr atomic.Pointer[Index]
}

// NewHolder creates a Holder, optionally pre-loaded with an index.
func NewHolder(x *Index) *Holder {
	h := &Holder{}
	if x != nil {
		h.ptr.Store(x)
	}
	return h
}

// Load returns the current index, or nil when none has been published yet.
func (h *Holder) Load() *Index {
	return h.ptr.Load()
}

// Swap publishes x and returns the previously published index (nil on first
// publish). x must be fully built.
func (h *Holder) Swap(x *Index) *Index {
	return h.ptr.Swap(x)
}
