package jpool

import "unsafe"

//------------------------------------------------------------------------------
// NAVIGATION PRIMITIVES
//------------------------------------------------------------------------------

// valid reports whether i addresses an allocated node. In a built tree
// the slots holding copied text are not nodes.
func (p *Pool[I, O]) valid(i I) bool {
	if p.freed || uint64(i) >= uint64(p.used) {
		return false
	}
	if p.state == stateDecoded {
		return true
	}
	return uint64(i) < uint64(len(p.meta)) && p.meta[i].node
}

// Kind returns the kind of node i, or Undefined for an invalid index.
func (p *Pool[I, O]) Kind(i I) Kind {
	if !p.valid(i) {
		return Undefined
	}
	return p.lay.kind(uint64(p.nodes[i].blen))
}

// Len returns the length field of node i: the byte length of a string or
// number, or the child count of a container. Objects count keys and values.
func (p *Pool[I, O]) Len(i I) int {
	if !p.valid(i) {
		return 0
	}
	return int(p.lay.length(uint64(p.nodes[i].blen)))
}

// Members returns the number of elements of an array or members of an
// object, and 0 for any other node.
func (p *Pool[I, O]) Members(i I) int {
	switch p.Kind(i) {
	case Object:
		return p.Len(i) / 2
	case Array:
		return p.Len(i)
	}
	return 0
}

// Child returns the first child of a non-empty object or array. The
// children of an object alternate key, value.
func (p *Pool[I, O]) Child(i I) (I, bool) {
	switch p.Kind(i) {
	case Object, Array:
		if p.Len(i) > 0 {
			return I(p.nodes[i].payload), true
		}
	}
	return ^I(0), false
}

// Next returns the sibling that follows node i.
func (p *Pool[I, O]) Next(i I) (I, bool) {
	if !p.valid(i) {
		return ^I(0), false
	}
	next := p.nodes[i].next
	return next, next != ^I(0)
}

// Text returns the raw text of a string or number node. String text is
// still escaped and excludes the quotes. The slice aliases the input of a
// decoded pool or the node storage of a built pool; it must not be modified
// and, for built pools, is only valid until the next allocation.
func (p *Pool[I, O]) Text(i I) []byte {
	switch p.Kind(i) {
	case String, Number:
	default:
		return nil
	}
	nd := p.nodes[i]
	off := uint64(nd.payload)
	n := p.lay.length(uint64(nd.blen))
	if p.state == stateDecoded {
		return p.data[off : off+n : off+n]
	}
	return p.slotBytes(off, n)
}

// slotBytes views n bytes of node storage starting at slot.
func (p *Pool[I, O]) slotBytes(slot, n uint64) []byte {
	if n == 0 {
		return []byte{}
	}
	avail := (uint64(len(p.nodes)) - slot) * uint64(p.lay.nodeSize)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&p.nodes[slot])), avail)
	return b[:n:n]
}

// Index returns the n-th element of an array.
func (p *Pool[I, O]) Index(arr I, n int) (I, bool) {
	if p.Kind(arr) != Array || n < 0 || n >= p.Len(arr) {
		return ^I(0), false
	}
	i, ok := p.Child(arr)
	for ; ok && n > 0; n-- {
		i, ok = p.Next(i)
	}
	return i, ok
}

// Find returns the value of the first member of obj whose raw key text
// equals key. Keys are compared without unescaping.
func (p *Pool[I, O]) Find(obj I, key string) (I, bool) {
	if p.Kind(obj) != Object {
		return ^I(0), false
	}
	found := ^I(0)
	p.ForEach(obj, func(k, v I) bool {
		if string(p.Text(k)) == key {
			found = v
			return false
		}
		return true
	})
	return found, found != ^I(0)
}

// ForEach calls fn for each member of an object or element of an array
// until fn returns false. For arrays the key is the invalid index.
func (p *Pool[I, O]) ForEach(i I, fn func(key, value I) bool) {
	switch p.Kind(i) {
	case Object:
		k, ok := p.Child(i)
		for ok {
			v, vok := p.Next(k)
			if !vok || !fn(k, v) {
				return
			}
			k, ok = p.Next(v)
		}
	case Array:
		v, ok := p.Child(i)
		for ok {
			if !fn(^I(0), v) {
				return
			}
			v, ok = p.Next(v)
		}
	}
}
