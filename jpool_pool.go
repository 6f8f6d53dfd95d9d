package jpool

import (
	"github.com/cockroachdb/errors"
)

type poolState uint8

const (
	stateEmpty poolState = iota
	stateBuilt
	stateDecoded
	stateFailed
)

// Pool is an arena of fixed-size nodes. Nodes refer to each other by index,
// so the backing slice can be reallocated without invalidating a tree.
//
// A managed pool (NewPool) owns its slice and grows on demand. An unmanaged
// pool (NewPoolWithBuffer) uses a caller-supplied slice and fails with
// ErrPoolExhausted once it is full.
//
// A Pool is not safe for concurrent use.
type Pool[I Index, O Offset] struct {
	nodes   []Node[I, O]
	used    int
	root    I
	data    []byte
	state   poolState
	managed bool
	freed   bool
	grows   int
	lay     layout
	opts    options
	onFree  []func() error

	// meta parallels nodes[:used] for built trees only: which slots are
	// nodes rather than copied text, and which container holds each node.
	meta []slotMeta[I]
}

type slotMeta[I Index] struct {
	parent I
	node   bool
}

func newPool[I Index, O Offset](opts []Option) (*Pool[I, O], error) {
	lay := layoutOf[I, O]()
	if lay.offSize < lay.idxSize {
		return nil, errors.Wrapf(ErrProfile, "index %d bytes, offset %d bytes", lay.idxSize, lay.offSize)
	}
	p := &Pool[I, O]{
		root: ^I(0),
		lay:  lay,
		opts: defaultOptions(),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p, nil
}

// NewPool returns a managed pool with room for capacity nodes. The pool
// grows as needed up to the index range of its profile.
func NewPool[I Index, O Offset](capacity int, opts ...Option) (*Pool[I, O], error) {
	p, err := newPool[I, O](opts)
	if err != nil {
		return nil, err
	}
	if capacity < 0 {
		capacity = 0
	}
	if uint64(capacity) > p.lay.invalid {
		capacity = int(p.lay.invalid)
	}
	p.nodes = make([]Node[I, O], capacity)
	p.managed = true
	return p, nil
}

// NewPoolWithBuffer returns an unmanaged pool that allocates from buf and
// never grows. The contents of buf are overwritten by Decode.
func NewPoolWithBuffer[I Index, O Offset](buf []Node[I, O], opts ...Option) (*Pool[I, O], error) {
	p, err := newPool[I, O](opts)
	if err != nil {
		return nil, err
	}
	if uint64(len(buf)) > p.lay.invalid {
		buf = buf[:p.lay.invalid]
	}
	p.nodes = buf
	return p, nil
}

// NewNarrow returns a managed pool of the narrow profile.
func NewNarrow(capacity int, opts ...Option) (*Narrow, error) {
	return NewPool[uint8, uint8](capacity, opts...)
}

// NewMedium returns a managed pool of the medium profile.
func NewMedium(capacity int, opts ...Option) (*Medium, error) {
	return NewPool[uint16, uint16](capacity, opts...)
}

// NewWide returns a managed pool of the wide profile.
func NewWide(capacity int, opts ...Option) (*Wide, error) {
	return NewPool[uint32, uint32](capacity, opts...)
}

// CapacityHint guesses the node count needed for an input of n bytes.
func CapacityHint(n int) int {
	if n < 0 {
		n = 0
	}
	return n/8 + 16
}

// allocate reserves n contiguous zeroed nodes and returns the index of the
// first one.
func (p *Pool[I, O]) allocate(n int) (I, error) {
	if p.freed {
		return ^I(0), ErrFreed
	}
	if n < 1 {
		return ^I(0), errors.Newf("jpool: invalid allocation of %d nodes", n)
	}
	need := uint64(p.used) + uint64(n)
	if need > p.lay.invalid {
		return ^I(0), errors.Wrapf(ErrPoolExhausted, "need %d nodes, profile holds %d", need, p.lay.invalid)
	}
	if need > uint64(len(p.nodes)) {
		if !p.managed {
			return ^I(0), errors.Wrapf(ErrPoolExhausted, "need %d nodes, buffer holds %d", need, len(p.nodes))
		}
		p.grow(n)
	}
	base := p.used
	p.used = int(need)
	clear(p.nodes[base:p.used])
	return I(base), nil
}

// grow reallocates to 2*cap+n nodes, clamped to the profile's index range.
// The caller has already checked that used+n fits in that range.
func (p *Pool[I, O]) grow(n int) {
	old := uint64(len(p.nodes))
	newCap := 2*old + uint64(n)
	if newCap > p.lay.invalid {
		newCap = p.lay.invalid
	}
	nodes := make([]Node[I, O], newCap)
	copy(nodes, p.nodes[:p.used])
	p.nodes = nodes
	p.grows++
	p.opts.logger.Debug("pool grown", "from", old, "to", newCap, "grows", p.grows)
}

// Reset discards the current tree but keeps the storage for reuse. Any
// resources attached to the tree, such as a mapped input file, are released.
func (p *Pool[I, O]) Reset() error {
	if p.freed {
		return ErrFreed
	}
	p.used = 0
	p.root = ^I(0)
	p.data = nil
	p.meta = p.meta[:0]
	p.state = stateEmpty
	return p.release()
}

// Free releases the pool's storage. A caller-supplied buffer is left as is.
// Free is idempotent; any later use of the pool returns ErrFreed.
func (p *Pool[I, O]) Free() error {
	if p.freed {
		return nil
	}
	p.freed = true
	p.nodes = nil
	p.meta = nil
	p.used = 0
	p.root = ^I(0)
	p.data = nil
	p.state = stateEmpty
	return p.release()
}

func (p *Pool[I, O]) release() error {
	var err error
	for _, fn := range p.onFree {
		err = errors.CombineErrors(err, fn())
	}
	p.onFree = nil
	return err
}

// Managed reports whether the pool owns and grows its storage.
func (p *Pool[I, O]) Managed() bool {
	return p.managed
}

// Limits reports the ranges of the pool's profile.
func (p *Pool[I, O]) Limits() Limits {
	return p.lay.limits()
}

// Invalid returns the index value used to terminate sibling chains.
func (p *Pool[I, O]) Invalid() I {
	return ^I(0)
}

// MaxDepth returns the nesting limit applied by Decode.
func (p *Pool[I, O]) MaxDepth() int {
	return p.opts.maxDepth
}
