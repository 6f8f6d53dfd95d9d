package jpool

import (
	"fmt"
)

// Decode parses data into the pool, replacing any previous tree. On
// success the root node is available through Root. data is borrowed: string
// and number nodes point into it, so it must not be modified while the tree
// is in use.
//
// The returned error is nil or a *DecodeError wrapping ErrSyntax or
// ErrPoolExhausted. After a failed decode the pool has no root.
func (p *Pool[I, O]) Decode(data []byte) error {
	if p.freed {
		return ErrFreed
	}
	if err := p.Reset(); err != nil {
		p.opts.logger.Warn("releasing previous document", "error", err)
	}
	if uint64(len(data)) > p.lay.maxInput {
		p.state = stateFailed
		return &DecodeError{
			Err:    ErrSyntax,
			Reason: fmt.Sprintf("input of %d bytes exceeds limit %d", len(data), p.lay.maxInput),
		}
	}

	d := decoder[I, O]{p: p, data: data}
	root, err := d.element()
	if err != nil {
		p.state = stateFailed
		p.opts.logger.Debug("decode failed", "bytes", len(data), "nodes", p.used, "error", err)
		return err
	}
	p.root = root
	p.data = data
	p.state = stateDecoded
	p.opts.logger.Debug("decoded", "bytes", len(data), "nodes", p.used, "capacity", len(p.nodes))
	return nil
}

// Decode parses data into a new managed pool of the wide profile sized
// with CapacityHint.
func Decode(data []byte, opts ...Option) (*Wide, error) {
	p, err := NewWide(CapacityHint(len(data)), opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Decode(data); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeString is like Decode but accepts a string input.
func DecodeString(s string, opts ...Option) (*Wide, error) {
	return Decode([]byte(s), opts...)
}

// Root returns the index of the root node, or false when no decode or
// build has produced one.
func (p *Pool[I, O]) Root() (I, bool) {
	if p.freed || p.root == ^I(0) {
		return ^I(0), false
	}
	if p.state != stateDecoded && p.state != stateBuilt {
		return ^I(0), false
	}
	return p.root, true
}
