package jpool

import (
	"github.com/cockroachdb/errors"
	gojson "github.com/goccy/go-json"
)

//------------------------------------------------------------------------------
// TREE CONSTRUCTION
//------------------------------------------------------------------------------
//
// Built trees own their text: string and number contents are copied into
// node slots of the pool, so a built pool has no input buffer. A pool holds
// either a decoded or a built tree; construction on a decoded pool fails
// with ErrReadOnly until the pool is Reset. Each node joins at most one
// container and a container never joins itself or one of its descendants.

func (p *Pool[I, O]) writable() error {
	switch {
	case p.freed:
		return ErrFreed
	case p.state == stateDecoded:
		return ErrReadOnly
	case p.state == stateFailed:
		p.used = 0
		p.meta = p.meta[:0]
		p.state = stateEmpty
	}
	return nil
}

// copyText stores text in freshly allocated slots and returns the first
// slot index.
func (p *Pool[I, O]) copyText(text []byte) (uint64, error) {
	if uint64(len(text)) > p.lay.lenMask {
		return 0, errors.Wrapf(ErrSyntax, "text of %d bytes exceeds limit %d", len(text), p.lay.lenMask)
	}
	if len(text) == 0 {
		return 0, nil
	}
	slots := (len(text) + p.lay.nodeSize - 1) / p.lay.nodeSize
	base, err := p.allocate(slots)
	if err != nil {
		return 0, err
	}
	for n := 0; n < slots; n++ {
		p.meta = append(p.meta, slotMeta[I]{parent: ^I(0)})
	}
	copy(p.slotBytes(uint64(base), uint64(len(text))), text)
	return uint64(base), nil
}

func (p *Pool[I, O]) newNode(k Kind, payload, n uint64) (I, error) {
	idx, err := p.allocate(1)
	if err != nil {
		return ^I(0), err
	}
	nd := &p.nodes[idx]
	nd.payload = O(payload)
	nd.blen = I(p.lay.pack(k, n))
	nd.next = ^I(0)
	p.meta = append(p.meta, slotMeta[I]{parent: ^I(0), node: true})
	p.state = stateBuilt
	return idx, nil
}

func (p *Pool[I, O]) newText(k Kind, text []byte) (I, error) {
	if err := p.writable(); err != nil {
		return ^I(0), err
	}
	off, err := p.copyText(text)
	if err != nil {
		return ^I(0), err
	}
	return p.newNode(k, off, uint64(len(text)))
}

// NewString adds a string node holding s, escaped as needed.
func (p *Pool[I, O]) NewString(s string) (I, error) {
	quoted, err := gojson.MarshalNoEscape(s)
	if err != nil {
		return ^I(0), errors.Wrap(err, "jpool: escaping string")
	}
	return p.newText(String, quoted[1:len(quoted)-1])
}

// NewRawString adds a string node whose contents are already escaped JSON
// string text, without the quotes.
func (p *Pool[I, O]) NewRawString(raw string) (I, error) {
	buf := make([]byte, 0, len(raw)+1)
	buf = append(buf, raw...)
	buf = append(buf, '"')
	end, err := scanString(buf, 0)
	if err != nil {
		return ^I(0), err
	}
	if end != len(raw) {
		return ^I(0), errors.Wrapf(ErrSyntax, "unescaped quote at offset %d in %q", end, raw)
	}
	return p.newText(String, buf[:len(raw)])
}

// NewNumber adds a number node. text must be a JSON number.
func (p *Pool[I, O]) NewNumber(text string) (I, error) {
	end, err := scanNumber([]byte(text), 0)
	if err != nil {
		return ^I(0), err
	}
	if end != len(text) {
		return ^I(0), errors.Wrapf(ErrSyntax, "invalid number %q", text)
	}
	return p.newText(Number, []byte(text))
}

// NewBool adds a true or false node.
func (p *Pool[I, O]) NewBool(b bool) (I, error) {
	if err := p.writable(); err != nil {
		return ^I(0), err
	}
	if b {
		return p.newNode(True, 0, 0)
	}
	return p.newNode(False, 0, 0)
}

// NewNull adds a null node.
func (p *Pool[I, O]) NewNull() (I, error) {
	if err := p.writable(); err != nil {
		return ^I(0), err
	}
	return p.newNode(Null, 0, 0)
}

// NewObject adds an object from alternating key and value nodes. Keys must
// be string nodes. Each node may belong to one container only.
func (p *Pool[I, O]) NewObject(pairs ...I) (I, error) {
	if err := p.writable(); err != nil {
		return ^I(0), err
	}
	if len(pairs)%2 != 0 {
		return ^I(0), errors.Newf("jpool: object needs key/value pairs, got %d nodes", len(pairs))
	}
	if err := p.checkChildren(pairs, true); err != nil {
		return ^I(0), err
	}
	return p.newContainer(Object, pairs)
}

// NewArray adds an array of the given nodes. Each node may belong to one
// container only.
func (p *Pool[I, O]) NewArray(values ...I) (I, error) {
	if err := p.writable(); err != nil {
		return ^I(0), err
	}
	if err := p.checkChildren(values, false); err != nil {
		return ^I(0), err
	}
	return p.newContainer(Array, values)
}

func (p *Pool[I, O]) newContainer(k Kind, children []I) (I, error) {
	if uint64(len(children)) > p.lay.lenMask {
		return ^I(0), errors.Wrapf(ErrSyntax, "%s of %d children exceeds limit %d", k, len(children), p.lay.lenMask)
	}
	first := ^I(0)
	if len(children) > 0 {
		first = children[0]
	}
	idx, err := p.newNode(k, uint64(first), uint64(len(children)))
	if err != nil {
		return ^I(0), err
	}
	for n, child := range children {
		if n > 0 {
			p.nodes[children[n-1]].next = child
		}
		p.meta[child].parent = idx
	}
	return idx, nil
}

// ObjectAdd appends a key/value member to obj.
func (p *Pool[I, O]) ObjectAdd(obj, key, value I) error {
	if err := p.writable(); err != nil {
		return err
	}
	if p.Kind(obj) != Object {
		return errors.Wrapf(ErrInvalidNode, "node %d is not an object", uint64(obj))
	}
	if err := p.checkDetached(key, true); err != nil {
		return err
	}
	if err := p.checkDetached(value, false); err != nil {
		return err
	}
	if key == value {
		return errors.Wrapf(ErrInvalidNode, "node %d used as both key and value", uint64(key))
	}
	if err := p.checkAcyclic(obj, value); err != nil {
		return err
	}
	if err := p.checkRoom(obj, 2); err != nil {
		return err
	}
	p.nodes[key].next = value
	p.appendChild(obj, key)
	p.meta[key].parent = obj
	p.meta[value].parent = obj
	p.setLen(obj, 2)
	return nil
}

// ArrayAdd appends value to arr.
func (p *Pool[I, O]) ArrayAdd(arr, value I) error {
	if err := p.writable(); err != nil {
		return err
	}
	if p.Kind(arr) != Array {
		return errors.Wrapf(ErrInvalidNode, "node %d is not an array", uint64(arr))
	}
	if err := p.checkDetached(value, false); err != nil {
		return err
	}
	if err := p.checkAcyclic(arr, value); err != nil {
		return err
	}
	if err := p.checkRoom(arr, 1); err != nil {
		return err
	}
	p.appendChild(arr, value)
	p.meta[value].parent = arr
	p.setLen(arr, 1)
	return nil
}

// SetRoot makes node i the root of a built tree.
func (p *Pool[I, O]) SetRoot(i I) error {
	if err := p.writable(); err != nil {
		return err
	}
	if !p.valid(i) {
		return errors.Wrapf(ErrInvalidNode, "node %d", uint64(i))
	}
	p.root = i
	p.state = stateBuilt
	return nil
}

func (p *Pool[I, O]) checkDetached(i I, key bool) error {
	if !p.valid(i) {
		return errors.Wrapf(ErrInvalidNode, "node %d", uint64(i))
	}
	if key && p.Kind(i) != String {
		return errors.Wrapf(ErrInvalidNode, "object key %d is %s, not a string", uint64(i), p.Kind(i))
	}
	if parent := p.meta[i].parent; parent != ^I(0) {
		return errors.Wrapf(ErrInvalidNode, "node %d already belongs to container %d", uint64(i), uint64(parent))
	}
	return nil
}

// checkChildren validates the children of a new container. Keys sit at
// even positions of an object's list.
func (p *Pool[I, O]) checkChildren(children []I, object bool) error {
	seen := make(map[I]struct{}, len(children))
	for n, i := range children {
		if err := p.checkDetached(i, object && n%2 == 0); err != nil {
			return err
		}
		if _, dup := seen[i]; dup {
			return errors.Wrapf(ErrInvalidNode, "node %d listed twice", uint64(i))
		}
		seen[i] = struct{}{}
	}
	return nil
}

// checkAcyclic rejects adding child to c when child is c or one of its
// ancestors.
func (p *Pool[I, O]) checkAcyclic(c, child I) error {
	for at := c; at != ^I(0); at = p.meta[at].parent {
		if at == child {
			return errors.Wrapf(ErrInvalidNode, "adding node %d to %d would create a cycle", uint64(child), uint64(c))
		}
	}
	return nil
}

// checkRoom checks that container c can take n more children.
func (p *Pool[I, O]) checkRoom(c I, n uint64) error {
	if uint64(p.Len(c))+n > p.lay.lenMask {
		return errors.Wrapf(ErrSyntax, "%s %d is full (%d children)", p.Kind(c), uint64(c), p.Len(c))
	}
	return nil
}

func (p *Pool[I, O]) appendChild(c, child I) {
	tail, ok := p.Child(c)
	if !ok {
		p.nodes[c].payload = O(child)
		return
	}
	for {
		next, ok := p.Next(tail)
		if !ok {
			break
		}
		tail = next
	}
	p.nodes[tail].next = child
}

func (p *Pool[I, O]) setLen(c I, add uint64) {
	nd := &p.nodes[c]
	n := p.lay.length(uint64(nd.blen)) + add
	nd.blen = I(p.lay.pack(p.lay.kind(uint64(nd.blen)), n))
}
