package jpool

import "unsafe"

// Index is the integer type used for node indices and the packed
// kind/length word. Its width selects the profile.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// Offset is the integer type of a node payload: a child index for
// containers and a text offset for strings and numbers. It must be at
// least as wide as the Index type of the same pool.
type Offset interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Kind identifies the JSON type of a node.
type Kind uint8

const (
	Undefined Kind = iota
	Object
	Array
	String
	Number
	True
	False
	Null
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	default:
		return "undefined"
	}
}

// Node is one fixed-size slot of a pool. The kind lives in the top three
// bits of blen and the length or child count in the rest. The payload is
// the first child index of a container, or the text offset of a string or
// number. next links siblings; the all-ones index terminates a chain.
type Node[I Index, O Offset] struct {
	payload O
	blen    I
	next    I
}

// Profile aliases. The Ext variants widen only the text offset so that
// larger inputs can be addressed with the same node count.
type (
	NarrowNode    = Node[uint8, uint8]
	MediumNode    = Node[uint16, uint16]
	WideNode      = Node[uint32, uint32]
	NarrowExtNode = Node[uint8, uint16]
	MediumExtNode = Node[uint16, uint32]
	WideExtNode   = Node[uint32, uint64]

	Narrow    = Pool[uint8, uint8]
	Medium    = Pool[uint16, uint16]
	Wide      = Pool[uint32, uint32]
	NarrowExt = Pool[uint8, uint16]
	MediumExt = Pool[uint16, uint32]
	WideExt   = Pool[uint32, uint64]
)

// Limits describes the ranges of a profile.
type Limits struct {
	// MaxLength is the largest string/number byte length and the largest
	// container child count (objects count keys and values).
	MaxLength uint64 `json:"max_length"`
	// MaxNodes is the number of addressable nodes. The all-ones index is
	// reserved as the chain terminator.
	MaxNodes uint64 `json:"max_nodes"`
	// MaxInput is the largest input length in bytes.
	MaxInput uint64 `json:"max_input"`
	NodeSize int    `json:"node_size"`
}

type layout struct {
	shift    uint
	lenMask  uint64
	invalid  uint64
	maxInput uint64
	nodeSize int
	idxSize  uintptr
	offSize  uintptr
}

func layoutOf[I Index, O Offset]() layout {
	var (
		i I
		o O
		n Node[I, O]
	)
	bits := uint(unsafe.Sizeof(i)) * 8
	return layout{
		shift:    bits - 3,
		lenMask:  ^uint64(0) >> (64 - (bits - 3)),
		invalid:  uint64(^I(0)),
		maxInput: uint64(^O(0)),
		nodeSize: int(unsafe.Sizeof(n)),
		idxSize:  unsafe.Sizeof(i),
		offSize:  unsafe.Sizeof(o),
	}
}

func (l layout) limits() Limits {
	return Limits{
		MaxLength: l.lenMask,
		MaxNodes:  l.invalid,
		MaxInput:  l.maxInput,
		NodeSize:  l.nodeSize,
	}
}

func (l layout) pack(k Kind, n uint64) uint64 {
	return uint64(k)<<l.shift | n&l.lenMask
}

func (l layout) kind(blen uint64) Kind {
	return Kind(blen >> l.shift)
}

func (l layout) length(blen uint64) uint64 {
	return blen & l.lenMask
}
