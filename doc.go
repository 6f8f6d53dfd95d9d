// Package jpool decodes JSON into a compact tree of fixed-size nodes held
// in a single slice.
//
// Nodes refer to each other by index rather than by pointer, so a tree can
// be grown, copied or reused without per-node allocations. Strings and
// numbers are not copied: their nodes record an offset and length into the
// input buffer, which must outlive the tree.
//
// Three profiles trade node size for range:
//
//	profile  node    max length/count  max nodes
//	Narrow   3 B     31                255
//	Medium   6 B     8191              65535
//	Wide     12 B    536870911         4294967295
//
// The Ext variants (NarrowExt, MediumExt, WideExt) widen only the text
// offset so that larger inputs can be addressed.
//
// Basic usage:
//
//	p, err := jpool.Decode(data)
//	if err != nil {
//		return err
//	}
//	title := p.RootValue().Get("store.books[0].title").String()
//
// Pools can be reused across decodes, backed by a caller-supplied buffer
// that never grows, or used to build a tree from scratch with NewString,
// NewObject and friends.
package jpool
