package jpool

import (
	"bytes"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Value is a handle on one node of a pool. It stays valid as long as the
// pool is not reset or freed, even if the pool grows.
type Value[I Index, O Offset] struct {
	p   *Pool[I, O]
	idx I
}

// RootValue returns a handle on the root node. It does not exist when the
// pool has no root.
func (p *Pool[I, O]) RootValue() Value[I, O] {
	root, _ := p.Root()
	return Value[I, O]{p: p, idx: root}
}

// Value returns a handle on node i.
func (p *Pool[I, O]) Value(i I) Value[I, O] {
	return Value[I, O]{p: p, idx: i}
}

// Exists returns true if the handle addresses a node.
func (v Value[I, O]) Exists() bool {
	return v.p != nil && v.p.valid(v.idx)
}

// Kind returns the JSON kind of the node.
func (v Value[I, O]) Kind() Kind {
	if v.p == nil {
		return Undefined
	}
	return v.p.Kind(v.idx)
}

// Index returns the node index.
func (v Value[I, O]) Index() I {
	return v.idx
}

// Raw returns the node as compact JSON.
func (v Value[I, O]) Raw() []byte {
	if !v.Exists() {
		return nil
	}
	return v.p.AppendJSON(nil, v.idx, nil)
}

// String returns the unescaped contents of a string, the text of a number,
// the name of a literal, or the compact JSON of a container. null and
// missing values give "".
func (v Value[I, O]) String() string {
	switch k := v.Kind(); k {
	case String:
		return unquote(v.p.Text(v.idx))
	case Number:
		return string(v.p.Text(v.idx))
	case True, False:
		return k.String()
	case Object, Array:
		return string(v.Raw())
	default:
		return ""
	}
}

// Int returns the value as an int64. Numbers with a fraction or exponent
// are truncated, strings are parsed and true is 1.
func (v Value[I, O]) Int() int64 {
	switch v.Kind() {
	case Number:
		if n, err := v.p.Int64(v.idx); err == nil {
			return n
		}
		f, _ := v.p.Float64(v.idx)
		return int64(f)
	case String:
		n, _ := strconv.ParseInt(v.String(), 10, 64)
		return n
	case True:
		return 1
	default:
		return 0
	}
}

// Float returns the value as a float64.
func (v Value[I, O]) Float() float64 {
	switch v.Kind() {
	case Number:
		f, _ := v.p.Float64(v.idx)
		return f
	case String:
		f, _ := strconv.ParseFloat(v.String(), 64)
		return f
	case True:
		return 1
	default:
		return 0
	}
}

// Bool returns the value as a bool.
func (v Value[I, O]) Bool() bool {
	switch v.Kind() {
	case True:
		return true
	case String:
		b, _ := strconv.ParseBool(v.String())
		return b
	case Number:
		return v.Float() != 0
	default:
		return false
	}
}

// IsNull returns true if the value is JSON null.
func (v Value[I, O]) IsNull() bool {
	return v.Kind() == Null
}

// IsObject returns true if the value is a JSON object.
func (v Value[I, O]) IsObject() bool {
	return v.Kind() == Object
}

// IsArray returns true if the value is a JSON array.
func (v Value[I, O]) IsArray() bool {
	return v.Kind() == Array
}

// Len returns the element count of an array or member count of an object.
func (v Value[I, O]) Len() int {
	if v.p == nil {
		return 0
	}
	return v.p.Members(v.idx)
}

// Get evaluates a query path relative to this value.
func (v Value[I, O]) Get(path string) Value[I, O] {
	if v.p == nil {
		return v
	}
	i, err := v.p.Query(v.idx, path)
	if err != nil {
		return Value[I, O]{p: v.p, idx: ^I(0)}
	}
	return Value[I, O]{p: v.p, idx: i}
}

// ForEach iterates over the members of an object or the elements of an
// array. For arrays the key does not exist.
func (v Value[I, O]) ForEach(iterator func(key, value Value[I, O]) bool) {
	if v.p == nil {
		return
	}
	v.p.ForEach(v.idx, func(k, val I) bool {
		return iterator(Value[I, O]{p: v.p, idx: k}, Value[I, O]{p: v.p, idx: val})
	})
}

// Array returns the elements of an array, or nil for any other kind.
func (v Value[I, O]) Array() []Value[I, O] {
	if !v.IsArray() {
		return nil
	}
	out := make([]Value[I, O], 0, v.Len())
	v.ForEach(func(_, val Value[I, O]) bool {
		out = append(out, val)
		return true
	})
	return out
}

// Map returns the members of an object keyed by their unescaped names.
// Later duplicates replace earlier ones.
func (v Value[I, O]) Map() map[string]Value[I, O] {
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]Value[I, O], v.Len())
	v.ForEach(func(key, val Value[I, O]) bool {
		out[key.String()] = val
		return true
	})
	return out
}

// unquote unescapes the raw text of a string node.
func unquote(text []byte) string {
	if bytes.IndexByte(text, '\\') < 0 {
		return string(text)
	}
	quoted := make([]byte, 0, len(text)+2)
	quoted = append(quoted, '"')
	quoted = append(quoted, text...)
	quoted = append(quoted, '"')
	var s string
	if err := gojson.Unmarshal(quoted, &s); err != nil {
		return string(text)
	}
	return s
}
