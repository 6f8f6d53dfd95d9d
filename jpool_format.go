package jpool

import (
	"bytes"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
)

// FormatOptions controls how a tree is written back as JSON.
type FormatOptions struct {
	Indent   string // Indentation string (e.g., "  ", "\t"); empty for compact output
	SortKeys bool   // Whether to sort object keys by their raw text
}

// DefaultFormatOptions are used by Pretty.
var DefaultFormatOptions = &FormatOptions{Indent: "  "}

// Ugly returns node i as compact JSON.
func (p *Pool[I, O]) Ugly(i I) ([]byte, error) {
	return p.PrettyWithOptions(i, &FormatOptions{})
}

// Pretty returns node i as JSON indented with two spaces.
func (p *Pool[I, O]) Pretty(i I) ([]byte, error) {
	return p.PrettyWithOptions(i, DefaultFormatOptions)
}

// PrettyWithOptions returns node i formatted with opts. A nil opts means
// DefaultFormatOptions; an empty Indent gives compact output.
func (p *Pool[I, O]) PrettyWithOptions(i I, opts *FormatOptions) ([]byte, error) {
	if !p.valid(i) {
		return nil, errors.Wrapf(ErrInvalidNode, "node %d", uint64(i))
	}
	if opts == nil {
		opts = DefaultFormatOptions
	}
	return p.AppendJSON(nil, i, opts), nil
}

// AppendJSON appends node i formatted with opts to dst. A nil opts gives
// compact output. Nothing is appended for an invalid index.
func (p *Pool[I, O]) AppendJSON(dst []byte, i I, opts *FormatOptions) []byte {
	if opts == nil {
		opts = &FormatOptions{}
	}
	return p.appendValue(dst, i, opts, 0)
}

// WriteJSON writes node i formatted with opts followed by a newline.
func (p *Pool[I, O]) WriteJSON(w io.Writer, i I, opts *FormatOptions) error {
	out, err := p.PrettyWithOptions(i, opts)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

//------------------------------------------------------------------------------
// PRINTER
//------------------------------------------------------------------------------

func (p *Pool[I, O]) appendValue(dst []byte, i I, opts *FormatOptions, depth int) []byte {
	switch k := p.Kind(i); k {
	case String:
		dst = append(dst, '"')
		dst = append(dst, p.Text(i)...)
		return append(dst, '"')
	case Number:
		return append(dst, p.Text(i)...)
	case True, False, Null:
		return append(dst, k.String()...)
	case Object:
		return p.appendObject(dst, i, opts, depth)
	case Array:
		return p.appendArray(dst, i, opts, depth)
	}
	return dst
}

func (p *Pool[I, O]) appendObject(dst []byte, i I, opts *FormatOptions, depth int) []byte {
	if p.Len(i) == 0 {
		return append(dst, '{', '}')
	}
	pairs := make([][2]I, 0, p.Members(i))
	p.ForEach(i, func(k, v I) bool {
		pairs = append(pairs, [2]I{k, v})
		return true
	})
	if opts.SortKeys {
		sort.SliceStable(pairs, func(a, b int) bool {
			return bytes.Compare(p.Text(pairs[a][0]), p.Text(pairs[b][0])) < 0
		})
	}

	dst = append(dst, '{')
	for n, kv := range pairs {
		if n > 0 {
			dst = append(dst, ',')
		}
		dst = appendNewline(dst, opts, depth+1)
		dst = p.appendValue(dst, kv[0], opts, depth+1)
		dst = append(dst, ':')
		if opts.Indent != "" {
			dst = append(dst, ' ')
		}
		dst = p.appendValue(dst, kv[1], opts, depth+1)
	}
	dst = appendNewline(dst, opts, depth)
	return append(dst, '}')
}

func (p *Pool[I, O]) appendArray(dst []byte, i I, opts *FormatOptions, depth int) []byte {
	if p.Len(i) == 0 {
		return append(dst, '[', ']')
	}
	dst = append(dst, '[')
	n := 0
	p.ForEach(i, func(_, v I) bool {
		if n > 0 {
			dst = append(dst, ',')
		}
		n++
		dst = appendNewline(dst, opts, depth+1)
		dst = p.appendValue(dst, v, opts, depth+1)
		return true
	})
	dst = appendNewline(dst, opts, depth)
	return append(dst, ']')
}

func appendNewline(dst []byte, opts *FormatOptions, depth int) []byte {
	if opts.Indent == "" {
		return dst
	}
	dst = append(dst, '\n')
	for ; depth > 0; depth-- {
		dst = append(dst, opts.Indent...)
	}
	return dst
}
