package jpool

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/match"
)

// maxCachedQueries bounds the compiled-query cache. When it fills up the
// cache is dropped and refilled from scratch.
const maxCachedQueries = 1024

// Compiled queries shared by all pools (thread-safe)
var (
	queryCache    sync.Map
	queryCacheLen atomic.Int64
)

// Query is a compiled path such as `store.books[2].title`. Keys are
// separated by '.', array elements are selected with [n]. A backslash
// makes the next character part of the key. A key containing an unescaped
// '*' or '?' is a wildcard pattern and selects the first matching member.
type Query struct {
	path  string
	steps []queryStep
}

type queryStep struct {
	key      string
	index    int
	isIndex  bool
	wildcard bool
}

// CompileQuery parses path.
func CompileQuery(path string) (*Query, error) {
	if path == "" {
		return nil, errors.Wrap(ErrInvalidQuery, "empty path")
	}
	q := &Query{path: path}
	pos := 0
	for {
		var (
			step queryStep
			err  error
		)
		if path[pos] == '[' {
			step, pos, err = parseIndexStep(path, pos)
		} else {
			step, pos, err = parseKeyStep(path, pos)
		}
		if err != nil {
			return nil, err
		}
		q.steps = append(q.steps, step)

		if pos == len(path) {
			return q, nil
		}
		switch path[pos] {
		case '.':
			pos++
			if pos == len(path) {
				return nil, errors.Wrapf(ErrInvalidQuery, "%q ends with '.'", path)
			}
		case '[':
		default:
			return nil, errors.Wrapf(ErrInvalidQuery, "unexpected %q at offset %d in %q", path[pos], pos, path)
		}
	}
}

// MustCompileQuery is like CompileQuery but panics if path is invalid.
func MustCompileQuery(path string) *Query {
	q, err := CompileQuery(path)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the source path.
func (q *Query) String() string {
	return q.path
}

func parseIndexStep(path string, pos int) (queryStep, int, error) {
	start := pos + 1
	end := start
	for end < len(path) && isDigit(path[end]) {
		end++
	}
	switch {
	case end == start:
		return queryStep{}, pos, errors.Wrapf(ErrInvalidQuery, "missing index at offset %d in %q", start, path)
	case end-start > 1 && path[start] == '0':
		return queryStep{}, pos, errors.Wrapf(ErrInvalidQuery, "leading zero in index at offset %d in %q", start, path)
	case end == len(path) || path[end] != ']':
		return queryStep{}, pos, errors.Wrapf(ErrInvalidQuery, "unterminated index at offset %d in %q", pos, path)
	}
	n, err := strconv.Atoi(path[start:end])
	if err != nil {
		return queryStep{}, pos, errors.Wrapf(ErrInvalidQuery, "index %s: %v", path[start:end], err)
	}
	return queryStep{index: n, isIndex: true}, end + 1, nil
}

func parseKeyStep(path string, pos int) (queryStep, int, error) {
	var (
		b        strings.Builder
		wildcard bool
		start    = pos
	)
	for pos < len(path) {
		c := path[pos]
		if c == '.' || c == '[' || c == ']' {
			break
		}
		if c == '\\' {
			pos++
			if pos == len(path) {
				return queryStep{}, start, errors.Wrapf(ErrInvalidQuery, "%q ends with '\\'", path)
			}
			b.WriteByte(path[pos])
			pos++
			continue
		}
		if c == '*' || c == '?' {
			wildcard = true
		}
		b.WriteByte(c)
		pos++
	}
	if pos == start {
		return queryStep{}, start, errors.Wrapf(ErrInvalidQuery, "empty key at offset %d in %q", start, path)
	}
	if wildcard {
		// match.Match understands the same backslash escapes
		return queryStep{key: path[start:pos], wildcard: true}, pos, nil
	}
	return queryStep{key: b.String()}, pos, nil
}

// Query evaluates path starting at node from. Compiled paths are cached.
func (p *Pool[I, O]) Query(from I, path string) (I, error) {
	q, err := cachedQuery(path)
	if err != nil {
		return ^I(0), err
	}
	return p.Exec(from, q)
}

// cachedQuery returns the compiled form of path, compiling and caching it
// on first use. Invalid paths are not cached.
func cachedQuery(path string) (*Query, error) {
	if cached, ok := queryCache.Load(path); ok {
		return cached.(*Query), nil
	}
	q, err := CompileQuery(path)
	if err != nil {
		return nil, err
	}
	if queryCacheLen.Add(1) > maxCachedQueries {
		queryCache.Clear()
		queryCacheLen.Store(1)
	}
	if _, loaded := queryCache.LoadOrStore(path, q); loaded {
		queryCacheLen.Add(-1)
	}
	return q, nil
}

// Exec evaluates a compiled query starting at node from.
func (p *Pool[I, O]) Exec(from I, q *Query) (I, error) {
	if !p.valid(from) {
		return ^I(0), errors.Wrapf(ErrInvalidNode, "node %d", uint64(from))
	}
	cur := from
	for n, step := range q.steps {
		var ok bool
		if step.isIndex {
			cur, ok = p.Index(cur, step.index)
		} else {
			cur, ok = p.findKey(cur, step)
		}
		if !ok {
			return ^I(0), errors.Wrapf(ErrNotFound, "%q: step %d", q.path, n+1)
		}
	}
	return cur, nil
}

func (p *Pool[I, O]) findKey(obj I, step queryStep) (I, bool) {
	if p.Kind(obj) != Object {
		return ^I(0), false
	}
	found := ^I(0)
	p.ForEach(obj, func(k, v I) bool {
		raw := p.Text(k)
		var hit bool
		switch {
		case step.wildcard:
			hit = match.Match(unquote(raw), step.key)
		case bytes.IndexByte(raw, '\\') < 0:
			hit = string(raw) == step.key
		default:
			hit = unquote(raw) == step.key
		}
		if hit {
			found = v
		}
		return !hit
	})
	return found, found != ^I(0)
}
