package jpool

//------------------------------------------------------------------------------
// LOOKUP TABLES
//------------------------------------------------------------------------------

var whitespace = [256]bool{' ': true, '\t': true, '\n': true, '\r': true}

// escapable lists the bytes allowed after a backslash, apart from 'u'.
var escapable = [256]bool{
	'"': true, '\\': true, '/': true,
	'b': true, 'f': true, 'n': true, 'r': true, 't': true,
}

var hexDigit = func() [256]bool {
	var t [256]bool
	for c := '0'; c <= '9'; c++ {
		t[c] = true
	}
	for c := 'a'; c <= 'f'; c++ {
		t[c] = true
		t[c-'a'+'A'] = true
	}
	return t
}()

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

//------------------------------------------------------------------------------
// SCANNERS
//------------------------------------------------------------------------------

// scanString scans string contents starting just after the opening quote
// and returns the position of the closing quote.
func scanString(data []byte, pos int) (int, error) {
	for pos < len(data) {
		c := data[pos]
		switch {
		case c == '"':
			return pos, nil
		case c < 0x20:
			return pos, syntaxError(pos, "control character 0x%02x in string", c)
		case c == '\\':
			pos++
			if pos >= len(data) {
				return pos, syntaxError(pos, "unterminated string")
			}
			if data[pos] == 'u' {
				if len(data)-pos-1 < 4 {
					return len(data), syntaxError(len(data), "unterminated string")
				}
				for k := 1; k <= 4; k++ {
					if !hexDigit[data[pos+k]] {
						return pos + k, syntaxError(pos+k, "invalid hex digit %q in \\u escape", data[pos+k])
					}
				}
				pos += 5
				continue
			}
			if !escapable[data[pos]] {
				return pos, syntaxError(pos, "invalid escape character %q", data[pos])
			}
			pos++
		default:
			pos++
		}
	}
	return pos, syntaxError(pos, "unterminated string")
}

// scanNumber scans a number starting at pos and returns the position just
// past it. Leading zeros, a bare '.' and an empty exponent are rejected.
func scanNumber(data []byte, pos int) (int, error) {
	if pos < len(data) && data[pos] == '-' {
		pos++
	}
	if pos >= len(data) {
		return pos, syntaxError(pos, "expected digit")
	}
	switch c := data[pos]; {
	case c == '0':
		pos++
	case c >= '1' && c <= '9':
		pos++
		for pos < len(data) && isDigit(data[pos]) {
			pos++
		}
	default:
		return pos, syntaxError(pos, "expected digit, found %q", c)
	}
	if pos < len(data) && data[pos] == '.' {
		pos++
		if pos >= len(data) || !isDigit(data[pos]) {
			return pos, syntaxError(pos, "expected digit after decimal point")
		}
		for pos < len(data) && isDigit(data[pos]) {
			pos++
		}
	}
	if pos < len(data) && (data[pos] == 'e' || data[pos] == 'E') {
		pos++
		if pos < len(data) && (data[pos] == '+' || data[pos] == '-') {
			pos++
		}
		if pos >= len(data) || !isDigit(data[pos]) {
			return pos, syntaxError(pos, "expected digit in exponent")
		}
		for pos < len(data) && isDigit(data[pos]) {
			pos++
		}
	}
	return pos, nil
}

//------------------------------------------------------------------------------
// PRODUCTIONS
//------------------------------------------------------------------------------

// decoder holds the state of one Decode call. Every production takes the
// cursor and returns the advanced cursor and the index of the node it
// created. Node storage may move on any allocation, so nodes are always
// addressed through d.p.nodes right before use.
type decoder[I Index, O Offset] struct {
	p     *Pool[I, O]
	data  []byte
	depth int
}

func (d *decoder[I, O]) skipWS(pos int) int {
	for pos < len(d.data) && whitespace[d.data[pos]] {
		pos++
	}
	return pos
}

func (d *decoder[I, O]) element() (I, error) {
	pos := 0
	if len(d.data) >= 3 && d.data[0] == 0xEF && d.data[1] == 0xBB && d.data[2] == 0xBF {
		pos = 3
	}
	pos = d.skipWS(pos)
	if pos >= len(d.data) {
		return ^I(0), syntaxError(pos, "empty input")
	}
	pos, idx, err := d.value(pos)
	if err != nil {
		return ^I(0), err
	}
	if pos != len(d.data) {
		return ^I(0), syntaxError(pos, "unexpected %q after top-level value", d.data[pos])
	}
	return idx, nil
}

func (d *decoder[I, O]) value(pos int) (int, I, error) {
	pos = d.skipWS(pos)
	if pos >= len(d.data) {
		return pos, ^I(0), syntaxError(pos, "unexpected end of input")
	}
	var (
		idx I
		err error
	)
	switch c := d.data[pos]; {
	case c == '"':
		pos, idx, err = d.string(pos)
	case c == '-' || isDigit(c):
		pos, idx, err = d.number(pos)
	case c == '{':
		pos, idx, err = d.object(pos)
	case c == '[':
		pos, idx, err = d.array(pos)
	case c == 't':
		pos, idx, err = d.literal(pos, "true", True)
	case c == 'f':
		pos, idx, err = d.literal(pos, "false", False)
	case c == 'n':
		pos, idx, err = d.literal(pos, "null", Null)
	default:
		return pos, ^I(0), syntaxError(pos, "unexpected character %q", c)
	}
	if err != nil {
		return pos, ^I(0), err
	}
	return d.skipWS(pos), idx, nil
}

// leaf allocates a childless node.
func (d *decoder[I, O]) leaf(pos int, k Kind, payload, n uint64) (I, error) {
	if n > d.p.lay.lenMask {
		return ^I(0), syntaxError(pos, "%s of %d bytes exceeds limit %d", k, n, d.p.lay.lenMask)
	}
	idx, err := d.p.allocate(1)
	if err != nil {
		return ^I(0), exhausted(pos, err)
	}
	nd := &d.p.nodes[idx]
	nd.payload = O(payload)
	nd.blen = I(d.p.lay.pack(k, n))
	nd.next = ^I(0)
	return idx, nil
}

func (d *decoder[I, O]) string(pos int) (int, I, error) {
	end, err := scanString(d.data, pos+1)
	if err != nil {
		return end, ^I(0), err
	}
	idx, err := d.leaf(pos, String, uint64(pos+1), uint64(end-pos-1))
	return end + 1, idx, err
}

func (d *decoder[I, O]) number(pos int) (int, I, error) {
	end, err := scanNumber(d.data, pos)
	if err != nil {
		return end, ^I(0), err
	}
	idx, err := d.leaf(pos, Number, uint64(pos), uint64(end-pos))
	return end, idx, err
}

func (d *decoder[I, O]) literal(pos int, lit string, k Kind) (int, I, error) {
	if len(d.data)-pos < len(lit) || string(d.data[pos:pos+len(lit)]) != lit {
		return pos, ^I(0), syntaxError(pos, "invalid literal, expected %s", lit)
	}
	idx, err := d.leaf(pos, k, 0, 0)
	return pos + len(lit), idx, err
}

// link appends idx to the chain described by first and last.
func (d *decoder[I, O]) link(first, last *I, idx I) {
	if *first == ^I(0) {
		*first = idx
	} else {
		d.p.nodes[*last].next = idx
	}
	*last = idx
}

// container allocates the parent node once all children are linked.
func (d *decoder[I, O]) container(pos int, k Kind, first I, count uint64) (I, error) {
	idx, err := d.p.allocate(1)
	if err != nil {
		return ^I(0), exhausted(pos, err)
	}
	nd := &d.p.nodes[idx]
	nd.payload = O(first)
	nd.blen = I(d.p.lay.pack(k, count))
	nd.next = ^I(0)
	return idx, nil
}

func (d *decoder[I, O]) enter(pos int) error {
	d.depth++
	if d.depth > d.p.opts.maxDepth {
		return syntaxError(pos, "nesting exceeds maximum depth %d", d.p.opts.maxDepth)
	}
	return nil
}

func (d *decoder[I, O]) object(start int) (int, I, error) {
	defer func() { d.depth-- }()
	if err := d.enter(start); err != nil {
		return start, ^I(0), err
	}
	first, last := ^I(0), ^I(0)
	var count uint64
	pos := d.skipWS(start + 1)
	if pos < len(d.data) && d.data[pos] == '}' {
		idx, err := d.container(pos, Object, first, 0)
		return pos + 1, idx, err
	}
	for {
		pos = d.skipWS(pos)
		if pos >= len(d.data) || d.data[pos] != '"' {
			return pos, ^I(0), syntaxError(pos, "expected object key")
		}
		if count+2 > d.p.lay.lenMask {
			return pos, ^I(0), syntaxError(pos, "object exceeds %d members", d.p.lay.lenMask/2)
		}
		var (
			key, val I
			err      error
		)
		pos, key, err = d.string(pos)
		if err != nil {
			return pos, ^I(0), err
		}
		d.link(&first, &last, key)
		pos = d.skipWS(pos)
		if pos >= len(d.data) || d.data[pos] != ':' {
			return pos, ^I(0), syntaxError(pos, "expected ':' after object key")
		}
		pos, val, err = d.value(pos + 1)
		if err != nil {
			return pos, ^I(0), err
		}
		d.link(&first, &last, val)
		count += 2
		if pos >= len(d.data) {
			return pos, ^I(0), syntaxError(pos, "unterminated object")
		}
		switch d.data[pos] {
		case ',':
			pos++
		case '}':
			idx, err := d.container(pos, Object, first, count)
			return pos + 1, idx, err
		default:
			return pos, ^I(0), syntaxError(pos, "expected ',' or '}' in object")
		}
	}
}

func (d *decoder[I, O]) array(start int) (int, I, error) {
	defer func() { d.depth-- }()
	if err := d.enter(start); err != nil {
		return start, ^I(0), err
	}
	first, last := ^I(0), ^I(0)
	var count uint64
	pos := d.skipWS(start + 1)
	if pos < len(d.data) && d.data[pos] == ']' {
		idx, err := d.container(pos, Array, first, 0)
		return pos + 1, idx, err
	}
	for {
		if count+1 > d.p.lay.lenMask {
			return pos, ^I(0), syntaxError(pos, "array exceeds %d elements", d.p.lay.lenMask)
		}
		var (
			val I
			err error
		)
		pos, val, err = d.value(pos)
		if err != nil {
			return pos, ^I(0), err
		}
		d.link(&first, &last, val)
		count++
		if pos >= len(d.data) {
			return pos, ^I(0), syntaxError(pos, "unterminated array")
		}
		switch d.data[pos] {
		case ',':
			pos++
		case ']':
			idx, err := d.container(pos, Array, first, count)
			return pos + 1, idx, err
		default:
			return pos, ^I(0), syntaxError(pos, "expected ',' or ']' in array")
		}
	}
}
