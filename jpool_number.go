package jpool

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

var errNotInteger = errors.New("jpool: number is not an unsigned integer")

// Uint64 converts a number node holding a plain unsigned integer.
func (p *Pool[I, O]) Uint64(i I) (uint64, error) {
	text, err := p.numberText(i)
	if err != nil {
		return 0, err
	}
	return atou64(text)
}

// Int64 converts a number node holding an integer.
func (p *Pool[I, O]) Int64(i I) (int64, error) {
	text, err := p.numberText(i)
	if err != nil {
		return 0, err
	}
	if len(text) > 0 && text[0] != '-' {
		u, err := atou64(text)
		if err == nil && u <= math.MaxInt64 {
			return int64(u), nil
		}
	}
	n, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "jpool: node %d", uint64(i))
	}
	return n, nil
}

// Float64 converts any number node.
func (p *Pool[I, O]) Float64(i I) (float64, error) {
	text, err := p.numberText(i)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "jpool: node %d", uint64(i))
	}
	return f, nil
}

func (p *Pool[I, O]) numberText(i I) ([]byte, error) {
	if k := p.Kind(i); k != Number {
		return nil, errors.Wrapf(ErrInvalidNode, "node %d is %s, not a number", uint64(i), k)
	}
	return p.Text(i), nil
}

// atou64 parses a run of decimal digits with overflow detection.
func atou64(text []byte) (uint64, error) {
	if len(text) == 0 {
		return 0, errNotInteger
	}
	var v uint64
	for _, c := range text {
		if !isDigit(c) {
			return 0, errors.Wrapf(errNotInteger, "%q", text)
		}
		d := uint64(c - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, errors.Wrapf(strconv.ErrRange, "jpool: %q overflows uint64", text)
		}
		v = v*10 + d
	}
	return v, nil
}
