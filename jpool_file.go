package jpool

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// MappedFile is the read-only contents of a file, memory mapped where the
// platform supports it.
type MappedFile struct {
	data   []byte
	unmap  func() error
	closed bool
}

// MapFile maps the file at path. Files that cannot be mapped, such as
// pipes, are read into memory instead.
func MapFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "jpool: open")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "jpool: stat")
	}
	if !st.Mode().IsRegular() {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.Wrapf(err, "jpool: read %s", path)
		}
		return &MappedFile{data: data}, nil
	}
	data, unmap, err := mapFile(f, st.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "jpool: map %s", path)
	}
	return &MappedFile{data: data, unmap: unmap}, nil
}

// Bytes returns the file contents. The slice must not be modified or used
// after Close.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Len returns the file size.
func (m *MappedFile) Len() int {
	return len(m.data)
}

// Close unmaps the file. It is safe to call more than once.
func (m *MappedFile) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.data = nil
	if m.unmap == nil {
		return nil
	}
	return m.unmap()
}

// DecodeFile maps the file at path and decodes it. The mapping lives as
// long as the tree: it is released by the next Decode, Reset or Free.
func (p *Pool[I, O]) DecodeFile(path string) error {
	if p.freed {
		return ErrFreed
	}
	m, err := MapFile(path)
	if err != nil {
		return err
	}
	if err := p.Decode(m.Bytes()); err != nil {
		return errors.CombineErrors(err, m.Close())
	}
	p.onFree = append(p.onFree, m.Close)
	return nil
}
