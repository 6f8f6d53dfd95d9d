//go:build !unix

package jpool

import (
	"io"
	"os"
)

func mapFile(f *os.File, _ int64) ([]byte, func() error, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}
