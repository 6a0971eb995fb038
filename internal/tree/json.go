// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/bcicen/jstream"
)

// ErrNotArray is returned by StreamJSON when the top-level value is not a
// JSON array.
var ErrNotArray = errors.New("JSON input is not an array")

// StreamJSON reads a JSON array of tree nodes and calls fn for each
// element in order, without holding the whole array in memory. Objects
// arrive as map[string]any, arrays as []any and numbers as float64.
// Any other top-level value is rejected with ErrNotArray; empty input
// yields no nodes.
//
// After fn returns an error the remaining input is drained but fn is not
// called again; that first error is returned.
func StreamJSON(r io.Reader, fn func(any) error) error {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading JSON stream: %w", err)
	}
	if first != '[' {
		return fmt.Errorf("%w: starts with %q", ErrNotArray, first)
	}

	dec := jstream.NewDecoder(br, 1)

	var fnErr error
	for mv := range dec.Stream() {
		if fnErr != nil {
			continue
		}
		fnErr = fn(mv.Value)
	}
	if fnErr != nil {
		return fnErr
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("decoding JSON stream: %w", err)
	}
	return nil
}

// firstByte returns the first non-whitespace byte of br and leaves it
// unread.
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c, br.UnreadByte()
	}
}
