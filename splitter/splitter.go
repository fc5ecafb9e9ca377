// Package splitter implements the block codec: cutting a byte stream into
// ordered, size-bounded blocks and reassembling them. Splitting is pure and
// deterministic, so for any payload p and positive block size n,
// Join(Split(p, n)) == p.
package splitter

import (
	"errors"
	"fmt"
)

// ErrInvalidBlockSize is returned when the configured block size is not a
// positive integer.
var ErrInvalidBlockSize = errors.New("block size must be positive")

// Split cuts data into consecutive blocks of exactly blockSize bytes; only
// the final block may be shorter. A zero-length payload yields no blocks.
func Split(data []byte, blockSize int) ([][]byte, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	blocks := make([][]byte, 0, (len(data)+blockSize-1)/blockSize)
	for start := 0; start < len(data); start += blockSize {
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}
		blocks = append(blocks, data[start:end])
	}
	return blocks, nil
}

// Join concatenates blocks in the given order with no separators. Order is
// load-bearing: blocks must be passed in their original split order, not in
// fetch-completion order.
func Join(blocks [][]byte) []byte {
	var total int
	for _, b := range blocks {
		total += len(b)
	}

	out := make([]byte, 0, total)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
