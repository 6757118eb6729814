package terminal

import (
	"bufio"
	"bytes"
	"io"
)

// MaxLineLength caps a scanned line. Longer output is returned in chunks of
// this size so a scanner never stops on ErrTooLong.
const MaxLineLength = 64 * 1024

// NewLineScanner returns a scanner over r that splits with ScanLines.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 2*MaxLineLength)
	scanner.Split(ScanLines)
	return scanner
}

// ScanLines is a bufio.SplitFunc that ends a line at "\n", "\r\n" or a bare
// "\r", the way progress bars redraw. Lines longer than MaxLineLength are
// split.
func ScanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 && i < MaxLineLength {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing "\r" may be the first half of "\r\n".
		return 0, nil, nil
	}
	if len(data) >= MaxLineLength {
		return MaxLineLength, data[:MaxLineLength], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
