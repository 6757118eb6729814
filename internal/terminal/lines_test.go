package terminal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, input string) []string {
	t.Helper()
	scanner := NewLineScanner(strings.NewReader(input))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestScanLinesSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "newline", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "carriage return redraw", input: "[1/3]\r[2/3]\r[3/3]\ndone\n", want: []string{"[1/3]", "[2/3]", "[3/3]", "done"}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "trailing carriage return", input: "a\r", want: []string{"a"}},
		{name: "empty", input: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, scanAll(t, tt.input))
		})
	}
}

func TestScanLinesSplitsOverlongLines(t *testing.T) {
	long := strings.Repeat("x", MaxLineLength+100)
	lines := scanAll(t, long+"\nafter\n")

	require.Len(t, lines, 3)
	require.Len(t, lines[0], MaxLineLength)
	require.Len(t, lines[1], 100)
	require.Equal(t, "after", lines[2])
}
