package gatewaytest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/snowfallorg/icicle/internal/gateway"
)

func TestRecorderScriptsAndRecords(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	r := New().
		On("uname", Response{Output: []byte("aarch64\n")}).
		On("helper partition", Response{Progress: []string{"one", "two"}, Err: boom}).
		FailWrite("/x/b.nix", boom)

	out, err := r.Output(ctx, gateway.Cmd("uname", "-m"))
	require.NoError(t, err)
	require.Equal(t, "aarch64\n", string(out))

	var lines []string
	err = r.Stream(ctx, gateway.Privileged("helper", "partition"), []byte("{}"), func(l string) { lines = append(lines, l) })
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"one", "two"}, lines)

	require.NoError(t, r.WriteFile(ctx, "/x/a.nix", []byte("a")))
	require.ErrorIs(t, r.WriteFile(ctx, "/x/b.nix", []byte("b")), boom)

	if diff := cmp.Diff([]string{"uname -m", "# helper partition"}, r.Commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"/x/a.nix"}, r.Paths())
	require.True(t, r.Ran("helper"))
	require.False(t, r.Ran("nixos-install"))
	require.Len(t, r.Calls(), 4)
	require.Equal(t, []byte("{}"), r.Calls()[1].Stdin)
}

func TestRecorderLongestPrefixWins(t *testing.T) {
	r := New().
		On("pkexec", Response{Output: []byte("short")}).
		On("pkexec nixos-version", Response{Output: []byte("long")})

	out, err := r.Output(context.Background(), gateway.Cmd("pkexec", "nixos-version"))
	require.NoError(t, err)
	require.Equal(t, "long", string(out))
}
