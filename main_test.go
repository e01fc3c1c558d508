package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlag(t *testing.T, fl *string, v string) {
	t.Helper()
	old := *fl
	*fl = v
	t.Cleanup(func() { *fl = old })
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.mila")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestBuildEmitModes(t *testing.T) {
	path := writeSource(t, "program squares; var i : integer; begin for i := 1 to 3 do begin writeln(i * i) end; end.")
	out := filepath.Join(t.TempDir(), "out.txt")
	setFlag(t, flOut, out)

	tests := []struct {
		emit string
		want []string
	}{
		{"tokens", []string{`IDENTIFIER[1:9]: "squares"`, "EOF"}},
		{"ast", []string{"ast.For", `Var:`}},
		{"ir", []string{"; module squares", "define i32 @main()", "afterloop:"}},
		{"run", []string{"1\n4\n9\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.emit, func(t *testing.T) {
			setFlag(t, flEmit, tt.emit)
			code, err := build(path)
			require.NoError(t, err)
			assert.Equal(t, 0, code)

			buf, err := os.ReadFile(out)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, string(buf), want)
			}
		})
	}
}

func TestBuildDiagnostics(t *testing.T) {
	path := writeSource(t, "begin writeln(nope); end.")
	setFlag(t, flOut, filepath.Join(t.TempDir(), "out.txt"))
	setFlag(t, flEmit, "ir")

	code, err := build(path)
	assert.Equal(t, 1, code)
	assert.ErrorContains(t, err, "1 error(s)")
}

func TestWatchRebuildsOnChange(t *testing.T) {
	path := writeSource(t, "writeln(1)")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilds := make(chan struct{}, 16)
	errc := make(chan error, 1)
	go func() { errc <- watch(ctx, path, func() { rebuilds <- struct{}{} }) }()

	waitRebuild := func() {
		t.Helper()
		select {
		case <-rebuilds:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for rebuild")
		}
	}

	waitRebuild() // Initial build.
	require.NoError(t, os.WriteFile(path, []byte("writeln(2)"), 0o644))
	waitRebuild()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
