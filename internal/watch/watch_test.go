package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFileWatcher_ReportsWrites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "vendas.csv")
	require.NoError(t, os.WriteFile(path, []byte("MÊS;VENDAS\n"), 0o600))

	fw, err := New(path, 50*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background()))
	defer fw.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	select {
	case <-fw.Changes():
		t.Fatal("change reported for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("MÊS;VENDAS\njan;10\n"), 0o600))
	select {
	case <-fw.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported after writing the workbook")
	}
}

func TestFileWatcher_StopTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fw, err := New(filepath.Join(t.TempDir(), "x.xlsx"), 0, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start(context.Background()))
	fw.Stop()
	fw.Stop()
}
