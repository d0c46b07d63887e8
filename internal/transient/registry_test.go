package transient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRemovesRegisteredFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o600))

	r := NewRegistry()
	r.Add(a)
	r.Add(b)
	r.Add(filepath.Join(dir, "missing.jpg"))
	r.Add("")
	assert.Len(t, r.Paths(), 3)

	require.NoError(t, r.Close())
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
	assert.Empty(t, r.Paths())

	// a second close is a no-op
	require.NoError(t, r.Close())
}
