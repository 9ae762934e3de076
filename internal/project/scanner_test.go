package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":       "docs",
		"src/main.py":     "print('hi')",
		"src/util.py":     "pass",
		".git/config":     "ignored",
		"src/.cache/x":    "ignored",
		"docs/guide.md":   "guide",
		".hidden_file.md": "ignored",
	})

	tree, err := Scan(root)
	require.NoError(t, err)

	want := "docs/\n" +
		"    -- guide.md\n" +
		"src/\n" +
		"    -- main.py\n" +
		"    -- util.py\n" +
		"-- README.md\n"
	assert.Equal(t, want, tree.Render())
}

func TestScan_NotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := Scan(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrScanFailed)
}

func TestName(t *testing.T) {
	assert.Equal(t, "topicd", Name("/home/dev/topicd"))
	assert.Equal(t, "topicd", Name("/home/dev/topicd/"))
	assert.Equal(t, "topicd", Name("topicd"))
}
