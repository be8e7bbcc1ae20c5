package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmIfExistsMissingPathIsOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	ok, err := confirmIfExists(path, "overwrite?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteFileCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yml")
	require.NoError(t, writeFile(path, []byte("content")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}
