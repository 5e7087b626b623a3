package path

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(RootEnv, dir)
	assert.Equal(t, dir, RootPath())

	t.Setenv(RootEnv, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, RootPath())
}

func TestResolveAndExists(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "conf", "app.yaml"), Resolve(dir, "conf/app.yaml"))
	assert.Equal(t, "/etc/keyhub.yaml", Resolve(dir, "/etc/keyhub.yaml"))

	file := filepath.Join(dir, ".env")
	ok, err := Exists(file)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(file, []byte("APP__NAME=keyhub\n"), 0o600))
	ok, err = Exists(file)
	require.NoError(t, err)
	assert.True(t, ok)
}
