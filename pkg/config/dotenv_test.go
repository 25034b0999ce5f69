package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment
SYNC_TOLERANCE=0.02
export MYSQL_HOST=db.internal
QUOTED="hello world"
SINGLE='one'
MALFORMED LINE
ALREADY_SET=from-file

`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ALREADY_SET", "from-env")
	for _, key := range []string{"SYNC_TOLERANCE", "MYSQL_HOST", "QUOTED", "SINGLE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "0.02", os.Getenv("SYNC_TOLERANCE"))
	assert.Equal(t, "db.internal", os.Getenv("MYSQL_HOST"), "export prefix is stripped")
	assert.Equal(t, "hello world", os.Getenv("QUOTED"))
	assert.Equal(t, "one", os.Getenv("SINGLE"))
	assert.Equal(t, "from-env", os.Getenv("ALREADY_SET"), "real environment wins over the file")
}

func TestLoadEnvFileMissing(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err, "callers treat a missing file as a soft miss")
}

func TestLoadDotEnvToleratesNoFile(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)

	require.NoError(t, os.Chdir(t.TempDir()))
	assert.NoError(t, LoadDotEnv())
}
