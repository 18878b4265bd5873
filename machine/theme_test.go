package machine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultThemeValid(t *testing.T) {
	assert.NoError(t, DefaultTheme().validate())
}

func TestCheckHex(t *testing.T) {
	assert.NoError(t, checkHex("#cdd6f4"))
	assert.NoError(t, checkHex("#000000"))
	assert.Error(t, checkHex("cdd6f4"))
	assert.Error(t, checkHex("#cdd6f"))
	assert.Error(t, checkHex("#cdd6f4a"))
	assert.Error(t, checkHex("#cdd6gg"))
	assert.Error(t, checkHex(""))
}

func TestLoadTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("accent: \"#ff0000\"\n"), 0o644))

	theme, err := LoadTheme(path)
	assert.NoError(t, err)
	assert.Equal(t, "#ff0000", theme.Accent)
	// unset keys keep their defaults
	assert.Equal(t, DefaultTheme().Text, theme.Text)

	assert.NoError(t, os.WriteFile(path, []byte("accent: \"red\"\n"), 0o644))
	_, err = LoadTheme(path)
	assert.Error(t, err)

	_, err = LoadTheme(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
