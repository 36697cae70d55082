package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("missing file is an empty config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, store.Path())
		assert.False(t, store.IsModified())

		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("default path", func(t *testing.T) {
		store, err := NewFileStore("")
		require.NoError(t, err)

		homeDir, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(homeDir, ".trainer", "config.json"), store.Path())
	})

	t.Run("loads existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		content := `{"version":"1.0","sections":{"llm":{"model":"gemini-2.0-flash"}}}`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		section, err := store.GetSection("llm")
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.0-flash", section["model"])
	})

	t.Run("invalid JSON fails", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0o600))

		_, err := NewFileStore(configPath)
		assert.Error(t, err)
	})
}

func TestFileStore_Save(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")
	store, err := NewFileStore(configPath)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("storage", map[string]interface{}{"backend": "sqlite"}))
	assert.True(t, store.IsModified())
	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var decoded struct {
		Version  string                            `json:"version"`
		Sections map[string]map[string]interface{} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1.0", decoded.Version)
	assert.Equal(t, "sqlite", decoded.Sections["storage"]["backend"])
}

func TestFileStore_Copies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	in := map[string]interface{}{"model": "a"}
	require.NoError(t, store.SetSection("llm", in))
	in["model"] = "changed"

	out, err := store.GetSection("llm")
	require.NoError(t, err)
	assert.Equal(t, "a", out["model"])
	out["model"] = "changed again"

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "a", all["llm"]["model"])

	missing, err := store.GetSection("nope")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	require.NoError(t, store.SetAll(map[string]map[string]interface{}{"ui": {"render_markdown": false}}))
	all, err = store.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, false, all["ui"]["render_markdown"])
}
