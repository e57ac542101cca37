// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testString   = Record[string]{Path: "example.string", Default: "Hello"}
	testInt      = Record[int]{Path: "example.count", Default: 3}
	testBool     = Record[bool]{Path: "example.enabled", Default: true}
	testDuration = Record[time.Duration]{Path: "example.delay", Default: 5 * time.Second}
	testList     = Record[[]string]{Path: "example.names", Default: []string{"a", "b"}}
)

func TestLoad_WritesDefaultsWhenFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg, err := Load(path, testString, testInt)
	require.NoError(t, err)

	assert.Equal(t, "Hello", Get(cfg, testString))
	assert.Equal(t, 3, Get(cfg, testInt))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "string: Hello")
	assert.Contains(t, string(data), "count: 3")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("example:\n  string: Howdy\n"), 0o600))

	cfg, err := Load(path, testString, testInt)
	require.NoError(t, err)

	assert.Equal(t, "Howdy", Get(cfg, testString))
	assert.Equal(t, 3, Get(cfg, testInt), "missing key keeps default")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "count: 3", "missing key copied into file")
	assert.Contains(t, string(data), "string: Howdy")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("example: [unterminated\n"), 0o600))

	_, err := Load(path, testString)
	require.Error(t, err)
}

func TestGet_TypedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "example:\n  enabled: false\n  delay: 2s\n  names: [x, y, z]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, testBool, testDuration, testList)
	require.NoError(t, err)

	assert.False(t, Get(cfg, testBool))
	assert.Equal(t, 2*time.Second, Get(cfg, testDuration))
	assert.Equal(t, []string{"x", "y", "z"}, Get(cfg, testList))
}

func TestGet_UnregisteredRecordReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Hello", Get(cfg, testString))
}

func TestSetSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg, err := Load(path, testString)
	require.NoError(t, err)

	require.NoError(t, Set(cfg, testString, "Changed"))
	assert.Equal(t, "Changed", Get(cfg, testString))

	require.NoError(t, cfg.Save())

	reopened, err := Load(path, testString)
	require.NoError(t, err)
	assert.Equal(t, "Changed", Get(reopened, testString))
}

func TestReload_DiscardsUnsavedChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg, err := Load(path, testString)
	require.NoError(t, err)

	require.NoError(t, Set(cfg, testString, "Unsaved"))
	require.NoError(t, cfg.Reload())

	assert.Equal(t, "Hello", Get(cfg, testString))
}

func TestReload_PicksUpFileEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg, err := Load(path, testString)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("example:\n  string: Edited\n"), 0o600))
	require.NoError(t, cfg.Reload())

	assert.Equal(t, "Edited", Get(cfg, testString))
}

func TestDocument_InMemory(t *testing.T) {
	doc, err := Open("", Default{Key: "a.b", Value: "c"})
	require.NoError(t, err)

	assert.Equal(t, "", doc.Path())
	assert.True(t, doc.Exists("a.b"))
	assert.Equal(t, "c", doc.String("a.b"))
	assert.NoError(t, doc.Save())
	assert.Error(t, doc.Watch(func(error) {}))
	assert.NoError(t, doc.Close())
}

func TestDocument_WatchTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	doc, err := Open(path, Default{Key: "a", Value: "b"})
	require.NoError(t, err)

	require.NoError(t, doc.Watch(func(error) {}))
	t.Cleanup(func() { _ = doc.Close() })

	assert.Error(t, doc.Watch(func(error) {}))
}
