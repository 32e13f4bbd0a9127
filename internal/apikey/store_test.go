package apikey

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "api_key")
	s := NewFileStore(path)

	key, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, s.Save("  suc_api_abc123 "))

	key, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "suc_api_abc123", key)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestResolverPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := NewFileStore(filepath.Join(dir, "api_key"))
	require.NoError(t, file.Save("from-file"))

	t.Run("file when nothing else", func(t *testing.T) {
		r := NewResolver("", file)
		key, src, err := r.Key(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "from-file", key)
		assert.Equal(t, SourceFile, src)
	})

	t.Run("config beats file", func(t *testing.T) {
		r := NewResolver("from-config", file)
		key, src, err := r.Key(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "from-config", key)
		assert.Equal(t, SourceConfig, src)
	})

	t.Run("session beats config", func(t *testing.T) {
		r := NewResolver("from-config", NewFileStore(filepath.Join(dir, "other")))
		require.NoError(t, r.Set(context.Background(), "from-session"))
		key, src, err := r.Key(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "from-session", key)
		assert.Equal(t, SourceSession, src)
	})

	t.Run("request beats everything", func(t *testing.T) {
		r := NewResolver("from-config", file)
		ctx := WithKey(context.Background(), "from-request")
		key, src, err := r.Key(ctx)
		require.NoError(t, err)
		assert.Equal(t, "from-request", key)
		assert.Equal(t, SourceRequest, src)
	})
}

func TestResolverNoKey(t *testing.T) {
	r := NewResolver("", NewFileStore(filepath.Join(t.TempDir(), "missing")))
	_, src, err := r.Key(context.Background())
	assert.ErrorIs(t, err, ErrNoKey)
	assert.Equal(t, SourceNone, src)

	assert.Error(t, r.Set(context.Background(), "   "))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask("abcd"))
	assert.Equal(t, "********5678", Mask("suc_api_5678"))
	assert.Equal(t, "", Mask(""))
}

func TestSetRejectsRemote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key")
	r := NewResolver("from-config", NewFileStore(path))

	err := r.Set(WithRemote(context.Background()), "suc_api_intruder")
	assert.ErrorIs(t, err, ErrRemote)

	key, src, err := r.Key(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)
	assert.Equal(t, SourceConfig, src)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMaskMultibyte(t *testing.T) {
	assert.Equal(t, "****ключ", Mask("ab12ключ"))
	assert.Equal(t, "***", Mask("日本語"))
}
