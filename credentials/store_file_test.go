package credentials_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T, path string, opts ...credentials.FileStoreOption) *credentials.FileStore {
	t.Helper()
	s, err := credentials.NewFileStore(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	first := newFileStore(t, path)
	require.NoError(t, first.SetSession(adminSet()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := newFileStore(t, path)
	set, err := credentials.LoadSession(second)
	require.NoError(t, err)
	require.True(t, set.Complete())
	require.Equal(t, "refresh-1", set.RefreshToken)
}

func TestFileStoreClearSessionIsIdempotent(t *testing.T) {
	s := newFileStore(t, filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, s.SetSession(adminSet()))
	require.NoError(t, s.ClearSession())
	require.NoError(t, s.ClearSession())

	for _, k := range credentials.SessionKeys {
		_, ok := s.Get(k)
		require.False(t, ok)
	}
}

func TestFileStoreEmitsExternalEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	writer := newFileStore(t, path)
	reader := newFileStore(t, path)

	events, cancel := reader.Subscribe()
	defer cancel()

	require.NoError(t, writer.SetSession(adminSet()))

	got := drain(events, 3, 5*time.Second)
	require.ElementsMatch(t, credentials.SessionKeys, keysOf(got))
	for _, ev := range got {
		require.True(t, ev.External)
		require.False(t, ev.Removed)
	}

	v, ok := reader.Get(credentials.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", v)

	require.NoError(t, writer.ClearSession())
	got = drain(events, 3, 5*time.Second)
	require.ElementsMatch(t, credentials.SessionKeys, keysOf(got))
	for _, ev := range got {
		require.True(t, ev.Removed)
	}
}

func TestFileStoreOwnWritesAreLocalEvents(t *testing.T) {
	s := newFileStore(t, filepath.Join(t.TempDir(), "credentials.json"))
	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Set(credentials.KeyAccessToken, "abc"))
	got := drain(events, 1, time.Second)
	require.Len(t, got, 1)
	require.False(t, got[0].External)

	// The watcher sees our own rename but the contents match the cache.
	require.Empty(t, drain(events, 1, 300*time.Millisecond))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	_, err := credentials.NewFileStore(path)
	require.ErrorIs(t, err, apperrors.ErrCredentialsCorrupted)
}

func TestFileStoreEncryption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	sealed := newFileStore(t, path, credentials.WithPassphrase("correct horse"))
	require.NoError(t, sealed.SetSession(adminSet()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "access-1")
	require.Contains(t, string(raw), `"sealed"`)

	t.Run("same passphrase", func(t *testing.T) {
		again := newFileStore(t, path, credentials.WithPassphrase("correct horse"))
		v, ok := again.Get(credentials.KeyRefreshToken)
		require.True(t, ok)
		require.Equal(t, "refresh-1", v)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := credentials.NewFileStore(path, credentials.WithPassphrase("battery staple"))
		require.ErrorIs(t, err, apperrors.ErrInvalidPassphrase)
	})

	t.Run("missing passphrase", func(t *testing.T) {
		_, err := credentials.NewFileStore(path)
		require.ErrorIs(t, err, apperrors.ErrPassphraseRequired)
	})
}
