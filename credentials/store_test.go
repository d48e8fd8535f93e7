package credentials_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/stretchr/testify/require"
)

func adminSet() credentials.CredentialSet {
	return credentials.CredentialSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &users.User{ID: "u1", Name: "Ana", Email: "ana@academy.test", Role: users.RoleAdmin},
	}
}

func drain(ch <-chan credentials.ChangeEvent, want int, timeout time.Duration) []credentials.ChangeEvent {
	var got []credentials.ChangeEvent
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case ev, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			return got
		}
	}
	return got
}

func keysOf(events []credentials.ChangeEvent) []string {
	keys := make([]string, 0, len(events))
	for _, ev := range events {
		keys = append(keys, ev.Key)
	}
	return keys
}

func TestInMemoryStore(t *testing.T) {
	t.Run("set get remove", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		_, ok := s.Get(credentials.KeyAccessToken)
		require.False(t, ok)

		require.NoError(t, s.Set(credentials.KeyAccessToken, "abc"))
		v, ok := s.Get(credentials.KeyAccessToken)
		require.True(t, ok)
		require.Equal(t, "abc", v)

		require.NoError(t, s.Remove(credentials.KeyAccessToken))
		require.NoError(t, s.Remove(credentials.KeyAccessToken))
		_, ok = s.Get(credentials.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("events carry the key", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		events, cancel := s.Subscribe()
		defer cancel()

		require.NoError(t, s.Set(credentials.KeyAccessToken, "abc"))
		require.NoError(t, s.Remove(credentials.KeyAccessToken))

		got := drain(events, 2, time.Second)
		require.Len(t, got, 2)
		require.Equal(t, credentials.ChangeEvent{Key: credentials.KeyAccessToken, Value: "abc"}, got[0])
		require.Equal(t, credentials.ChangeEvent{Key: credentials.KeyAccessToken, Removed: true}, got[1])
	})

	t.Run("clear session is idempotent", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		require.NoError(t, s.SetSession(adminSet()))
		require.NoError(t, s.Set("theme", "dark"))

		require.NoError(t, s.ClearSession())
		require.NoError(t, s.ClearSession())

		for _, k := range credentials.SessionKeys {
			_, ok := s.Get(k)
			require.False(t, ok, k)
		}
		v, ok := s.Get("theme")
		require.True(t, ok)
		require.Equal(t, "dark", v)
	})

	t.Run("set session rejects incomplete sets", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		set := adminSet()
		set.RefreshToken = ""
		require.ErrorIs(t, s.SetSession(set), apperrors.ErrInvalidInput)
		_, ok := s.Get(credentials.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("cancelled subscriptions are closed", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		events, cancel := s.Subscribe()
		cancel()
		cancel()
		_, ok := <-events
		require.False(t, ok)
		require.NoError(t, s.Set(credentials.KeyUser, "{}"))
	})

	t.Run("slow subscribers do not block writers", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		_, cancel := s.Subscribe()
		defer cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < 500; i++ {
				_ = s.Set(credentials.KeyAccessToken, "t")
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("writer blocked on a full subscriber")
		}
	})
}

func TestLoadSession(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		require.NoError(t, s.SetSession(adminSet()))

		set, err := credentials.LoadSession(s)
		require.NoError(t, err)
		require.True(t, set.Complete())
		require.Equal(t, "access-1", set.AccessToken)
		require.Equal(t, "refresh-1", set.RefreshToken)
		require.Equal(t, "u1", set.User.ID)
		require.True(t, set.User.IsAdmin())
	})

	t.Run("partial", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		require.NoError(t, s.Set(credentials.KeyAccessToken, "access-1"))
		set, err := credentials.LoadSession(s)
		require.NoError(t, err)
		require.False(t, set.Complete())
		require.Nil(t, set.User)
	})

	t.Run("corrupted profile", func(t *testing.T) {
		s := credentials.NewInMemoryStore()
		require.NoError(t, s.Set(credentials.KeyAccessToken, "access-1"))
		require.NoError(t, s.Set(credentials.KeyUser, "{not json"))
		set, err := credentials.LoadSession(s)
		require.ErrorIs(t, err, apperrors.ErrCredentialsCorrupted)
		require.Equal(t, "access-1", set.AccessToken)
		require.Nil(t, set.User)
	})
}
