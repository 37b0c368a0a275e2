package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

type failingStore struct {
	*kvstore.Memory
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func newStore(t *testing.T, kv kvstore.Store, mode Mode) *Store {
	t.Helper()
	return New(context.Background(), kv, mode, logger.NewNop())
}

func toggle(t *testing.T, s *Store, f Favorite) bool {
	t.Helper()
	starred, err := s.Toggle(context.Background(), f)
	require.NoError(t, err)
	return starred
}

func TestAddIsIdempotent(t *testing.T) {
	for _, mode := range []Mode{ModeIDs, ModeRecords} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t, kvstore.NewMemory(), mode)

			s.Add(ctx, ByID("1"))
			before := s.Count()
			s.Add(ctx, ByID("7"))
			s.Add(ctx, ByID("7"))

			assert.Equal(t, before+1, s.Count())
			assert.True(t, s.IsFavorite("7"))
		})
	}
}

func TestToggleIsInvolution(t *testing.T) {
	for _, mode := range []Mode{ModeIDs, ModeRecords} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			kv := kvstore.NewMemory()
			s := newStore(t, kv, mode)
			s.Add(ctx, ByID("1"))
			s.Add(ctx, ByID("2"))

			before := s.IDs()
			raw, _, _ := kv.Get(ctx, mode.Key())

			assert.True(t, toggle(t, s, ByID("3")))
			assert.False(t, toggle(t, s, ByID("3")))
			assert.Equal(t, before, s.IDs())

			assert.False(t, toggle(t, s, ByID("1")))
			assert.True(t, toggle(t, s, ByID("1")))
			assert.ElementsMatch(t, before, s.IDs())

			after, _, _ := kv.Get(ctx, mode.Key())
			if mode == ModeIDs {
				var a, b []string
				require.NoError(t, json.Unmarshal([]byte(raw), &a))
				require.NoError(t, json.Unmarshal([]byte(after), &b))
				assert.ElementsMatch(t, a, b)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kvstore.NewMemory(), ModeIDs)
	s.Add(ctx, ByID("1"))
	s.Add(ctx, ByID("2"))
	s.Add(ctx, ByID("3"))

	s.Remove(ctx, "2")
	s.Remove(ctx, "42")

	assert.Equal(t, []string{"1", "3"}, s.IDs())
	assert.False(t, s.IsFavorite("2"))
	assert.True(t, s.IsFavorite("3"), "index must follow the shifted slice")
}

func TestRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	rick := domain.Character{ID: "1", Name: "Rick Sanchez", Status: "Alive", Origin: domain.Place{ID: "1", Name: "Earth (C-137)"}}
	morty := domain.Character{ID: "2", Name: "Morty Smith", Status: "Alive"}

	t.Run("ids", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := newStore(t, kv, ModeIDs)
		for _, id := range []string{"5", "1", "3"} {
			s.Add(ctx, ByID(id))
		}

		raw, ok, err := kv.Get(ctx, kvstore.KeyFavoriteIDs)
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `["5","1","3"]`, raw)

		fresh := newStore(t, kv, ModeIDs)
		assert.Equal(t, s.List(), fresh.List())
	})

	t.Run("records", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := newStore(t, kv, ModeRecords)
		s.Add(ctx, ByRecord(morty))
		s.Add(ctx, ByRecord(rick))
		s.Add(ctx, ByID("9"))

		fresh := newStore(t, kv, ModeRecords)
		list := fresh.List()
		require.Len(t, list, 3)
		assert.Equal(t, morty, *list[0].Character)
		assert.Equal(t, rick, *list[1].Character)
		assert.Equal(t, "9", list[2].Character.ID)

		_, ok, _ := kv.Get(ctx, kvstore.KeyFavoriteIDs)
		assert.False(t, ok, "records mode must not touch the ids key")
	})
}

func TestCorruptStorageYieldsEmpty(t *testing.T) {
	for _, mode := range []Mode{ModeIDs, ModeRecords} {
		for _, raw := range []string{"not json", `{"id":"1"}`, `[1,2`} {
			t.Run(string(mode)+"/"+raw, func(t *testing.T) {
				kv := kvstore.NewMemory()
				require.NoError(t, kv.Set(context.Background(), mode.Key(), raw))

				s := newStore(t, kv, mode)
				assert.Zero(t, s.Count())
				assert.Empty(t, s.List())
			})
		}
	}
}

func TestMissingKeyYieldsEmpty(t *testing.T) {
	s := newStore(t, kvstore.NewMemory(), ModeRecords)
	assert.Zero(t, s.Count())
}

func TestHydrationCollapsesDuplicates(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(context.Background(), kvstore.KeyFavoriteIDs, `["1","2","1",""]`))

	s := newStore(t, kv, ModeIDs)
	assert.Equal(t, []string{"1", "2"}, s.IDs())
}

func TestClearAndReplace(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := newStore(t, kv, ModeIDs)
	s.Add(ctx, ByID("1"))

	s.Replace(ctx, []Favorite{ByID("4"), ByID("5"), ByID("4")})
	assert.Equal(t, []string{"4", "5"}, s.IDs())

	s.Clear(ctx)
	assert.Zero(t, s.Count())
	raw, ok, _ := kv.Get(ctx, kvstore.KeyFavoriteIDs)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := newStore(t, kv, ModeIDs)
	s.Add(ctx, ByID("1"))

	require.NoError(t, kv.Set(ctx, kvstore.KeyFavoriteIDs, `["8"]`))
	s.Reload(ctx)
	assert.Equal(t, []string{"8"}, s.IDs())
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, failingStore{kvstore.NewMemory()}, ModeIDs)

	assert.Error(t, s.Add(ctx, ByID("1")))
	assert.True(t, s.IsFavorite("1"))

	starred, err := s.Toggle(ctx, ByID("1"))
	assert.Error(t, err)
	assert.False(t, starred)
	assert.False(t, s.IsFavorite("1"))
}

func TestCancelledContextStillPersists(t *testing.T) {
	for _, mode := range []Mode{ModeIDs, ModeRecords} {
		t.Run(string(mode), func(t *testing.T) {
			kv, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "favorites.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = kv.Close() })

			s := newStore(t, kv, mode)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			require.NoError(t, s.Add(ctx, ByID("1")))
			require.NoError(t, s.Add(ctx, ByID("2")))
			require.NoError(t, s.Remove(ctx, "1"))

			expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			defer cancelExpired()
			starred, err := s.Toggle(expired, ByID("3"))
			require.NoError(t, err)
			assert.True(t, starred)

			reopened := newStore(t, kv, mode)
			assert.Equal(t, s.IDs(), reopened.IDs())
			assert.Equal(t, []string{"2", "3"}, reopened.IDs())
		})
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, kvstore.NewMemory(), ModeRecords)
	s.Add(ctx, ByRecord(domain.Character{ID: "1", Name: "Rick"}))

	list := s.List()
	list[0].Character.Name = "Evil Rick"

	assert.Equal(t, "Rick", s.List()[0].Character.Name)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("records")
	require.NoError(t, err)
	assert.Equal(t, ModeRecords, m)

	_, err = ParseMode("stars")
	assert.Error(t, err)
}
