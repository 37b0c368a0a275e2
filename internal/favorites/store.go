// Package favorites owns the set of starred characters and keeps it in sync
// with a kvstore key, rewriting the whole JSON blob after every mutation.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// Mode selects how favorites are persisted.
type Mode string

const (
	// ModeIDs persists a JSON array of character ids.
	ModeIDs Mode = "ids"
	// ModeRecords persists a JSON array of full character snapshots.
	ModeRecords Mode = "records"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIDs, ModeRecords:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown favorites mode %q", s)
	}
}

// Key returns the storage key the mode persists under.
func (m Mode) Key() string {
	if m == ModeRecords {
		return kvstore.KeyFavoriteRecords
	}
	return kvstore.KeyFavoriteIDs
}

// Favorite is one starred character. Character is always set in records
// mode and always nil in ids mode.
type Favorite struct {
	ID        string
	Character *domain.Character
}

// ByID builds a favorite from a bare id.
func ByID(id string) Favorite {
	return Favorite{ID: id}
}

// ByRecord builds a favorite from a full character snapshot.
func ByRecord(c domain.Character) Favorite {
	return Favorite{ID: c.ID, Character: &c}
}

type Store struct {
	kv   kvstore.Store
	mode Mode
	log  logger.Logger

	mu    sync.RWMutex
	items []Favorite
	index map[string]int
}

// New creates the store and hydrates it from kv. A missing key or unreadable
// content yields an empty set; it never fails.
func New(ctx context.Context, kv kvstore.Store, mode Mode, log logger.Logger) *Store {
	if mode == "" {
		mode = ModeIDs
	}
	s := &Store{
		kv:    kv,
		mode:  mode,
		log:   log,
		index: make(map[string]int),
	}
	s.load(ctx)
	return s
}

func (s *Store) Mode() Mode { return s.mode }

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[id]
	return ok
}

// Add appends f unless its id is already present. The returned error only
// reports a failed write; the in-memory set keeps the change either way.
func (s *Store) Add(ctx context.Context, f Favorite) error {
	if f.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.addLocked(f) {
		return nil
	}
	return s.saveLocked(ctx)
}

// Remove drops the favorite with the given id, if any.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(id) {
		return nil
	}
	return s.saveLocked(ctx)
}

// Toggle removes f when present and adds it otherwise. It returns whether f
// is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, f Favorite) (bool, error) {
	if f.ID == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	starred := true
	if s.removeLocked(f.ID) {
		starred = false
	} else {
		s.addLocked(f)
	}
	return starred, s.saveLocked(ctx)
}

// List returns the favorites in insertion order.
func (s *Store) List() []Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Favorite, len(s.items))
	for i, f := range s.items {
		out[i] = f
		if f.Character != nil {
			c := *f.Character
			out[i].Character = &c
		}
	}
	return out
}

// IDs returns the favorite ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.items))
	for i, f := range s.items {
		out[i] = f.ID
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Clear removes every favorite.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	return s.saveLocked(ctx)
}

// Replace swaps the whole set, keeping the first occurrence of each id.
func (s *Store) Replace(ctx context.Context, favs []Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	for _, f := range favs {
		if f.ID != "" {
			s.addLocked(f)
		}
	}
	return s.saveLocked(ctx)
}

// Reload discards the in-memory set and hydrates again from storage.
func (s *Store) Reload(ctx context.Context) {
	s.load(ctx)
}

func (s *Store) load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()

	raw, ok, err := s.kv.Get(ctx, s.mode.Key())
	if err != nil {
		s.log.Warn("failed to read favorites, starting empty",
			logger.String("key", s.mode.Key()),
			logger.Error(err),
		)
		return
	}
	if !ok {
		return
	}

	favs, err := decode(s.mode, raw)
	if err != nil {
		s.log.Warn("corrupt favorites in storage, starting empty",
			logger.String("key", s.mode.Key()),
			logger.Error(err),
		)
		return
	}

	for _, f := range favs {
		if f.ID != "" {
			s.addLocked(f)
		}
	}
	s.log.Debug("favorites hydrated",
		logger.String("mode", string(s.mode)),
		logger.Int("count", len(s.items)),
	)
}

func (s *Store) addLocked(f Favorite) bool {
	if _, ok := s.index[f.ID]; ok {
		return false
	}
	if s.mode == ModeRecords {
		if f.Character == nil {
			f.Character = &domain.Character{ID: f.ID}
		} else {
			c := *f.Character
			f.Character = &c
		}
	} else {
		f.Character = nil
	}
	s.index[f.ID] = len(s.items)
	s.items = append(s.items, f)
	return true
}

func (s *Store) removeLocked(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return true
}

func (s *Store) resetLocked() {
	s.items = nil
	s.index = make(map[string]int)
}

// saveLocked rewrites the full blob. A failed write is logged and returned;
// the in-memory state is kept.
func (s *Store) saveLocked(ctx context.Context) error {
	raw, err := encode(s.mode, s.items)
	if err != nil {
		s.log.Error("failed to encode favorites", logger.Error(err))
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	ctx, cancel := kvstore.Detach(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, s.mode.Key(), raw); err != nil {
		s.log.Warn("failed to persist favorites",
			logger.String("key", s.mode.Key()),
			logger.Int("count", len(s.items)),
			logger.Error(err),
		)
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}

func encode(mode Mode, items []Favorite) (string, error) {
	var (
		b   []byte
		err error
	)
	if mode == ModeRecords {
		records := make([]domain.Character, 0, len(items))
		for _, f := range items {
			records = append(records, *f.Character)
		}
		b, err = json.Marshal(records)
	} else {
		ids := make([]string, 0, len(items))
		for _, f := range items {
			ids = append(ids, f.ID)
		}
		b, err = json.Marshal(ids)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(mode Mode, raw string) ([]Favorite, error) {
	if mode == ModeRecords {
		var records []domain.Character
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return nil, err
		}
		out := make([]Favorite, 0, len(records))
		for _, c := range records {
			out = append(out, ByRecord(c))
		}
		return out, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	out := make([]Favorite, 0, len(ids))
	for _, id := range ids {
		out = append(out, ByID(id))
	}
	return out, nil
}
