package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// Store owns the comments key. All read-modify-write cycles are serialised
// by its mutex.
type Store struct {
	kv    kvstore.Store
	log   logger.Logger
	now   func() time.Time
	newID func(time.Time) string

	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides comment id generation.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(kv kvstore.Store, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		log:   log,
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open hydrates the thread of one character from storage.
func (s *Store) Open(ctx context.Context, characterID string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _ := s.loadLocked(ctx)
	return &Thread{
		store:       s,
		characterID: characterID,
		comments:    filterByCharacter(all, characterID),
	}
}

// CommentsFor reads the comments of a character straight from storage.
func (s *Store) CommentsFor(ctx context.Context, characterID string) []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _ := s.loadLocked(ctx)
	return filterByCharacter(all, characterID)
}

// All returns every persisted comment in storage order.
func (s *Store) All(ctx context.Context) []Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _ := s.loadLocked(ctx)
	return all
}

// Replace overwrites the whole collection. Entries without a character or
// with blank text are dropped, missing ids and timestamps are filled in.
// It returns the number of comments written.
func (s *Store) Replace(ctx context.Context, in []Comment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seen := make(map[string]struct{}, len(in))
	out := make([]Comment, 0, len(in))
	for _, c := range in {
		text, ok := cleanText(c.Text)
		if !ok || c.CharacterID == "" {
			continue
		}
		c.Text = text
		if c.ID == "" {
			c.ID = s.newID(now)
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if c.CreatedAt == "" {
			c.CreatedAt = Timestamp(now)
		}
		out = append(out, c)
	}

	ctx, cancel := kvstore.Detach(ctx)
	defer cancel()

	if err := s.writeLocked(ctx, out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// loadLocked returns the persisted collection. A missing key or corrupt
// content is an empty collection; the error is only set when the backend
// itself failed.
func (s *Store) loadLocked(ctx context.Context) ([]Comment, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeyComments)
	if err != nil {
		s.log.Warn("failed to read comments", logger.Error(err))
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var all []Comment
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.log.Warn("corrupt comments in storage, treating as empty",
			logger.String("key", kvstore.KeyComments),
			logger.Error(err),
		)
		return nil, nil
	}
	return all, nil
}

func (s *Store) writeLocked(ctx context.Context, all []Comment) error {
	if all == nil {
		all = []Comment{}
	}
	b, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyComments, string(b)); err != nil {
		return err
	}
	return nil
}

// mergeLocked drops every stored entry of characterID, appends the thread's
// list and writes the result back. It runs detached from ctx's cancellation.
func (s *Store) mergeLocked(ctx context.Context, characterID string, thread []Comment) error {
	ctx, cancel := kvstore.Detach(ctx)
	defer cancel()

	all, err := s.loadLocked(ctx)
	if err != nil {
		// rewriting now would drop every other character's comments
		s.log.Warn("skipping comments write after failed read",
			logger.String("character_id", characterID),
		)
		return fmt.Errorf("comments not persisted: %w", err)
	}

	merged := make([]Comment, 0, len(all)+len(thread))
	for _, c := range all {
		if c.CharacterID != characterID {
			merged = append(merged, c)
		}
	}
	merged = append(merged, thread...)

	if err := s.writeLocked(ctx, merged); err != nil {
		s.log.Warn("failed to persist comments",
			logger.String("character_id", characterID),
			logger.Error(err),
		)
		return fmt.Errorf("comments not persisted: %w", err)
	}
	return nil
}

func filterByCharacter(all []Comment, characterID string) []Comment {
	out := make([]Comment, 0)
	for _, c := range all {
		if c.CharacterID == characterID {
			out = append(out, c)
		}
	}
	return out
}
