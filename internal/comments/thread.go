package comments

import "context"

// Thread is the in-memory comment list of one character, newest first.
// Every mutation is merged back into the shared collection.
type Thread struct {
	store       *Store
	characterID string
	comments    []Comment
	err         error
}

func (t *Thread) CharacterID() string { return t.characterID }

// Comments returns a copy of the list.
func (t *Thread) Comments() []Comment {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	out := make([]Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

func (t *Thread) Count() int {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	return len(t.comments)
}

// Err reports whether the last mutation failed to reach storage. The
// in-memory list keeps the change regardless.
func (t *Thread) Err() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	return t.err
}

// Add prepends a new comment. Blank text is ignored and reported as false.
func (t *Thread) Add(ctx context.Context, text string) (Comment, bool) {
	text, ok := cleanText(text)
	if !ok {
		return Comment{}, false
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	now := t.store.now()
	c := Comment{
		ID:          t.store.newID(now),
		CharacterID: t.characterID,
		Text:        text,
		CreatedAt:   Timestamp(now),
	}
	t.comments = append([]Comment{c}, t.comments...)
	t.err = t.store.mergeLocked(ctx, t.characterID, t.comments)
	return c, true
}

// Edit replaces the text of a comment, keeping its id and timestamp. It
// reports false for blank text or an unknown id.
func (t *Thread) Edit(ctx context.Context, commentID, text string) (Comment, bool) {
	text, ok := cleanText(text)
	if !ok {
		return Comment{}, false
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	i := t.indexLocked(commentID)
	if i < 0 {
		return Comment{}, false
	}
	t.comments[i].Text = text
	t.err = t.store.mergeLocked(ctx, t.characterID, t.comments)
	return t.comments[i], true
}

// Delete removes a comment. Unknown ids are a no-op reported as false.
func (t *Thread) Delete(ctx context.Context, commentID string) bool {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	i := t.indexLocked(commentID)
	if i < 0 {
		return false
	}
	t.comments = append(t.comments[:i:i], t.comments[i+1:]...)
	t.err = t.store.mergeLocked(ctx, t.characterID, t.comments)
	return true
}

func (t *Thread) indexLocked(commentID string) int {
	for i, c := range t.comments {
		if c.ID == commentID {
			return i
		}
	}
	return -1
}
