package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
)

// Capture builds a document from the current store contents.
func Capture(ctx context.Context, favs *favorites.Store, cs *comments.Store, now time.Time) Document {
	doc := Document{
		Version:    CurrentVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Comments:   cs.All(ctx),
	}

	for _, f := range favs.List() {
		if f.Character != nil {
			doc.Favorites.Records = append(doc.Favorites.Records, *f.Character)
		} else {
			doc.Favorites.IDs = append(doc.Favorites.IDs, f.ID)
		}
	}
	return doc
}

// Write encodes doc as YAML.
func Write(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return enc.Close()
}

// RestoreStats summarises an import.
type RestoreStats struct {
	Favorites int
	Comments  int
}

// Restore replaces both stores with the snapshot contents.
func Restore(ctx context.Context, snap Snapshot, favs *favorites.Store, cs *comments.Store) (RestoreStats, error) {
	if err := favs.Replace(ctx, snap.Favorites); err != nil {
		return RestoreStats{}, fmt.Errorf("failed to restore favorites: %w", err)
	}

	n, err := cs.Replace(ctx, snap.Comments)
	if err != nil {
		return RestoreStats{Favorites: favs.Count()}, fmt.Errorf("failed to restore comments: %w", err)
	}

	return RestoreStats{
		Favorites: favs.Count(),
		Comments:  n,
	}, nil
}
