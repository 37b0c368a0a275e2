package backup

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
)

// Snapshot is a backup converted to store inputs.
type Snapshot struct {
	Favorites []favorites.Favorite
	Comments  []comments.Comment
}

// Mapper converts backup documents to store inputs
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map flattens the document. Records come first, then bare ids, so a
// record wins over an id naming the same character. Blank ids are skipped.
func (m *Mapper) Map(doc Document) (Snapshot, error) {
	if doc.IsEmpty() {
		return Snapshot{}, fmt.Errorf("no favorites or comments found in backup")
	}

	var snap Snapshot
	for _, rec := range doc.Favorites.Records {
		rec.ID = strings.TrimSpace(rec.ID)
		if rec.ID == "" {
			continue
		}
		snap.Favorites = append(snap.Favorites, favorites.ByRecord(rec))
	}
	for _, id := range doc.Favorites.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		snap.Favorites = append(snap.Favorites, favorites.ByID(id))
	}

	snap.Comments = append(snap.Comments, doc.Comments...)
	return snap, nil
}
