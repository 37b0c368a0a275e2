// Package backup reads and writes YAML snapshots of the persisted favorites
// and comments. It backs the seed file and the export/import commands.
package backup

import (
	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/domain"
)

// CurrentVersion is written into every exported document.
const CurrentVersion = 1

// Document is the on-disk layout:
//
//	version: 1
//	exported_at: 2024-03-01T12:00:00Z
//	favorites:
//	  ids: ["1", "2"]
//	  records: [{id: "3", name: Summer Smith, ...}]
//	comments:
//	  - {id: 1709294400000-abc123def, characterId: "1", text: hi, createdAt: ...}
type Document struct {
	Version    int                `yaml:"version"`
	ExportedAt string             `yaml:"exported_at,omitempty"`
	Favorites  FavoritesSection   `yaml:"favorites"`
	Comments   []comments.Comment `yaml:"comments"`
}

// FavoritesSection holds either form of favorites. Both may be present in a
// hand-written seed file.
type FavoritesSection struct {
	IDs     []string           `yaml:"ids,omitempty"`
	Records []domain.Character `yaml:"records,omitempty"`
}

// IsEmpty reports whether the document carries nothing to import.
func (d Document) IsEmpty() bool {
	return len(d.Favorites.IDs) == 0 && len(d.Favorites.Records) == 0 && len(d.Comments) == 0
}
