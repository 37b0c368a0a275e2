package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/sources/backup"
)

// SeedImporter loads a backup file into empty stores on startup
type SeedImporter struct {
	loader    *backup.Loader
	mapper    *backup.Mapper
	favorites *favorites.Store
	comments  *comments.Store
	logger    logger.Logger
}

// NewSeedImporter creates a new seed importer
func NewSeedImporter(
	seedFile string,
	favs *favorites.Store,
	cs *comments.Store,
	log logger.Logger,
) *SeedImporter {
	return &SeedImporter{
		loader:    backup.NewLoader(seedFile),
		mapper:    backup.NewMapper(),
		favorites: favs,
		comments:  cs,
		logger:    log,
	}
}

// Import applies the seed unless storage already holds favorites or
// comments. It reports whether the seed was applied.
func (si *SeedImporter) Import(ctx context.Context) (bool, error) {
	if si.favorites.Count() > 0 || len(si.comments.All(ctx)) > 0 {
		si.logger.Info("storage already populated, skipping seed")
		return false, nil
	}

	si.logger.Info("importing seed file")

	doc, err := si.loader.Load()
	if err != nil {
		return false, fmt.Errorf("failed to load seed: %w", err)
	}

	snap, err := si.mapper.Map(doc)
	if err != nil {
		return false, fmt.Errorf("failed to map seed: %w", err)
	}

	stats, err := backup.Restore(ctx, snap, si.favorites, si.comments)
	if err != nil {
		return false, err
	}

	si.logger.Info("seed imported",
		logger.Int("favorites", stats.Favorites),
		logger.Int("comments", stats.Comments))

	return true, nil
}
