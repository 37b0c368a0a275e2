package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/graphql"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/search"
)

// CharacterSource is the read-only remote data the handlers proxy.
// *graphql.Client implements it.
type CharacterSource interface {
	Characters(ctx context.Context, page int, filter domain.CharacterFilter) (graphql.CharacterPage, error)
	Character(ctx context.Context, id string) (domain.Character, error)
	CharactersByIDs(ctx context.Context, ids []string) ([]domain.Character, error)
	Episodes(ctx context.Context, page int) (graphql.EpisodePage, error)
	Locations(ctx context.Context, page int) (graphql.LocationPage, error)
	Ping(ctx context.Context) error
}

var _ CharacterSource = (*graphql.Client)(nil)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on infra endpoints
	AllowedCIDRS []string // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	RateLimitBurst        int // mutating API routes, per client IP
	RateLimitRefillPerMin int

	Storage    kvstore.Store    // persisted state backend
	Favorites  *favorites.Store // starred characters
	Comments   *comments.Store  // per-character comments
	Search     *search.State    // shared search term
	Characters CharacterSource  // remote GraphQL data
	Cache      *graphql.Cache   // response cache, nil when disabled

	ReloadTrigger chan struct{} // Channel to trigger a favorites reload from storage
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
