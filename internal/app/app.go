package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/config"
	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/graphql"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver"
	"github.com/MrSnakeDoc/multiverse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/scheduler"
	"github.com/MrSnakeDoc/multiverse/internal/search"
	"github.com/MrSnakeDoc/multiverse/internal/utils"
	"github.com/MrSnakeDoc/multiverse/internal/version"
)

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	storage   kvstore.Store
	favorites *favorites.Store
	comments  *comments.Store
	search    *search.State
	client    *graphql.Client
	janitor   *scheduler.CacheJanitor
	reloader  *scheduler.StoreReloader
}

// New wires every component. Storage is opened here so a bad backend fails
// before the server starts.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	storage, err := OpenStorage(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	favs, cs, err := OpenStores(ctx, cfg, storage, loggerClient)
	if err != nil {
		utils.CloseLogged(storage, "storage", loggerClient)
		return nil, err
	}

	var cache *graphql.Cache
	if cfg.GraphQLCacheTTL > 0 {
		cache = graphql.NewCache(cfg.GraphQLCacheTTL)
	}
	client := graphql.New(cfg.GraphQLEndpoint, cfg.GraphQLTimeout, loggerClient.Named("graphql"),
		graphql.WithCache(cache),
		graphql.WithMaxIDsBatch(cfg.GraphQLMaxIDsBatch),
	)

	state := search.New(cfg.SearchDebounce,
		search.WithOnSettled(prefetch(client, cfg.GraphQLTimeout, loggerClient.Named("search"))))

	var janitor *scheduler.CacheJanitor
	if cache != nil {
		janitor = scheduler.NewCacheJanitor(cache, loggerClient.Named("cache"), cfg.GraphQLCacheSweep)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewStoreReloader(favs, loggerClient.Named("reload"), cfg.ReloadInterval, reloadTrigger)

	d := deps.Deps{
		Logger:                loggerClient,
		StartTime:             time.Now(),
		Version:               version.Version,
		Commit:                version.Commit,
		BuildDate:             version.BuildDate,
		GoVersion:             version.GoVersion,
		TimeNow:               time.Now,
		AllowedHosts:          cfg.AllowedHosts,
		AllowedCIDRS:          cfg.AllowedCIDRS,
		TrustProxy:            cfg.TrustProxy,
		RateLimitBurst:        cfg.RateLimitBurst,
		RateLimitRefillPerMin: cfg.RateLimitRefillPerMin,
		Storage:               storage,
		Favorites:             favs,
		Comments:              cs,
		Search:                state,
		Characters:            client,
		Cache:                 cache,
		ReloadTrigger:         reloadTrigger,
	}

	return &App{
		cfg:       cfg,
		logger:    loggerClient,
		server:    httpserver.New(cfg, loggerClient, d),
		storage:   storage,
		favorites: favs,
		comments:  cs,
		search:    state,
		client:    client,
		janitor:   janitor,
		reloader:  reloader,
	}, nil
}

// prefetch warms the cache with page 1 of the listing for each settled term.
func prefetch(client *graphql.Client, timeout time.Duration, log logger.Logger) func(string) {
	return func(term string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			filter := domain.CharacterFilter{Name: domain.Opt(term)}
			if _, err := client.Characters(ctx, 1, filter); err != nil {
				log.Debug("search prefetch failed",
					logger.String("term", term),
					logger.Error(err))
				return
			}
			log.Debug("search prefetched", logger.String("term", term))
		}()
	}
}

// Run serves until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting Multiverse %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Info("runtime",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("built", version.BuildDate),
		logger.String("go", version.GoVersion),
		logger.String("storage", a.storage.Name()),
		logger.String("favorites_mode", string(a.favorites.Mode())))

	defer utils.CloseLogged(a.storage, "storage", a.logger)

	if a.cfg.SeedFile != "" {
		importer := scheduler.NewSeedImporter(a.cfg.SeedFile, a.favorites, a.comments, a.logger.Named("seed"))
		if _, err := importer.Import(ctx); err != nil {
			a.logger.Warn("seed import failed, continuing with current state",
				logger.String("file", a.cfg.SeedFile),
				logger.Error(err))
		}
	}

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start store reloader: %w", err)
	}
	a.logger.Info("store reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.janitor != nil {
		if err := a.janitor.Start(ctx); err != nil {
			return fmt.Errorf("failed to start cache janitor: %w", err)
		}
		a.logger.Info("cache janitor started",
			logger.Duration("ttl", a.cfg.GraphQLCacheTTL))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()
	if a.janitor != nil {
		a.janitor.Stop()
	}
	a.search.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if runErr == nil {
		a.logger.Info("✅ Multiverse stopped cleanly")
	}
	return runErr
}
