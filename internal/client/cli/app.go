package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/config"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/client/services"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/search"
)

const embeddingCacheSize = 512

type sessionService interface {
	Register(ctx context.Context, name, email, phone string, password []byte) (*models.User, error)
	SignIn(ctx context.Context, email string, password []byte) (models.Session, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (models.Session, *models.User, error)
	Restore(ctx context.Context) (models.Session, error)
}

type hikeService interface {
	Create(ctx context.Context, h *models.Hike) error
	Get(ctx context.Context, id int64) (*models.Hike, error)
	List(ctx context.Context) ([]models.Hike, error)
	Delete(ctx context.Context, ids ...int64) error
	Purge(ctx context.Context, ids ...int64) error
	Start(ctx context.Context, id int64) error
	End(ctx context.Context, id int64) error
	Active(ctx context.Context) (*models.Hike, error)
}

type observationService interface {
	Add(ctx context.Context, o *models.Observation) error
	List(ctx context.Context, hikeID int64) ([]models.Observation, error)
	Delete(ctx context.Context, ids ...int64) error
	AttachPicture(ctx context.Context, obsID int64, data []byte, contentType string) (string, error)
}

type searchService interface {
	Search(ctx context.Context, query string, semantic bool) ([]models.Hike, error)
	Filter(ctx context.Context, f search.Filter) ([]models.Hike, error)
}

type syncService interface {
	PushLocalChanges(ctx context.Context) error
	PullRemoteSnapshot(ctx context.Context) error
}

// App is the interactive TrailKeeper client.
type App struct {
	config *config.Config
	logger logging.Logger

	sessions     sessionService
	hikes        hikeService
	observations observationService
	search       searchService
	sync         syncService

	watcher *connectivity.Watcher
	gate    connectivity.Gate

	session  models.Session
	userName string
	reader   *bufio.Reader
	out      io.Writer

	closers []io.Closer
}

// NewApp opens the local database, connects the remote store (or the
// in-memory one with -o) and builds every service.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.closers = append(a.closers, db)

	var (
		store     client.DocumentStore
		auth      services.Authenticator
		searcher  client.SemanticSearcher
		presigner services.Presigner
	)

	if c.OfflineDemo {
		store = client.NewMemoryStore()
		auth = &client.MemoryAuth{}
		a.gate = connectivity.Static(true)
	} else {
		remote, err := client.NewGRPCClient(c.ServerEndpointAddr)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.closers = append(a.closers, remote)
		store, auth, searcher, presigner = remote, remote, remote, remote
		a.watcher = connectivity.NewWatcher(remote, logger)
		a.gate = a.watcher
	}

	a.wire(db, store, auth, searcher, presigner)
	return a, nil
}

func (a *App) wire(db *sql.DB, store client.DocumentStore, auth services.Authenticator, searcher client.SemanticSearcher, presigner services.Presigner) {
	repos := client.NewRepositories(db)

	var embedder embedding.Embedder = embedding.NewCache(
		embedding.NewGeminiClient(a.config.GeminiAPIKey, a.config.GeminiBaseURL), embeddingCacheSize)
	vectors := services.NewVectorService(repos, store, embedder, a.gate, a.logger)

	a.sessions = services.NewSessionService(db, auth, a.gate, a.logger)
	a.hikes = services.NewHikeService(repos, a.logger)
	a.observations = services.NewObservationService(repos, presigner, a.gate, a.logger)
	a.search = services.NewSearchService(repos, searcher, a.gate, a.logger)
	a.sync = services.NewSyncService(db, store, vectors, a.gate, a.logger)
}

// Run restores the saved session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.watcher != nil {
		interval := a.config.OnlineCheckInterval
		if interval <= 0 {
			interval = 3 * time.Second
		}
		go a.watcher.Run(ctx, interval)
	}

	a.Root(ctx)
}

// Close releases the database and the transport.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.UserID > 0
}

func (a *App) online() bool {
	return a.gate != nil && a.gate.Online()
}
