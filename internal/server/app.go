// Package server initializes and runs the TrailKeeper server: it opens and
// migrates the PostgreSQL store, wires the services and serves them over
// gRPC and HTTP until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/server/config"
	"github.com/dmitrijs2005/trailkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/trailkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/trailkeeper/internal/server/grpc"
)

// queryCacheSize bounds the number of cached query embeddings.
const queryCacheSize = 1024

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	grpc   runner
	http   runner
}

// openDB is a seam for tests.
var openDB = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return newApp(c, logger, db, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	embedder := embedding.NewCache(embedding.NewGeminiClient(c.GeminiAPIKey, c.GeminiBaseURL), queryCacheSize)
	search := services.NewSearchService(db, rm, embedder, logger)

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Users:     services.NewUserService(db, rm, c),
		Documents: services.NewDocumentService(db, rm),
		Search:    search,
		Pictures:  services.NewPictureService(c),
	}, c.SecretKey)

	httpServer := httpapi.NewServer(c.EndpointAddrHTTP, logger, search, c.SecretKey)

	return &App{config: c, logger: logger, db: db, grpc: grpcServer, http: httpServer}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs r and cancels the whole app when it fails.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, name+" server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is done or one of the servers
// fails; the database is closed afterwards.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "gRPC", app.grpc)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "HTTP", app.http)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "database close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
