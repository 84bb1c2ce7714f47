package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// VectorSyncer is the embedding step run as part of every push.
type VectorSyncer interface {
	SyncUserVectors(ctx context.Context, userID int64, identityID string) error
}

// SyncService reconciles the local store with the remote document store.
//
// Push and pull share one worker: they never run at the same time. A push
// requested while another push is running waits for it and returns its
// result instead of starting a second one.
type SyncService struct {
	db      *sql.DB
	repos   *client.Repositories
	remote  client.DocumentStore
	vectors VectorSyncer
	gate    connectivity.Gate
	logger  logging.Logger

	worker sync.Mutex
	flight singleflight.Group
}

// NewSyncService builds the service. vectors may be nil.
func NewSyncService(db *sql.DB, remote client.DocumentStore, vectors VectorSyncer, gate connectivity.Gate, logger logging.Logger) *SyncService {
	return &SyncService{
		db:      db,
		repos:   client.NewRepositories(db),
		remote:  remote,
		vectors: vectors,
		gate:    gate,
		logger:  logger.With("module", "sync"),
	}
}

type pushTask struct {
	name string
	run  func(ctx context.Context) error
}

// PushLocalChanges sends the profile and the dirty rows of the active user,
// then runs the vector pipeline. Every task runs to completion; a failed
// task leaves its row dirty and contributes to the returned ErrPushFailed.
func (s *SyncService) PushLocalChanges(ctx context.Context) error {
	_, err, shared := s.flight.Do("push", func() (any, error) {
		s.worker.Lock()
		defer s.worker.Unlock()
		return nil, s.push(ctx)
	})
	if shared {
		s.logger.Debug(ctx, "push shared with a concurrent request")
	}
	return err
}

func (s *SyncService) push(ctx context.Context) error {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !sess.HasIdentity() {
		s.logger.Debug(ctx, "no active identity, nothing to push")
		return nil
	}

	tasks, err := s.pushTasks(ctx, sess)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}
	if !s.gate.Online() {
		return client.ErrUnavailable
	}

	if s.vectors != nil {
		tasks = append(tasks, pushTask{name: "vectors", run: func(ctx context.Context) error {
			return s.vectors.SyncUserVectors(ctx, sess.UserID, sess.IdentityID)
		}})
	}

	s.logger.Info(ctx, "push started", "tasks", len(tasks), "identity", sess.IdentityID)

	errs := make([]error, len(tasks))
	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			if err := t.run(ctx); err != nil {
				s.logger.Warn(ctx, "push task failed", "task", t.name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", t.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	s.logger.Info(ctx, "push finished", "tasks", len(tasks))
	return nil
}

// pushTasks lists the writes for sess. Only rows owned by sess.UserID are
// included.
func (s *SyncService) pushTasks(ctx context.Context, sess models.Session) ([]pushTask, error) {
	uid := sess.IdentityID
	now := timex.NowMilli()
	var tasks []pushTask

	user, err := s.repos.Users.GetByID(ctx, sess.UserID)
	switch {
	case err == nil:
		fields := userFields(user, now)
		tasks = append(tasks, pushTask{name: "profile", run: func(ctx context.Context) error {
			return s.remote.Merge(ctx, docpath.User(uid), fields)
		}})
	case errors.Is(err, common.ErrNotFound):
	default:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	hikes, err := s.repos.Hikes.GetUnsyncedOwnedBy(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load dirty hikes: %w", err)
	}
	for _, h := range hikes {
		fields := hikeFields(h, now)
		tasks = append(tasks, pushTask{name: fmt.Sprintf("hike %d", h.ID), run: func(ctx context.Context) error {
			if err := s.remote.Merge(ctx, docpath.Hike(uid, h.ID), fields); err != nil {
				return err
			}
			return s.repos.Hikes.MarkSynced(ctx, h.ID)
		}})
	}

	observations, err := s.repos.Observations.GetUnsyncedOwnedBy(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load dirty observations: %w", err)
	}
	for _, o := range observations {
		fields := observationFields(o, now)
		tasks = append(tasks, pushTask{name: fmt.Sprintf("observation %d", o.ID), run: func(ctx context.Context) error {
			if err := s.remote.Merge(ctx, docpath.Observation(uid, o.HikeID, o.ID), fields); err != nil {
				return err
			}
			return s.repos.Observations.MarkSynced(ctx, o.ID)
		}})
	}

	return tasks, nil
}

// PullRemoteSnapshot replaces every local hike and observation with the
// remote copies of the active identity. Malformed documents are skipped.
func (s *SyncService) PullRemoteSnapshot(ctx context.Context) error {
	s.worker.Lock()
	defer s.worker.Unlock()
	return s.pull(ctx)
}

func (s *SyncService) pull(ctx context.Context) error {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !sess.HasIdentity() {
		return nil
	}
	if !s.gate.Online() {
		return client.ErrUnavailable
	}
	uid := sess.IdentityID

	docs, err := s.remote.List(ctx, docpath.HikesCollection(uid))
	if err != nil {
		return fmt.Errorf("%w: list hikes: %w", ErrPullFailed, err)
	}

	hikes := make([]models.Hike, 0, len(docs))
	for _, d := range docs {
		h, err := hikeFromDocument(d, sess.UserID)
		if err != nil {
			s.logger.Warn(ctx, "skipping remote hike", "path", d.Path, "error", err)
			continue
		}
		hikes = append(hikes, h)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		if err := repos.Hikes.HardDeleteAll(ctx); err != nil {
			return err
		}
		for i := range hikes {
			if err := repos.Hikes.Upsert(ctx, &hikes[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: store hikes: %w", ErrPullFailed, err)
	}

	fetched := make([][]client.Document, len(hikes))
	g, gctx := errgroup.WithContext(ctx)
	for i, h := range hikes {
		g.Go(func() error {
			docs, err := s.remote.List(gctx, docpath.ObservationsCollection(uid, h.ID))
			if err != nil {
				return fmt.Errorf("list observations of hike %d: %w", h.ID, err)
			}
			fetched[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrPullFailed, err)
	}

	var observations []models.Observation
	for i, docs := range fetched {
		for _, d := range docs {
			o, err := observationFromDocument(d)
			if err != nil || o.HikeID != hikes[i].ID {
				s.logger.Warn(ctx, "skipping remote observation", "path", d.Path, "error", err)
				continue
			}
			observations = append(observations, o)
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		for i := range observations {
			if err := repos.Observations.Upsert(ctx, &observations[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: store observations: %w", ErrPullFailed, err)
	}

	s.logger.Info(ctx, "pull finished", "hikes", len(hikes), "observations", len(observations))
	return nil
}
