package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// HikeService is the local hike workflow. Every mutation marks the row
// dirty so the next push picks it up.
type HikeService struct {
	repos  *client.Repositories
	logger logging.Logger
}

func NewHikeService(repos *client.Repositories, logger logging.Logger) *HikeService {
	return &HikeService{repos: repos, logger: logger.With("module", "hikes")}
}

func validateHike(h *models.Hike) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Location = strings.TrimSpace(h.Location)
	if h.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidArgument)
	}
	if h.Location == "" {
		return fmt.Errorf("%w: location is required", common.ErrInvalidArgument)
	}
	if h.Length < 0 {
		return fmt.Errorf("%w: length must not be negative", common.ErrInvalidArgument)
	}
	d, err := models.ParseDifficulty(h.Difficulty)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}
	h.Difficulty = string(d)
	return nil
}

// Create stores a new hike owned by the signed in user, or unowned when
// nobody is signed in.
func (s *HikeService) Create(ctx context.Context, h *models.Hike) error {
	if err := validateHike(h); err != nil {
		return err
	}
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	now := timex.NowMilli()
	h.ID = 0
	h.UserID = nil
	if sess.UserID > 0 {
		owner := sess.UserID
		h.UserID = &owner
	}
	h.CreatedAt = now
	h.UpdatedAt = 0
	h.Deleted = false
	h.DeletedAt = nil
	h.MarkDirty(now)

	if err := s.repos.Hikes.Upsert(ctx, h); err != nil {
		return fmt.Errorf("create hike: %w", err)
	}
	s.logger.Debug(ctx, "hike created", "id", h.ID)
	return nil
}

// Update replaces the editable fields of an existing hike.
func (s *HikeService) Update(ctx context.Context, h *models.Hike) error {
	if err := validateHike(h); err != nil {
		return err
	}
	cur, err := s.repos.Hikes.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}

	cur.Name = h.Name
	cur.Location = h.Location
	cur.Date = h.Date
	cur.Length = h.Length
	cur.Difficulty = h.Difficulty
	cur.ParkingAvailable = h.ParkingAvailable
	cur.Description = h.Description
	cur.PurchaseParkingPass = h.PurchaseParkingPass
	cur.MarkDirty(timex.NowMilli())

	if err := s.repos.Hikes.Upsert(ctx, cur); err != nil {
		return fmt.Errorf("update hike %d: %w", h.ID, err)
	}
	*h = *cur
	return nil
}

func (s *HikeService) Get(ctx context.Context, id int64) (*models.Hike, error) {
	return s.repos.Hikes.GetByID(ctx, id)
}

// List returns the hikes visible to the current session.
func (s *HikeService) List(ctx context.Context) ([]models.Hike, error) {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return visibleHikes(ctx, s.repos, sess)
}

// Delete soft-deletes hikes. The rows stay in the database, dirty.
func (s *HikeService) Delete(ctx context.Context, ids ...int64) error {
	return s.repos.Hikes.SoftDelete(ctx, timex.NowMilli(), ids...)
}

// Purge removes hikes and their observations locally. Remote copies are
// not touched.
func (s *HikeService) Purge(ctx context.Context, ids ...int64) error {
	return s.repos.Hikes.HardDelete(ctx, ids...)
}

func (s *HikeService) PurgeAll(ctx context.Context) error {
	return s.repos.Hikes.HardDeleteAll(ctx)
}

// Start makes id the only active hike.
func (s *HikeService) Start(ctx context.Context, id int64) error {
	if err := s.repos.Hikes.Start(ctx, id, timex.NowMilli()); err != nil {
		return fmt.Errorf("start hike %d: %w", id, err)
	}
	s.logger.Info(ctx, "hike started", "id", id)
	return nil
}

func (s *HikeService) End(ctx context.Context, id int64) error {
	if err := s.repos.Hikes.End(ctx, id, timex.NowMilli()); err != nil {
		return fmt.Errorf("end hike %d: %w", id, err)
	}
	s.logger.Info(ctx, "hike ended", "id", id)
	return nil
}

// Active returns the running hike, or common.ErrNotFound.
func (s *HikeService) Active(ctx context.Context) (*models.Hike, error) {
	return s.repos.Hikes.GetActive(ctx)
}
