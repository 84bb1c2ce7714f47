package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/netx"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// Presigner hands out presigned object storage URLs for pictures.
type Presigner interface {
	PresignPicture(ctx context.Context, method, key string) (string, string, error)
}

var uploadToPresignedURL = netx.UploadToPresignedURL

type ObservationService struct {
	repos     *client.Repositories
	presigner Presigner
	gate      connectivity.Gate
	logger    logging.Logger
}

// NewObservationService builds the service. presigner may be nil, which
// disables AttachPicture.
func NewObservationService(repos *client.Repositories, presigner Presigner, gate connectivity.Gate, logger logging.Logger) *ObservationService {
	return &ObservationService{
		repos:     repos,
		presigner: presigner,
		gate:      gate,
		logger:    logger.With("module", "observations"),
	}
}

// Add records an observation on an existing hike. A zero Time defaults to
// now.
func (s *ObservationService) Add(ctx context.Context, o *models.Observation) error {
	o.Text = strings.TrimSpace(o.Text)
	if o.Text == "" {
		return fmt.Errorf("%w: observation text is required", common.ErrInvalidArgument)
	}
	if _, err := s.repos.Hikes.GetByID(ctx, o.HikeID); err != nil {
		return err
	}

	now := timex.NowMilli()
	if o.Time.IsZero() {
		o.Time = time.UnixMilli(now).UTC()
	}
	o.ID = 0
	o.CreatedAt = now
	o.UpdatedAt = 0
	o.Deleted = false
	o.DeletedAt = nil
	o.MarkDirty(now)

	if err := s.repos.Observations.Upsert(ctx, o); err != nil {
		return fmt.Errorf("add observation: %w", err)
	}
	return nil
}

// Update replaces the text, time, comments and location of an observation.
func (s *ObservationService) Update(ctx context.Context, o *models.Observation) error {
	text := strings.TrimSpace(o.Text)
	if text == "" {
		return fmt.Errorf("%w: observation text is required", common.ErrInvalidArgument)
	}
	cur, err := s.repos.Observations.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}

	cur.Text = text
	if !o.Time.IsZero() {
		cur.Time = o.Time
	}
	cur.Comments = o.Comments
	cur.Location = o.Location
	cur.MarkDirty(timex.NowMilli())

	if err := s.repos.Observations.Upsert(ctx, cur); err != nil {
		return fmt.Errorf("update observation %d: %w", o.ID, err)
	}
	*o = *cur
	return nil
}

func (s *ObservationService) List(ctx context.Context, hikeID int64) ([]models.Observation, error) {
	return s.repos.Observations.GetByHike(ctx, hikeID)
}

func (s *ObservationService) Delete(ctx context.Context, ids ...int64) error {
	return s.repos.Observations.SoftDelete(ctx, timex.NowMilli(), ids...)
}

func (s *ObservationService) Purge(ctx context.Context, ids ...int64) error {
	return s.repos.Observations.HardDelete(ctx, ids...)
}

// AttachPicture uploads data to object storage and records the storage key
// on the observation. It needs a signed in identity and connectivity.
func (s *ObservationService) AttachPicture(ctx context.Context, obsID int64, data []byte, contentType string) (string, error) {
	if s.presigner == nil {
		return "", errors.New("picture upload is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty picture", common.ErrInvalidArgument)
	}
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if !sess.HasIdentity() {
		return "", client.ErrUnauthorized
	}
	if !s.gate.Online() {
		return "", client.ErrUnavailable
	}

	o, err := s.repos.Observations.GetByID(ctx, obsID)
	if err != nil {
		return "", err
	}

	key, url, err := s.presigner.PresignPicture(ctx, "PUT", "")
	if err != nil {
		return "", fmt.Errorf("presign picture: %w", err)
	}
	if err := uploadToPresignedURL(ctx, url, data, contentType); err != nil {
		return "", fmt.Errorf("upload picture: %w", err)
	}

	o.Picture = &key
	o.MarkDirty(timex.NowMilli())
	if err := s.repos.Observations.Upsert(ctx, o); err != nil {
		return "", fmt.Errorf("store picture key: %w", err)
	}
	s.logger.Info(ctx, "picture attached", "observation", obsID, "key", key)
	return key, nil
}
