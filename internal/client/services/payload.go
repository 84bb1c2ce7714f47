package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// Remote document field names.
const (
	fieldEmbeddingVector    = "embedding_vector"
	fieldEmbeddingUpdatedAt = "embedding_updatedAt"
	fieldEmbeddingSource    = "embedding_source"
)

func userFields(u *models.User, now int64) map[string]any {
	return map[string]any{
		"displayName": u.Name,
		"email":       u.Email,
		"phone":       u.Phone,
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
		"lastSeen":    now,
	}
}

func hikeFields(h models.Hike, now int64) map[string]any {
	return map[string]any{
		"name":                h.Name,
		"location":            h.Location,
		"date":                timex.UnixMilli(h.Date),
		"parkingAvailable":    h.ParkingAvailable,
		"length":              h.Length,
		"difficulty":          h.Difficulty,
		"description":         h.Description,
		"purchaseParkingPass": h.PurchaseParkingPass,
		"isActive":            h.Active,
		"startTime":           h.StartTime,
		"endTime":             h.EndTime,
		"createdAt":           h.CreatedAt,
		"updatedAt":           h.UpdatedAt,
		"syncedAt":            now,
	}
}

func observationFields(o models.Observation, now int64) map[string]any {
	return map[string]any{
		"observationText": o.Text,
		"time":            o.Time.UnixMilli(),
		"comments":        o.Comments,
		"location":        o.Location,
		"picture":         o.Picture,
		"createdAt":       o.CreatedAt,
		"updatedAt":       o.UpdatedAt,
		"syncedAt":        now,
	}
}

func embeddingFields(vec []float64, now int64) map[string]any {
	return map[string]any{
		fieldEmbeddingVector:    vec,
		fieldEmbeddingUpdatedAt: now,
		fieldEmbeddingSource:    common.EmbeddingSource,
	}
}

// hikeFromDocument rebuilds a pulled hike owned by userID. Missing or
// mistyped fields fall back to zero values; only a non-integer id is fatal.
func hikeFromDocument(doc client.Document, userID int64) (models.Hike, error) {
	id, err := strconv.ParseInt(doc.ID, 10, 64)
	if err != nil {
		return models.Hike{}, fmt.Errorf("%w: hike id %q", common.ErrInvalidPath, doc.ID)
	}

	f := doc.Fields
	h := models.Hike{ID: id, UserID: &userID}
	h.Name, _ = rpc.String(f["name"])
	h.Location, _ = rpc.String(f["location"])
	h.Date = timex.FromUnixMilli(rpc.Int64Ptr(f["date"]))
	h.Length, _ = rpc.Float64(f["length"])
	h.Difficulty, _ = rpc.String(f["difficulty"])
	h.ParkingAvailable = rpc.Bool(f["parkingAvailable"])
	h.Description = rpc.StringPtr(f["description"])
	h.PurchaseParkingPass = rpc.StringPtr(f["purchaseParkingPass"])
	h.Active = rpc.Bool(f["isActive"])
	h.StartTime = rpc.Int64Ptr(f["startTime"])
	h.EndTime = rpc.Int64Ptr(f["endTime"])
	h.CreatedAt, _ = rpc.Int64(f["createdAt"])
	h.UpdatedAt, _ = rpc.Int64(f["updatedAt"])
	h.MarkSynced()
	return h, nil
}

// observationFromDocument derives the parent hike from the document path.
func observationFromDocument(doc client.Document) (models.Observation, error) {
	id, err := strconv.ParseInt(doc.ID, 10, 64)
	if err != nil {
		return models.Observation{}, fmt.Errorf("%w: observation id %q", common.ErrInvalidPath, doc.ID)
	}
	hikeID, err := docpath.HikeIDFromObservation(doc.Path)
	if err != nil {
		return models.Observation{}, err
	}

	f := doc.Fields
	o := models.Observation{ID: id, HikeID: hikeID}
	o.Text, _ = rpc.String(f["observationText"])
	if strings.TrimSpace(o.Text) == "" {
		return models.Observation{}, fmt.Errorf("%w: observation %d has no text", common.ErrInvalidArgument, id)
	}
	o.Comments = rpc.StringPtr(f["comments"])
	o.Location = rpc.StringPtr(f["location"])
	o.Picture = rpc.StringPtr(f["picture"])
	o.CreatedAt, _ = rpc.Int64(f["createdAt"])
	o.UpdatedAt, _ = rpc.Int64(f["updatedAt"])

	ts, ok := rpc.Int64(f["time"])
	if !ok {
		ts = o.CreatedAt
	}
	o.Time = time.UnixMilli(ts).UTC()
	o.MarkSynced()
	return o, nil
}

// formatLength renders km the way the chunk text has always shown it:
// integral values keep a trailing ".0".
func formatLength(km float64) string {
	s := strconv.FormatFloat(km, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
