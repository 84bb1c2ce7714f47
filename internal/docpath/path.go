// Package docpath builds and parses remote document paths:
//
//	users/{identityId}
//	users/{identityId}/hikes/{hikeId}
//	users/{identityId}/hikes/{hikeId}/observations/{observationId}
//
// Paths alternate collection and document segments, so a path with an even
// number of segments names a document and an odd number names a collection.
package docpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
)

const (
	Users        = "users"
	Hikes        = "hikes"
	Observations = "observations"
)

// User returns users/{uid}.
func User(uid string) string {
	return Users + "/" + uid
}

// HikesCollection returns users/{uid}/hikes.
func HikesCollection(uid string) string {
	return User(uid) + "/" + Hikes
}

// Hike returns users/{uid}/hikes/{id}.
func Hike(uid string, hikeID int64) string {
	return HikesCollection(uid) + "/" + strconv.FormatInt(hikeID, 10)
}

// ObservationsCollection returns users/{uid}/hikes/{id}/observations.
func ObservationsCollection(uid string, hikeID int64) string {
	return Hike(uid, hikeID) + "/" + Observations
}

// Observation returns the full observation document path.
func Observation(uid string, hikeID, obsID int64) string {
	return ObservationsCollection(uid, hikeID) + "/" + strconv.FormatInt(obsID, 10)
}

// Path is a parsed document or collection path.
type Path struct {
	Segments []string
}

// Parse splits p and validates the users/... layout.
func Parse(p string) (Path, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return Path{}, fmt.Errorf("%w: empty", common.ErrInvalidPath)
	}
	segs := strings.Split(p, "/")
	for _, s := range segs {
		if s == "" {
			return Path{}, fmt.Errorf("%w: empty segment in %q", common.ErrInvalidPath, p)
		}
	}
	if segs[0] != Users {
		return Path{}, fmt.Errorf("%w: %q must start with %s/", common.ErrInvalidPath, p, Users)
	}
	if len(segs) > 6 {
		return Path{}, fmt.Errorf("%w: %q is too deep", common.ErrInvalidPath, p)
	}
	collections := []string{Users, Hikes, Observations}
	for i := 0; i < len(segs); i += 2 {
		if segs[i] != collections[i/2] {
			return Path{}, fmt.Errorf("%w: unexpected collection %q", common.ErrInvalidPath, segs[i])
		}
	}
	return Path{Segments: segs}, nil
}

// IsDocument reports whether the path names a document.
func (p Path) IsDocument() bool {
	return len(p.Segments)%2 == 0
}

// Owner returns the identity id, or "" for the bare users collection.
func (p Path) Owner() string {
	if len(p.Segments) < 2 {
		return ""
	}
	return p.Segments[1]
}

// ID returns the last document id (empty for collection paths).
func (p Path) ID() string {
	if !p.IsDocument() {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Parent returns the collection a document belongs to, or the document a
// collection belongs to. The parent of "users" is "".
func (p Path) Parent() string {
	if len(p.Segments) <= 1 {
		return ""
	}
	return strings.Join(p.Segments[:len(p.Segments)-1], "/")
}

func (p Path) String() string {
	return strings.Join(p.Segments, "/")
}

// HikeIDFromObservation derives the parent hike id from an observation
// document path.
func HikeIDFromObservation(p string) (int64, error) {
	parsed, err := Parse(p)
	if err != nil {
		return 0, err
	}
	if len(parsed.Segments) != 6 || !parsed.IsDocument() {
		return 0, fmt.Errorf("%w: %q is not an observation", common.ErrInvalidPath, p)
	}
	id, err := strconv.ParseInt(parsed.Segments[3], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: hike id %q", common.ErrInvalidPath, parsed.Segments[3])
	}
	return id, nil
}
