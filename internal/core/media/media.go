// Package media defines the photo/video domain types shared by the gallery
// controllers, the HTTP client and the demo server.
package media

import (
	"errors"
	"strconv"
	"time"
)

// Type is the kind of asset an item points to.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

// IsValid reports whether t is a known media type.
func (t Type) IsValid() bool {
	switch t {
	case TypeImage, TypeVideo:
		return true
	default:
		return false
	}
}

// Item identifies one photo or video.
type Item struct {
	ID           string    `json:"id"`
	MediaID      int64     `json:"mediaId"`
	Type         Type      `json:"type"`
	URL          string    `json:"url"`
	ResourceURL  string    `json:"resourceUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Filename     string    `json:"filename"`
	CreatedAt    time.Time `json:"createdAt"`
	Liked        bool      `json:"liked"`
	Favorited    bool      `json:"favorited"`
}

// IDFor derives the stable string identifier from a backend media id.
func IDFor(mediaID int64) string {
	return strconv.FormatInt(mediaID, 10)
}

// Thumbnail returns the thumbnail path, falling back to the resource path.
func (it Item) Thumbnail() string {
	if it.ThumbnailURL != "" {
		return it.ThumbnailURL
	}
	return it.ResourceURL
}

// IsVideo reports whether the item is a video.
func (it Item) IsVideo() bool {
	return it.Type == TypeVideo
}

// Mode selects the list semantics of a fetch.
type Mode string

const (
	ModeSeeded Mode = "seeded"
	ModeTag    Mode = "tag"
	ModeQuery  Mode = "query"
)

// ErrMissingSeed is returned when seeded mode is requested without a seed.
var ErrMissingSeed = errors.New("seeded listing requires a session seed")

// Params selects which list the source pages through.
type Params struct {
	Seed  string
	Tag   string
	Query string
}

// Mode derives the list mode. A text query wins over a tag, a tag wins over
// the seeded shuffle.
func (p Params) Mode() Mode {
	switch {
	case p.Query != "":
		return ModeQuery
	case p.Tag != "":
		return ModeTag
	default:
		return ModeSeeded
	}
}

// Validate checks that the params can produce a request.
func (p Params) Validate() error {
	if p.Mode() == ModeSeeded && p.Seed == "" {
		return ErrMissingSeed
	}
	return nil
}

// ListRequest is one page request against the list endpoint.
type ListRequest struct {
	Params
	Offset int
	Limit  int
}

// Page is one page of the list endpoint response.
type Page struct {
	Items   []Item
	Offset  int
	HasMore bool
}

// DeleteFailure describes one id the backend refused to delete.
type DeleteFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// DeleteResult partitions a batch delete into deleted and failed ids.
type DeleteResult struct {
	Deleted []int64         `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

// AllDeleted reports whether every requested id was deleted.
func (r DeleteResult) AllDeleted() bool {
	return len(r.Failed) == 0
}

// DedupeByID drops items whose ID was already seen, keeping the first
// occurrence and the original order.
func DedupeByID(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func IndexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
