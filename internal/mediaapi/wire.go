// Package mediaapi is the HTTP client for the media-indexing service and the
// JSON wire types shared with the demo server.
package mediaapi

import (
	"time"

	"github.com/colonyops/mosaic/internal/core/media"
)

// Endpoint paths.
const (
	PathList        = "/media-list"
	PathBatchDelete = "/media/batch-delete"
	PathLike        = "/media/{id}/like"
	PathFavorite    = "/media/{id}/favorite"
	HeaderRequestID = "X-Request-Id"
)

// Query parameter names of the list endpoint.
const (
	ParamOffset    = "offset"
	ParamLimit     = "limit"
	ParamSeed      = "seed"
	ParamOrder     = "order"
	ParamTag       = "tag"
	ParamQueryText = "query_text"
)

// ListItem is one element of the list endpoint response.
type ListItem struct {
	ID           int64      `json:"id"`
	Type         media.Type `json:"type"`
	URL          string     `json:"url"`
	ResourceURL  string     `json:"resourceUrl"`
	Filename     string     `json:"filename"`
	CreatedAt    time.Time  `json:"createdAt"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Liked        bool       `json:"liked,omitempty"`
	Favorited    bool       `json:"favorited,omitempty"`
}

// Item converts the wire form to a media item.
func (l ListItem) Item() media.Item {
	return media.Item{
		ID:           media.IDFor(l.ID),
		MediaID:      l.ID,
		Type:         l.Type,
		URL:          l.URL,
		ResourceURL:  l.ResourceURL,
		ThumbnailURL: l.ThumbnailURL,
		Filename:     l.Filename,
		CreatedAt:    l.CreatedAt,
		Liked:        l.Liked,
		Favorited:    l.Favorited,
	}
}

// FromItem converts a media item to its wire form.
func FromItem(it media.Item) ListItem {
	return ListItem{
		ID:           it.MediaID,
		Type:         it.Type,
		URL:          it.URL,
		ResourceURL:  it.ResourceURL,
		Filename:     it.Filename,
		CreatedAt:    it.CreatedAt,
		ThumbnailURL: it.ThumbnailURL,
		Liked:        it.Liked,
		Favorited:    it.Favorited,
	}
}

// ListResponse is the body of the list endpoint.
type ListResponse struct {
	Items   []ListItem `json:"items"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"hasMore"`
}

// BatchDeleteRequest is the body of the batch-delete endpoint.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// FlagRequest is the body of the like and favorite endpoints.
type FlagRequest struct {
	Value bool `json:"value"`
}

// ErrorResponse is the body of a non-2xx response from the demo server.
type ErrorResponse struct {
	Error string `json:"error"`
}
