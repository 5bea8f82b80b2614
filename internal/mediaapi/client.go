package mediaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Code, http.StatusText(e.Code), e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client talks to the media-indexing service. It implements the backend
// interface the gallery consumes.
type Client struct {
	base     *url.URL
	resolver *Resolver
	http     *http.Client
	log      zerolog.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	resolver, err := NewResolver(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:     resolver.base,
		resolver: resolver,
		http:     &http.Client{Timeout: DefaultTimeout},
		log:      logging.Component("mediaapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolver returns the URL resolver bound to the service origin.
func (c *Client) Resolver() *Resolver { return c.resolver }

// ListQuery encodes a list request as query parameters.
func ListQuery(req media.ListRequest) url.Values {
	q := url.Values{}
	q.Set(ParamOffset, strconv.Itoa(req.Offset))
	q.Set(ParamLimit, strconv.Itoa(req.Limit))

	switch req.Mode() {
	case media.ModeQuery:
		q.Set(ParamQueryText, req.Query)
		if req.Tag != "" {
			q.Set(ParamTag, req.Tag)
		}
	case media.ModeTag:
		q.Set(ParamTag, req.Tag)
	default:
		q.Set(ParamSeed, req.Seed)
		q.Set(ParamOrder, string(media.ModeSeeded))
	}
	return q
}

// List fetches one page. Relative URLs in the response are resolved against
// the service origin.
func (c *Client) List(ctx context.Context, req media.ListRequest) (media.Page, error) {
	if err := req.Validate(); err != nil {
		return media.Page{}, err
	}

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, PathList, ListQuery(req), nil, &resp); err != nil {
		return media.Page{}, err
	}

	items := make([]media.Item, 0, len(resp.Items))
	for _, li := range resp.Items {
		items = append(items, c.resolver.ResolveItem(li.Item()))
	}
	return media.Page{Items: items, Offset: resp.Offset, HasMore: resp.HasMore}, nil
}

// BatchDelete deletes ids and returns the deleted/failed partition.
func (c *Client) BatchDelete(ctx context.Context, ids []int64) (media.DeleteResult, error) {
	var res media.DeleteResult
	if len(ids) == 0 {
		return res, nil
	}
	if err := c.do(ctx, http.MethodPost, PathBatchDelete, nil, BatchDeleteRequest{IDs: ids}, &res); err != nil {
		return media.DeleteResult{}, err
	}
	return res, nil
}

// SetLike sets the like flag of one item.
func (c *Client) SetLike(ctx context.Context, mediaID int64, value bool) error {
	return c.do(ctx, http.MethodPut, flagPath(PathLike, mediaID), nil, FlagRequest{Value: value}, nil)
}

// SetFavorite sets the favorite flag of one item.
func (c *Client) SetFavorite(ctx context.Context, mediaID int64, value bool) error {
	return c.do(ctx, http.MethodPut, flagPath(PathFavorite, mediaID), nil, FlagRequest{Value: value}, nil)
}

func flagPath(pattern string, mediaID int64) string {
	return strings.Replace(pattern, "{id}", strconv.FormatInt(mediaID, 10), 1)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := logging.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, requestID)
	}
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(data))
	var er ErrorResponse
	if json.Unmarshal(data, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: msg}
}
