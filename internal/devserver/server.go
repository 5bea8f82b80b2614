package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/colonyops/mosaic/internal/core/logging"
	"github.com/colonyops/mosaic/internal/core/media"
	"github.com/colonyops/mosaic/internal/mediaapi"
)

// Defaults for the list endpoint.
const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	// RequestsPerSecond enables a global rate limit when positive.
	RequestsPerSecond float64
	Burst             int
	// Latency delays every response, useful to watch loading states.
	Latency time.Duration
	Logger  *zerolog.Logger
}

type handler struct {
	lib *Library
	log zerolog.Logger
}

// NewRouter builds the chi router serving lib.
func NewRouter(lib *Library, opts RouterOptions) http.Handler {
	logger := logging.Component("devserver")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	h := &handler{lib: lib, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(requestID)
	r.Use(accessLog(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Accept", "Content-Type", mediaapi.HeaderRequestID},
		ExposedHeaders: []string{mediaapi.HeaderRequestID},
	}))
	if opts.RequestsPerSecond > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(opts.Burst, 1))))
	}
	if opts.Latency > 0 {
		r.Use(latency(opts.Latency))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "items": lib.Len()})
	})
	r.Get(mediaapi.PathList, h.list)
	r.Post(mediaapi.PathBatchDelete, h.batchDelete)
	r.Put(mediaapi.PathLike, h.setFlag(lib.SetLike))
	r.Put(mediaapi.PathFavorite, h.setFlag(lib.SetFavorite))
	return r
}

// requestID tags each request with the caller's X-Request-Id, or a fresh
// uuid, and carries it on the context for log events.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(mediaapi.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(mediaapi.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Ctx(r.Context()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func latency(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := intParam(q.Get(mediaapi.ParamOffset), 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := intParam(q.Get(mediaapi.ParamLimit), DefaultLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	limit = min(limit, MaxLimit)

	params := media.Params{
		Seed:  q.Get(mediaapi.ParamSeed),
		Tag:   q.Get(mediaapi.ParamTag),
		Query: q.Get(mediaapi.ParamQueryText),
	}
	if order := q.Get(mediaapi.ParamOrder); order != "" && order != string(media.ModeSeeded) {
		writeError(w, http.StatusBadRequest, "unsupported order "+strconv.Quote(order))
		return
	}

	page, err := h.lib.List(media.ListRequest{Params: params, Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := mediaapi.ListResponse{
		Items:   make([]mediaapi.ListItem, 0, len(page.Items)),
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}
	for _, it := range page.Items {
		resp.Items = append(resp.Items, mediaapi.FromItem(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) batchDelete(w http.ResponseWriter, r *http.Request) {
	var req mediaapi.BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	res := h.lib.Delete(req.IDs)
	h.log.Info().
		Ctx(r.Context()).
		Int("deleted", len(res.Deleted)).
		Int("failed", len(res.Failed)).
		Msg("batch delete")
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) setFlag(set func(int64, bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}

		var req mediaapi.FlagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}

		if err := set(id, req.Value); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, mediaapi.ErrorResponse{Error: msg})
}

// Serve runs an HTTP server for handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
