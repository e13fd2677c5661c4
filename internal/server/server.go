// Package server exposes the host dispatcher over HTTP so a host that cannot
// link Go code can still drive the adapter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/benithors/regbridge/internal/host"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Dispatcher *host.Dispatcher
	Logger     log.FieldLogger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

type Handler struct {
	dispatcher *host.Dispatcher
	logger     log.FieldLogger
	gatherer   prometheus.Gatherer
}

func New(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		gatherer:   opts.Gatherer,
	}
}

// Router builds the chi router serving the bridge.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/meta", h.handleMeta)
		r.Get("/operations", h.handleListOperations)
		r.Post("/operations/{operation}", h.handleCall)
	})
	return r
}

func (h *Handler) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metadata": host.MetaData(),
		"config":   host.ConfigArray(),
	})
}

func (h *Handler) handleListOperations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"operations": host.Operations()})
}

// handleCall always answers 200 with the host-shaped result once the request
// decodes; operation failures travel in the body as {"error": ...}.
func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	op := host.Operation(chi.URLParam(r, "operation"))

	params := host.Params{}
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&params); err != nil {
			h.logger.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"operation":  string(op),
			}).WithError(err).Warn("invalid operation request")
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body: expected a JSON object"})
			return
		}
	}

	writeJSON(w, http.StatusOK, h.dispatcher.Call(r.Context(), op, params))
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, handler http.Handler, logger log.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("bridge listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down bridge")
		return srv.Shutdown(shutdownCtx)
	}
}
