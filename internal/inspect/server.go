package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/fiber/internal/config"
	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/idle"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// maxTreeBytes bounds the body of POST /render.
const maxTreeBytes = 1 << 20

// Options configures the inspector.
type Options struct {
	// Config is the loaded configuration. Defaults are used when nil.
	Config *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives the scheduler metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
}

// Server owns one long-lived scheduler rendering into an in-memory host
// tree. The scheduler and the tree are only touched from the idle loop
// goroutine; HTTP handlers reach them through Loop.Do.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	loop     *idle.Loop
	tree     *memhost.Tree
	sched    *fiber.Scheduler
	hub      *Hub

	// Loop goroutine only.
	last    *fiber.CommitInfo
	log     []memhost.Mutation
	waiters []chan<- result

	mu         sync.Mutex
	httpServer *http.Server
}

// result is what a waiting POST /render receives.
type result struct {
	info *fiber.CommitInfo
	err  error
}

// New creates an inspector. Call Start before serving requests.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		config:   cfg,
		logger:   logger.With("component", "inspect"),
		registry: reg,
		tree:     memhost.New(),
		hub:      NewHub(logger),
	}
	s.loop = idle.New(
		idle.WithFrameBudget(cfg.Scheduler.FrameBudget),
		idle.WithLogger(logger.With("component", "idle")),
	)
	s.sched = fiber.New(s.tree,
		fiber.WithLogger(logger.With("component", "fiber")),
		fiber.WithMetrics(fiber.NewMetrics(
			fiber.WithNamespace(cfg.Metrics.Namespace),
			fiber.WithRegistry(reg),
		)),
		fiber.WithIdle(s.loop, cfg.Scheduler.IdleTimeout),
		fiber.WithYieldThreshold(cfg.Scheduler.YieldThreshold),
		fiber.WithCommitHook(s.onCommit),
		fiber.WithErrorHandler(s.onError),
	)
	return s
}

// Hub returns the commit feed hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start runs the idle loop in the background until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("idle loop stopped", "error", err)
		}
		s.hub.Close()
	}()
}

// ListenAndServe starts the loop and serves HTTP on the configured address
// until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Inspect.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Start(ctx)

	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("inspector listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	s.hub.Close()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// Handler returns the inspector routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/render", s.handleRender)
	r.Get("/tree", s.handleTree)
	r.Get("/mutations", s.handleMutations)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) onCommit(info fiber.CommitInfo) {
	s.last = &info
	s.log = s.tree.TakeLog()
	s.hub.NotifyCommit(info)
	s.release(result{info: &info})
}

func (s *Server) onError(err error) {
	s.logger.Error("render failed", "error", err)
	s.tree.ResetLog()
	s.hub.NotifyError(ferrors.CodeOf(err), err.Error())
	s.release(result{err: err})
}

func (s *Server) release(res result) {
	for _, w := range s.waiters {
		w <- res
	}
	s.waiters = nil
}

// handleRender schedules the posted tree file. With ?wait=true the response
// is delayed until the pass, or one that superseded it, commits or fails.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	file, nodes, err := vdom.DecodeTree(http.MaxBytesReader(w, r.Body, maxTreeBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	done := make(chan result, 1)

	var schedErr error
	err = s.loop.Do(r.Context(), func() {
		schedErr = s.sched.ScheduleRootContext(r.Context(), fiber.Root{
			Container: s.tree.Container(),
			Children:  nodes,
		})
		if schedErr == nil && wait {
			s.waiters = append(s.waiters, done)
		}
	})
	if err == nil {
		err = schedErr
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	if !wait {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"name":  file.Name,
			"nodes": countNodes(nodes),
		})
		return
	}

	select {
	case res := <-done:
		if res.err != nil {
			writeError(w, http.StatusUnprocessableEntity, res.err)
			return
		}
		writeJSON(w, http.StatusOK, res.info)
	case <-r.Context().Done():
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var html string
	if err := s.loop.Do(r.Context(), func() { html = s.tree.HTML() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// mutationsResponse is the body of GET /mutations.
type mutationsResponse struct {
	Commit    *fiber.CommitInfo  `json:"commit"`
	Mutations []memhost.Mutation `json:"mutations"`
}

func (s *Server) handleMutations(w http.ResponseWriter, r *http.Request) {
	var resp mutationsResponse
	err := s.loop.Do(r.Context(), func() {
		resp.Commit = s.last
		resp.Mutations = append([]memhost.Mutation(nil), s.log...)
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func countNodes(nodes []*vdom.VNode) int {
	n := 0
	for _, v := range nodes {
		n += vdom.Count(v)
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var fe *ferrors.Error
	if errors.As(err, &fe) {
		resp.Code = fe.Code
		resp.Error = fe.Message
		resp.Path = fe.Path
	}
	writeJSON(w, status, resp)
}
