package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/cargodot/cargodot/pkg/cargo"
	"github.com/cargodot/cargodot/pkg/depgraph"
	"github.com/cargodot/cargodot/pkg/graph"
	"github.com/cargodot/cargodot/pkg/render"
	"github.com/cargodot/cargodot/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	mongoURI string // snapshot storage, in-memory if empty
	root     string // root package as "name" or "name@version"
}

// serveCommand creates the serve command, which exposes the resolved
// graph over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve [dir|Cargo.toml]",
		Short: "Serve the dependency graph over HTTP",
		Long: `Serve the dependency graph over HTTP.

The graph is resolved once at startup and exposed under:

  GET    /healthz             liveness probe
  GET    /graph               graph as JSON
  GET    /graph.dot           graph as Graphviz DOT
  GET    /graph.svg           graph rendered to SVG
  GET    /view                interactive force-layout view
  POST   /snapshots           store the current graph
  GET    /snapshots           list stored snapshots
  GET    /snapshots/{id}      fetch one snapshot
  GET    /snapshots/{id}.dot  render a snapshot as DOT
  DELETE /snapshots/{id}      delete a snapshot

Snapshots live in memory unless --mongo-uri points at a MongoDB
instance.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string for snapshot storage")
	cmd.Flags().StringVar(&opts.root, "root", "", "root package as name or name@version")

	return cmd
}

// runServe resolves the graph and serves it until the context is
// cancelled.
func (c *CLI) runServe(ctx context.Context, dir string, opts serveOpts) error {
	m, lock, err := cargo.Load(dir)
	if err != nil {
		return err
	}

	rootSpec := opts.root
	if rootSpec == "" {
		rootSpec, err = c.resolveRootSpec(m, lock)
		if err != nil {
			return err
		}
	}

	// The web views always show versions, unlike the CLI default.
	cfg := depgraph.DefaultConfig()
	cfg.IncludeVersions = true
	cfg.Logger = c.Logger.Debugf
	g, err := cargo.Resolve(m, lock, cfg, cargo.Options{Root: rootSpec, Logger: c.Logger.Warnf})
	if err != nil {
		return err
	}

	var dot bytes.Buffer
	if err := g.Render(&dot); err != nil {
		return err
	}

	st, err := newStore(ctx, opts.mongoURI)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	s := &server{
		logger: c.Logger,
		graph:  graph.FromDepGraph(g),
		dot:    dot.String(),
		title:  graphTitle(g),
		store:  st,
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	c.Logger.Infof("serving %s on %s", s.title, opts.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.Logger.Info("server stopped")
	return ctx.Err()
}

// newStore selects the snapshot store backend.
func newStore(ctx context.Context, mongoURI string) (store.Store, error) {
	if mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
}

// server carries the resolved graph and its derived forms.
type server struct {
	logger *log.Logger
	graph  graph.Graph
	dot    string
	title  string
	store  store.Store
}

// routes builds the HTTP router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.dot", s.handleGraphDOT)
	r.Get("/graph.svg", s.handleGraphSVG)
	r.Get("/view", s.handleView)

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Post("/", s.handleCreateSnapshot)
		r.Get("/{id}", s.handleGetSnapshot)
		r.Get("/{id}.dot", s.handleSnapshotDOT)
		r.Delete("/{id}", s.handleDeleteSnapshot)
	})

	return r
}

// requestLogger logs one line per request and attaches a request-scoped
// logger to the context.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), reqLogger)))

			reqLogger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Microsecond),
			)
		})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.graph)
}

func (s *server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	io.WriteString(w, s.dot)
}

func (s *server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := render.ToSVG(r.Context(), s.dot)
	if err != nil {
		loggerFromContext(r.Context()).Errorf("render svg: %v", err)
		respondError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, s.graph, s.title); err != nil {
		loggerFromContext(r.Context()).Errorf("render html: %v", err)
	}
}

// snapshotSummary is the list-view shape of a stored snapshot.
type snapshotSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

func summarize(snap *store.Snapshot) snapshotSummary {
	return snapshotSummary{
		ID:        snap.ID,
		Name:      snap.Name,
		CreatedAt: snap.CreatedAt,
		Nodes:     len(snap.Graph.Nodes),
		Edges:     len(snap.Graph.Edges),
	}
}

func (s *server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = s.title
	}

	snap := store.NewSnapshot(req.Name, s.graph)
	if err := s.store.Save(r.Context(), snap); err != nil {
		loggerFromContext(r.Context()).Errorf("save snapshot: %v", err)
		respondError(w, http.StatusInternalServerError, "save failed")
		return
	}
	respondJSON(w, http.StatusCreated, summarize(snap))
}

func (s *server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.List(r.Context())
	if err != nil {
		loggerFromContext(r.Context()).Errorf("list snapshots: %v", err)
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	summaries := make([]snapshotSummary, 0, len(snaps))
	for _, snap := range snaps {
		summaries = append(summaries, summarize(snap))
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.findSnapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *server) handleSnapshotDOT(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.findSnapshot(w, r)
	if !ok {
		return
	}

	cfg := depgraph.DefaultConfig()
	cfg.IncludeVersions = true
	g, err := graph.ToDepGraph(snap.Graph, cfg)
	if err != nil {
		loggerFromContext(r.Context()).Errorf("rebuild snapshot %s: %v", snap.ID, err)
		respondError(w, http.StatusInternalServerError, "corrupt snapshot")
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := g.Render(w); err != nil {
		loggerFromContext(r.Context()).Errorf("render snapshot %s: %v", snap.ID, err)
	}
}

func (s *server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		loggerFromContext(r.Context()).Errorf("delete snapshot %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// findSnapshot loads the snapshot named by the {id} URL parameter,
// writing the error response itself when that fails.
func (s *server) findSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return nil, false
		}
		loggerFromContext(r.Context()).Errorf("get snapshot %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return nil, false
	}
	return snap, true
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
