package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"

	"github.com/gaqzi/employee-reviews/internal/employees"
	"github.com/gaqzi/employee-reviews/internal/platform/database"
	httpassets "github.com/gaqzi/employee-reviews/internal/platform/http"
	"github.com/gaqzi/employee-reviews/internal/reviewing"
	revhttp "github.com/gaqzi/employee-reviews/internal/reviewing/http"
	reviewstorage "github.com/gaqzi/employee-reviews/internal/reviewing/storage"
)

type Server struct {
	Config Config
	HTTP   *http.Server
	DB     *database.DB
}

// Stop will shut down the server safely.
func (s *Server) Stop(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	if cerr := s.DB.Close(); err == nil {
		err = cerr
	}

	return err
}

type openOptions struct {
	createTable bool
}

type OpenOption func(o *openOptions)

// WithoutCreateTable leaves the reviews table as it is, for callers that manage it themselves.
func WithoutCreateTable() OpenOption {
	return func(o *openOptions) {
		o.createTable = false
	}
}

// OpenRepository connects to the configured database, makes sure the employee
// schema and reviews table exist, and returns a repository over them.
func OpenRepository(ctx context.Context, cfg Config, cache *reviewing.Cache, opts ...OpenOption) (*reviewing.Repository, *database.DB, error) {
	o := openOptions{createTable: true}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.Open(ctx, cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	repo := reviewing.NewRepository(
		reviewstorage.NewSQLStore(db),
		employees.NewSQLDirectory(db.DB),
		cache,
		reviewing.WithLogger(slog.Default().With("component", "reviewing")),
	)
	if !o.createTable {
		return repo, db, nil
	}

	if err := repo.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return repo, db, nil
}

// Start wires up the app and starts running it
func Start(ctx context.Context, cfg Config) (*Server, error) {
	repo, db, err := OpenRepository(ctx, cfg, reviewing.NewCache())
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to listen to %q: %w", cfg.Addr, err)
	}
	cfg.Addr = ln.Addr().String() // In case cfg.Addr was random we'll update the config to point to what we ended up using

	server := http.Server{}
	server.BaseContext = func(_ net.Listener) context.Context { return ctx }
	server.Handler = Router(cfg, repo)

	go (func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
		}
	})()

	return &Server{
		Config: cfg,
		HTTP:   &server,
		DB:     db,
	}, nil
}

// Router sets up the routes for the app, every request to the repository is serialized.
func Router(cfg Config, repo revhttp.ReviewRepository) http.Handler {
	logger := httplog.NewLogger("employee-reviews", httplog.Options{
		LogLevel: cfg.LogLevel,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))

	httpassets.PublicAssets(r)
	synced := revhttp.Synchronized(repo)
	r.Route("/reviews", revhttp.Handler(synced))
	r.Route("/api/reviews", revhttp.APIHandler(synced))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/reviews", http.StatusFound)
	})

	return r
}
