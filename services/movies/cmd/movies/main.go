package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/db"
	"github.com/example/movie-platform/internal/platform/events"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/services/movies/internal/handlers"
	"github.com/example/movie-platform/services/movies/internal/omdb"
	"github.com/example/movie-platform/services/movies/internal/store"
)

func main() {
	if os.Getenv("SERVICE_NAME") == "" {
		_ = os.Setenv("SERVICE_NAME", "movies")
	}
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	movies, watchlists, closePool := initStores(cfg, log)
	if closePool != nil {
		defer closePool()
	}

	// NATS is optional; without it engagement events are dropped.
	var pub *events.Publisher
	nc, err := natsconn.Connect(natsconn.Options{})
	if err != nil {
		log.Warn("nats unavailable, engagement events disabled", zap.Error(err))
	} else {
		defer nc.Close()
		js, jsErr := nc.JetStream()
		if jsErr != nil {
			log.Warn("jetstream unavailable, engagement events disabled", zap.Error(jsErr))
		} else {
			pub = events.New(js, log)
		}
	}

	enricher := omdb.New(cfg.OMDb.BaseURL, cfg.OMDb.APIKey)
	if !enricher.Enabled() {
		log.Info("omdb enrichment disabled, OMDB_API_KEY not set")
	}

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	// Public reads
	r.Get("/v1/movies", handlers.ListMovies(movies))
	r.Get("/v1/movies/{movie_id}", handlers.GetMovie(movies))
	r.Get("/v1/movies/{movie_id}/comments", handlers.GetComments(movies))

	// Authenticated writes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/movies", handlers.CreateMovie(movies, enricher, pub))
		r.Put("/v1/movies/{movie_id}", handlers.UpdateMovie(movies))
		r.Delete("/v1/movies/{movie_id}", handlers.DeleteMovie(movies))
		r.Post("/v1/movies/{movie_id}/like", handlers.ToggleMovieLike(movies, pub))
		r.Post("/v1/movies/{movie_id}/ratings", handlers.RateMovie(movies, pub))
		r.Post("/v1/movies/{movie_id}/comments", handlers.CreateComment(movies, pub))
		r.Put("/v1/movies/{movie_id}/comments/{comment_id}", handlers.UpdateComment(movies))
		r.Delete("/v1/movies/{movie_id}/comments/{comment_id}", handlers.DeleteComment(movies, pub))
		r.Post("/v1/movies/{movie_id}/comments/{comment_id}/reactions", handlers.ReactToComment(movies, pub))
		r.Post("/v1/watchlist/{movie_id}", handlers.ToggleWatchlist(watchlists, movies))
		r.Get("/v1/watchlist", handlers.ListWatchlist(watchlists, movies))
	})

	// Admin surface
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Use(auth.RequireAdmin)
		r.Get("/v1/admin/dashboard", handlers.AdminDashboard(movies))
		r.Get("/v1/admin/comments", handlers.AdminComments(movies))
		r.Get("/v1/admin/movies", handlers.AdminMovies(movies))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStores selects the storage backend. In production a working
// Postgres connection is mandatory; in development a missing or
// unreachable database falls back to in-memory stores.
func initStores(cfg config.AppConfig, log *zap.Logger) (store.MovieStore, store.WatchlistStore, func()) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return store.NewInMemoryMovieStore(), store.NewInMemoryWatchlistStore(), nil
	}

	pool, err := db.Open(context.Background())
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return store.NewInMemoryMovieStore(), store.NewInMemoryWatchlistStore(), nil
	}

	log.Info("stores: postgres")
	return store.NewPostgresMovieStore(pool), store.NewPostgresWatchlistStore(pool), pool.Close
}
