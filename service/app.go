package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/app/controllers"
	"inkwell/app/docstore"
	"inkwell/app/gateway"
	"inkwell/app/routes"
	"inkwell/app/services"
	"inkwell/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand runs the HTTP API until SIGINT or SIGTERM.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the blog API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunAppServer(ctx, opts.Config)
		},
	}
}

// App is the wired HTTP application over one store handle.
type App struct {
	Handler http.Handler
	posts   *services.PostService
}

// NewApp wires gateway, services, controllers and routes over db.
func NewApp(db docstore.Store, cfg config.CacheConfig) *App {
	gw := gateway.New(db, nil)
	postService := services.NewPostService(gw, services.PostServiceOptions{
		DedupeInterval: cfg.DedupeInterval,
		LatestOnly:     cfg.LatestOnly,
	})
	commentService := services.NewCommentService(gw, gw, gw.Codec())

	router := routes.SetupRoutes(
		controllers.NewPostController(postService),
		controllers.NewCommentController(commentService),
	)
	return &App{Handler: router, posts: postService}
}

// Close stops background cache work.
func (a *App) Close() {
	a.posts.Close()
}

// RunAppServer opens the configured store and serves until ctx is done.
func RunAppServer(ctx context.Context, cfg *config.Config) error {
	db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	app := NewApp(db, cfg.Cache)
	defer app.Close()

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Str("driver", cfg.Store.Driver).Msg("Starting server")
	return Serve(ctx, ln, app.Handler, cfg.Server.ShutdownTimeout)
}

// Serve serves handler on ln and shuts down gracefully when ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return <-errCh
}
