// Package devtools serves the store, the view and their live updates over
// HTTP.
package devtools

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-rxstore/internal/app"
	"github.com/ItsNotGoodName/x-rxstore/internal/build"
	"github.com/ItsNotGoodName/x-rxstore/pkg/actiontype"
	"github.com/ItsNotGoodName/x-rxstore/pkg/chiext"
	"github.com/ItsNotGoodName/x-rxstore/pkg/component"
	"github.com/ItsNotGoodName/x-rxstore/pkg/rx"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

//go:embed web
var webFS embed.FS

const tracerName = "github.com/ItsNotGoodName/x-rxstore/internal/devtools"

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithRegistry(registry *actiontype.Registry) Option {
	return func(s *Server) { s.registry = registry }
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

type Server struct {
	addr     string
	app      *app.App
	logger   *slog.Logger
	registry *actiontype.Registry
	metrics  *Metrics
	tracer   trace.Tracer
	hub      *Hub
	handler  http.Handler
	sub      *rx.Subscription
}

func New(addr string, a *app.App, opts ...Option) (*Server, error) {
	s := &Server{
		addr:     addr,
		app:      a,
		logger:   slog.Default(),
		registry: actiontype.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("x_rxstore")
	}

	s.hub = NewHub(s.logger, s.metrics, func() any { return a.View.State() })

	s.sub = a.Store.Actions().Subscribe(rx.Observer[store.Action]{
		Next: func(action store.Action) { s.metrics.actions.WithLabelValues(action.Type).Inc() },
	})
	a.View.OnCommit(func(state component.State) {
		s.metrics.commits.Inc()
		s.hub.Broadcast(state)
	})

	static, err := chiext.StaticEmbedFS(chiext.StaticFSConfig{
		FileSystem: webFS,
		Root:       "web",
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(static)

	r.Handle("/ws", s.hub)
	r.Handle("/metrics", s.metrics.Handler())

	api := humachi.New(r, huma.DefaultConfig("x-rxstore", build.Current.Version))
	s.register(api)

	s.handler = r

	return s, nil
}

func (s *Server) String() string {
	return "devtools.Server"
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Serve listens until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("Listening", "package", "devtools", "address", ln.Addr().String())

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(ln) }()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// Close stops counting actions and disconnects every websocket client.
func (s *Server) Close() {
	s.sub.Unsubscribe()
	s.hub.Close()
}
