// Package server implements the HTTP timeline viewer.
//
// The browser page is a thin shell: it forwards pointer, wheel, touch,
// resize and click events to the JSON API and swaps in the SVG frame the
// server renders for its session. All view state lives server side in a
// [session.Session], so every viewer pans and zooms independently.
package server

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chronoline/pkg/pipeline"
	"github.com/matzehuels/chronoline/pkg/session"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/view"
)

const shutdownTimeout = 5 * time.Second

// Config configures the viewer.
type Config struct {
	Addr            string
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// Watch reloads file sources when they change on disk.
	Watch    bool
	Debounce time.Duration

	View view.Config

	// Frame carries the legend, tick and font options applied to every
	// session frame. Its Input, size and format fields are ignored.
	Frame pipeline.Options
}

// DefaultConfig returns the settings used by `chronoline serve` without a
// config file.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		SessionTTL:      session.DefaultTTL,
		CleanupInterval: time.Minute,
		Watch:           true,
		Debounce:        source.DefaultDebounce,
		View:            view.DefaultConfig(),
		Frame:           pipeline.Options{ShowLegend: true},
	}
}

// Server serves one dataset to any number of viewers.
type Server struct {
	cfg      Config
	loader   *source.Loader
	sessions session.Store
	logger   *log.Logger
	page     *template.Template
}

// New returns a server for the dataset behind loader. A nil logger
// discards output.
func New(cfg Config, loader *source.Loader, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.View == (view.Config{}) {
		cfg.View = view.DefaultConfig()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	cfg.Frame.View = cfg.View

	page, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		loader:   loader,
		sessions: session.NewMemoryStore(),
		logger:   logger,
		page:     page,
	}, nil
}

// Run loads the dataset, starts the watcher and the session janitor and
// serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if ds := s.loader.Load(ctx); ds.Err != nil {
		// The viewer still starts and shows the error in every frame.
		s.logger.Warn("initial load failed", "err", ds.Err)
	}

	if s.cfg.Watch {
		go func() {
			err := s.loader.Watch(ctx, s.cfg.Debounce, func(ds *source.Dataset) {
				s.logger.Debug("dataset replaced", "generation", ds.Generation, "events", len(ds.Events))
			})
			if err != nil {
				s.logger.Warn("file watching disabled", "err", err)
			}
		}()
	}
	go s.cleanupLoop(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving timeline", "addr", "http://"+s.cfg.Addr, "source", s.loader.Source().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			} else if n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
