package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the viewer's HTTP handler.
//
//	GET    /                                  viewer page
//	GET    /api/dataset                       current dataset summary
//	POST   /api/reload                        reload the source
//	POST   /api/sessions                      create a viewer session
//	DELETE /api/sessions/{id}                 drop a session
//	GET    /api/sessions/{id}/frame.{format}  render svg, png, pdf or json
//	POST   /api/sessions/{id}/input           pointer, wheel, touch, resize
//	POST   /api/sessions/{id}/zoom-in         zoom around the center
//	POST   /api/sessions/{id}/zoom-out
//	POST   /api/sessions/{id}/reset
//	POST   /api/sessions/{id}/click           details for the clicked event
//	GET    /api/sessions/{id}/legend          legend chips
//	POST   /api/sessions/{id}/legend/{action} all, none or toggle
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(withSecurityHeaders)

	r.Get("/", s.handleIndex)
	r.Get("/static/app.js", serveStatic("text/javascript; charset=utf-8", appJS))
	r.Get("/static/app.css", serveStatic("text/css; charset=utf-8", appCSS))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Post("/reload", s.handleReload)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/frame.{format}", s.handleFrame)
			r.Post("/input", s.handleInput)
			r.Post("/zoom-in", s.handleZoom(zoomIn))
			r.Post("/zoom-out", s.handleZoom(zoomOut))
			r.Post("/reset", s.handleZoom(zoomReset))
			r.Post("/click", s.handleClick)
			r.Get("/legend", s.handleLegend)
			r.Post("/legend/{action}", s.handleLegendAction)
		})
	})
	return r
}

// logRequests logs one line per request at debug level, or warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logf := s.logger.Debug
		if status >= 500 {
			logf = s.logger.Warn
		}
		logf("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; font-src 'self' data:; base-uri 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func serveStatic(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write([]byte(body))
	}
}
