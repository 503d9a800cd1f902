package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/chronoline/pkg/details"
	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/legend"
	"github.com/matzehuels/chronoline/pkg/pipeline"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/session"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/view"
)

const maxBodyBytes = 64 << 10

// RedrawHeader is set on 204 click responses that changed the legend.
const RedrawHeader = "X-Chronoline-Redraw"

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

type datasetResponse struct {
	Generation uint64    `json:"generation"`
	Source     string    `json:"source"`
	Events     int       `json:"events"`
	Dropped    int       `json:"dropped"`
	Rows       int       `json:"rows"`
	Groups     []string  `json:"groups"`
	LoadedAt   time.Time `json:"loaded_at"`
	Error      string    `json:"error,omitempty"`
}

type sessionRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	viewResponse
}

type viewResponse struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
	Zoom   float64 `json:"zoom"`
	Center float64 `json:"center"`
}

type inputResponse struct {
	Redraw  bool   `json:"redraw"`
	Details string `json:"details,omitempty"`
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type legendRequest struct {
	Group string `json:"group"`
}

type legendResponse struct {
	Mode  legend.Mode   `json:"mode"`
	Chips []legend.Chip `json:"chips"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func newDatasetResponse(ds *source.Dataset) datasetResponse {
	res := datasetResponse{
		Generation: ds.Generation,
		Source:     ds.Source,
		Events:     len(ds.Events),
		Dropped:    len(ds.Dropped),
		Rows:       ds.Packing.NumRows(),
		Groups:     ds.Groups,
		LoadedAt:   ds.LoadedAt,
	}
	if res.Groups == nil {
		res.Groups = []string{}
	}
	if ds.Err != nil {
		res.Error = ds.Err.Error()
	}
	return res
}

func newViewResponse(v *view.View) viewResponse {
	return viewResponse{Width: v.Width, Height: v.Height, DPR: v.DPR, Zoom: v.Zoom, Center: v.Center()}
}

// =============================================================================
// Page and dataset
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = s.page.Execute(w, struct{ Title string }{Title: s.loader.Source().String()})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newDatasetResponse(s.loader.Current()))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds := s.loader.Load(r.Context())
	if err := r.Context().Err(); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, newDatasetResponse(ds))
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req := sessionRequest{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight, DPR: pipeline.DefaultDPR}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DPR == 0 {
		req.DPR = pipeline.DefaultDPR
	}
	if err := errs.ValidateViewport(req.Width, req.Height, req.DPR); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(s.cfg.View, req.Width, req.Height, req.DPR, s.cfg.SessionTTL)
	ds := s.loader.Current()
	sess.Sync(ds.Generation, ds.Groups)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:           sess.ID,
		ExpiresAt:    sess.ExpiresAt,
		viewResponse: newViewResponse(sess.View),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup returns the session named in the URL, locked. The caller unlocks.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	sess.Lock()
	return sess, true
}

// =============================================================================
// Frames
// =============================================================================

// buildFrame lays out the session's current view of the current dataset and
// remembers it for hit testing. The caller holds the session lock.
func (s *Server) buildFrame(sess *session.Session) render.Frame {
	ds := s.loader.Current()
	sess.Sync(ds.Generation, ds.Groups)
	st := render.State{View: *sess.View, Filter: sess.Filter}
	f := render.Build(st, pipeline.Data(ds), pipeline.BuildOptions(s.cfg.Frame)...)
	sess.LastFrame = &f
	return f
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	f := s.buildFrame(sess)
	opts := s.cfg.Frame
	opts.HitRegions = format == pipeline.FormatSVG
	data, err := pipeline.RenderFormat(r.Context(), f, format, opts)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "render %s", format))
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// =============================================================================
// Input
// =============================================================================

var inputKinds = map[view.InputKind]bool{
	view.MouseDown:  true,
	view.MouseMove:  true,
	view.MouseUp:    true,
	view.MouseLeave: true,
	view.WheelInput: true,
	view.TouchStart: true,
	view.TouchMove:  true,
	view.TouchEnd:   true,
	view.Click:      true,
	view.ResizeView: true,
}

func validateInput(in view.Input) error {
	if !inputKinds[in.Kind] {
		return errs.New(errs.ErrCodeInvalidInput, "unknown input type %q", in.Kind)
	}
	for _, v := range []float64{in.X, in.Y, in.DeltaY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.New(errs.ErrCodeInvalidInput, "input coordinates must be finite")
		}
	}
	if in.Kind == view.ResizeView {
		dpr := in.DPR
		if dpr == 0 {
			dpr = 1
		}
		return errs.ValidateViewport(in.Width, in.Height, dpr)
	}
	return nil
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var in view.Input
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateInput(in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	eff := sess.Controller.Handle(sess.View, in)
	res := inputResponse{Redraw: eff.Redraw}
	if eff.HitTest {
		html, redraw := s.hitTest(sess, eff.X, eff.Y)
		res.Details = html
		res.Redraw = res.Redraw || redraw
	}
	writeJSON(w, http.StatusOK, res)
}

type zoomAction int

const (
	zoomIn zoomAction = iota
	zoomOut
	zoomReset
)

func (s *Server) handleZoom(action zoomAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookup(w, r)
		if !ok {
			return
		}
		defer sess.Unlock()

		v := sess.View
		switch action {
		case zoomIn:
			v.ZoomIn(v.Width / 2)
		case zoomOut:
			v.ZoomOut(v.Width / 2)
		case zoomReset:
			v.Reset()
		}
		writeJSON(w, http.StatusOK, newViewResponse(v))
	}
}

// hitTest resolves a click against the session's last frame. Event hits
// return the details panel; chip hits apply the chip and request a redraw.
// The caller holds the session lock.
func (s *Server) hitTest(sess *session.Session, x, y float64) (html string, redraw bool) {
	if sess.LastFrame == nil {
		return "", false
	}
	h, ok := sess.LastFrame.HitTest(x, y)
	if !ok {
		return "", false
	}
	if h.Kind == render.HitChip {
		if h.Chip != nil {
			sess.Filter.Apply(*h.Chip)
		}
		return "", true
	}

	ds := s.loader.Current()
	if sess.LastFrame.Generation != ds.Generation || h.Event < 0 || h.Event >= len(ds.Events) {
		// The frame predates a reload; its indexes no longer apply.
		return "", true
	}
	var buf bytes.Buffer
	if err := details.RenderHTML(&buf, details.FromEvent(ds.Events[h.Event])); err != nil {
		s.logger.Warn("details render failed", "err", err)
		return "", false
	}
	return buf.String(), false
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var p pointRequest
	if err := decodeBody(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	html, redraw := s.hitTest(sess, p.X, p.Y)
	if html == "" {
		if redraw {
			w.Header().Set(RedrawHeader, "1")
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// =============================================================================
// Legend
// =============================================================================

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	ds := s.loader.Current()
	sess.Sync(ds.Generation, ds.Groups)
	writeJSON(w, http.StatusOK, legendResponse{Mode: sess.Filter.Mode(), Chips: sess.Filter.Chips()})
}

func (s *Server) handleLegendAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	var req legendRequest
	switch action {
	case "all", "none":
	case "toggle":
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := errs.ValidateGroupName(req.Group); err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "unknown legend action %q", action))
		return
	}

	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	defer sess.Unlock()

	ds := s.loader.Current()
	sess.Sync(ds.Generation, ds.Groups)
	switch action {
	case "all":
		sess.Filter.ShowAll()
	case "none":
		sess.Filter.ShowNone()
	case "toggle":
		sess.Filter.Toggle(req.Group)
	}
	writeJSON(w, http.StatusOK, legendResponse{Mode: sess.Filter.Mode(), Chips: sess.Filter.Chips()})
}
