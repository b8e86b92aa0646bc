package server

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render/nodelink"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/widget"
)

//go:embed static/index.html
var indexHTML []byte

type createRequest struct {
	Theme string `json:"theme"`
}

type createResponse struct {
	ID        string       `json:"id"`
	ExpiresAt time.Time    `json:"expires_at"`
	Frame     sink.Message `json:"frame"`
}

type actionResponse struct {
	Changed bool         `json:"changed"`
	Frame   sink.Message `json:"frame"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	sess, err := s.openSession(r.Context(), req.Theme)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := createResponse{ID: sess.ID, ExpiresAt: sess.ExpiresAt()}
	sess.Do(func(v *Viewer) error {
		resp.Frame = v.Message()
		return nil
	})
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.withViewer(w, r, func(v *Viewer) (any, error) {
		return v.Message(), nil
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	if _, err := s.store.Get(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var out []byte
	err := s.do(r, func(v *Viewer) error {
		ww := v.Widget
		opts := []sink.SVGOption{
			sink.WithTheme(ww.Options().Theme),
			sink.WithViewport(ww.Viewport().Dimensions(), ww.Viewport().Transform()),
			sink.WithKeys(),
		}
		if r.URL.Query().Get("animate") == "true" {
			opts = append(opts, sink.WithAnimation(ww.LastFrame()))
		}
		out = sink.RenderSVG(ww.Scene(), opts...)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(out)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	var dot string
	err := s.do(r, func(v *Viewer) error {
		dot = nodelink.WidgetDOT(v.Widget, r.URL.Query().Get("detailed") == "true")
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "svg" {
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render graphviz"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	io.WriteString(w, dot)
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	s.withViewer(w, r, func(v *Viewer) (any, error) {
		return actionResponse{Changed: true, Frame: v.message(v.Widget.ExpandAll())}, nil
	})
}

func (s *Server) handleCollapseAll(w http.ResponseWriter, r *http.Request) {
	s.withViewer(w, r, func(v *Viewer) (any, error) {
		return actionResponse{Changed: true, Frame: v.message(v.Widget.CollapseAll())}, nil
	})
}

func (s *Server) handleNodeAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "node")
	action := chi.URLParam(r, "action")
	s.withViewer(w, r, func(v *Viewer) (any, error) {
		changed, err := apply(v.Widget, action, id)
		if err != nil {
			return nil, err
		}
		return actionResponse{Changed: changed, Frame: v.Message()}, nil
	})
}

// apply runs a node interaction. The boolean reports whether a default
// action ran; a click suppressed by the click callback reports false.
func apply(w *widget.Widget[string, *source.Record], action, id string) (bool, error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return false, err
	}
	switch action {
	case widget.ActionClick:
		return w.ClickID(id)
	case widget.ActionFocus:
		return true, w.FocusID(id)
	case widget.ActionToggle:
		return true, w.ToggleID(id)
	case widget.ActionCenter:
		n, ok := w.Node(id)
		if !ok {
			return false, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		w.CenterNode(n)
		return true, nil
	default:
		return false, errors.New(errors.ErrCodeInvalidInput, "unknown action %q", action)
	}
}

// do runs fn on the request's session.
func (s *Server) do(r *http.Request, fn func(*Viewer) error) error {
	sess, err := s.store.Get(chi.URLParam(r, "session"))
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// withViewer runs fn on the request's session and writes its result as JSON.
func (s *Server) withViewer(w http.ResponseWriter, r *http.Request, fn func(*Viewer) (any, error)) {
	var out any
	err := s.do(r, func(v *Viewer) error {
		var err error
		out, err = fn(v)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInFlight):
		return http.StatusConflict
	case errors.IsConfig(err), errors.IsData(err),
		errors.Is(err, errors.ErrCodeInvalidInput), errors.Is(err, errors.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNetwork), errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
