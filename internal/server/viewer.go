package server

import (
	"context"
	"time"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/session"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
	"github.com/matzehuels/arbor/pkg/widget"
)

// subscriberBuffer is the number of messages queued per WebSocket before
// further messages to it are dropped.
const subscriberBuffer = 32

type recordNode = tree.Node[string, *source.Record]

// Viewer is the state of one session. It is only touched under the
// session lock.
type Viewer struct {
	Widget *widget.Widget[string, *source.Record]

	subs map[chan sink.Message]struct{}
}

// Message returns the current scene as a frame message.
func (v *Viewer) Message() sink.Message {
	return v.message(v.Widget.LastFrame())
}

func (v *Viewer) message(f diagram.Frame) sink.Message {
	return sink.NewMessage(v.Widget.Scene(), f, v.Widget.Viewport().Transform())
}

func (v *Viewer) publish(m sink.Message) {
	for ch := range v.subs {
		offer(ch, m)
	}
}

func (v *Viewer) subscribe() chan sink.Message {
	ch := make(chan sink.Message, subscriberBuffer)
	v.subs[ch] = struct{}{}
	return ch
}

func (v *Viewer) unsubscribe(ch chan sink.Message) {
	if _, ok := v.subs[ch]; ok {
		delete(v.subs, ch)
		close(ch)
	}
}

// closeSubscribers runs once the session is closed and no longer reachable
// through Do.
func (v *Viewer) closeSubscribers() {
	for ch := range v.subs {
		delete(v.subs, ch)
		close(ch)
	}
}

// openSession builds a widget over the server's source, registers it as a
// new session and draws the first frame. theme overrides the configured
// theme when set.
func (s *Server) openSession(ctx context.Context, theme string) (*session.Session[*Viewer], error) {
	opts, err := config.WidgetOptions[string, *source.Record](s.cfg.Widget)
	if err != nil {
		return nil, err
	}
	if theme != "" {
		opts.Theme = theme
	}

	ds := s.src.Dataset
	if s.src.Loader != nil {
		if ds, err = source.Lazy(ctx, s.src.Loader); err != nil {
			return nil, err
		}
	}

	v := &Viewer{subs: make(map[chan sink.Message]struct{})}
	opts = source.Options(opts, ds)
	opts.Logger = s.logger
	opts.OnFrame = func(f diagram.Frame) { v.publish(v.message(f)) }
	opts.OnTransform = func(t viewport.Transform, d time.Duration) {
		v.publish(sink.NewTransformMessage(t, d.Milliseconds()))
	}
	opts.OnLoadError = func(_ *recordNode, err error) {
		v.publish(sink.NewErrorMessage(err))
	}

	w, err := widget.New(opts, s.cfg.Strategy())
	if err != nil {
		return nil, err
	}
	v.Widget = w

	sess := s.store.Create(v)
	if s.src.Loader != nil {
		lazy := source.Async(s.ctx, s.src.Loader, sess.Post, func(r *source.Record, err error) {
			s.logger.Error("load children", "session", sess.ID, "node", r.ID, "err", err)
			if n, ok := w.Node(r.ID); ok {
				w.CancelLoad(n)
			}
			v.publish(sink.NewErrorMessage(err))
		})
		if err := w.SetLoadOnDemand(lazy); err != nil {
			s.store.Delete(sess.ID)
			return nil, err
		}
	}

	err = sess.Do(func(v *Viewer) error {
		if err := v.Widget.Initialize(); err != nil {
			return err
		}
		// A lazily loaded root starts with its first level requested.
		if root := v.Widget.Root(); v.Widget.Tree().NeedsLoad(root) {
			return v.Widget.Toggle(root)
		}
		return nil
	})
	if err != nil {
		s.store.Delete(sess.ID)
		return nil, err
	}
	s.logger.Info("session opened", "session", sess.ID, "source", s.sourceName())
	return sess, nil
}

func (s *Server) sourceName() string {
	if s.src.Loader != nil {
		return s.src.Loader.Name()
	}
	return "dataset"
}
