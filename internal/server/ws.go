package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render/sink"
	"github.com/matzehuels/arbor/pkg/scene"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client commands.
const (
	cmdClick       = "click"
	cmdFocus       = "focus"
	cmdToggle      = "toggle"
	cmdCenter      = "center"
	cmdExpandAll   = "expand-all"
	cmdCollapseAll = "collapse-all"
	cmdPan         = "pan"
	cmdZoom        = "zoom"
	cmdSync        = "sync"
)

// command is the incoming WebSocket message format.
type command struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// handleWebSocket streams every frame and transform of a session and
// accepts interaction commands. The current scene is sent on connect.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	var ch chan sink.Message
	err = sess.Do(func(v *Viewer) error {
		ch = v.subscribe()
		ch <- v.Message()
		return nil
	})
	if err != nil {
		return
	}
	defer sess.Do(func(v *Viewer) error {
		v.unsubscribe(ch)
		return nil
	})

	done := make(chan struct{})
	go s.writeLoop(conn, ch, done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "session", sess.ID, "err", err)
			}
			break
		}
		// Errors for this connection go through its own channel so that
		// writes stay on one goroutine. Do fails only once the session
		// is gone.
		err := sess.Do(func(v *Viewer) error {
			if err := s.run(v, cmd, ch); err != nil {
				offer(ch, sink.NewErrorMessage(err))
			}
			return nil
		})
		if err != nil {
			break
		}
	}
	close(done)
}

func (s *Server) writeLoop(conn *websocket.Conn, ch <-chan sink.Message, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case m, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				s.logger.Debug("websocket write", "err", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run applies one client command. Frames and transforms it produces reach
// the client through the widget callbacks; sync answers directly.
func (s *Server) run(v *Viewer, cmd command, ch chan sink.Message) error {
	w := v.Widget
	switch cmd.Type {
	case cmdClick, cmdFocus, cmdToggle, cmdCenter:
		_, err := apply(w, cmd.Type, cmd.ID)
		return err
	case cmdExpandAll:
		w.ExpandAll()
	case cmdCollapseAll:
		w.CollapseAll()
	case cmdPan:
		w.Viewport().Pan(cmd.DX, cmd.DY)
	case cmdZoom:
		w.Viewport().ZoomAt(cmd.Factor, scene.Point{X: cmd.X, Y: cmd.Y})
	case cmdSync:
		offer(ch, v.Message())
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown command %q", cmd.Type)
	}
	return nil
}

// offer queues m unless the subscriber is too far behind.
func offer(ch chan<- sink.Message, m sink.Message) {
	select {
	case ch <- m:
	default:
	}
}
