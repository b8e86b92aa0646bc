package sink

import (
	"encoding/json"

	"github.com/matzehuels/arbor/pkg/diagram"
	"github.com/matzehuels/arbor/pkg/scene"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Message types sent to the browser client.
const (
	MessageFrame     = "frame"
	MessageTransform = "transform"
	MessageError     = "error"
)

// Message is the JSON wire format of the browser client.
type Message struct {
	Type        string             `json:"type"`
	Seq         int                `json:"seq,omitempty"`
	Anchor      string             `json:"anchor,omitempty"`
	DurationMS  int64              `json:"durationMs"`
	Transitions []scene.Transition `json:"transitions,omitempty"`
	Nodes       []Element          `json:"nodes,omitempty"`
	Links       []Element          `json:"links,omitempty"`
	Transform   *Transform         `json:"transform,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Element is a scene element on the wire.
type Element struct {
	Key     string        `json:"key"`
	Classes []string      `json:"classes"`
	X       float64       `json:"x,omitempty"`
	Y       float64       `json:"y,omitempty"`
	Path    string        `json:"d,omitempty"`
	Title   string        `json:"title,omitempty"`
	Shapes  []scene.Shape `json:"shapes,omitempty"`
}

// Transform is a pan/zoom transform on the wire.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// NewMessage builds a frame message carrying the whole scene, so a client
// can render from scratch or diff against what it shows.
func NewMessage(sc *scene.Scene, f diagram.Frame, t viewport.Transform) Message {
	m := Message{
		Type:        MessageFrame,
		Seq:         f.Seq,
		Anchor:      f.Anchor,
		DurationMS:  f.Duration.Milliseconds(),
		Transitions: f.Transitions,
		Transform:   &Transform{X: t.X, Y: t.Y, K: t.K},
	}
	for _, el := range sc.Nodes() {
		m.Nodes = append(m.Nodes, Element{
			Key: el.Key, Classes: el.Classes, X: el.Pos.X, Y: el.Pos.Y,
			Title: el.Title, Shapes: el.Shapes,
		})
	}
	for _, el := range sc.Links() {
		m.Links = append(m.Links, Element{Key: el.Key, Classes: el.Classes, Path: el.Path})
	}
	return m
}

// NewTransformMessage announces a pan/zoom change.
func NewTransformMessage(t viewport.Transform, durationMS int64) Message {
	return Message{Type: MessageTransform, DurationMS: durationMS, Transform: &Transform{X: t.X, Y: t.Y, K: t.K}}
}

// NewErrorMessage reports a failed request.
func NewErrorMessage(err error) Message {
	return Message{Type: MessageError, Error: err.Error()}
}

// RenderJSON encodes the frame message for sc and f.
func RenderJSON(sc *scene.Scene, f diagram.Frame, t viewport.Transform) ([]byte, error) {
	return json.MarshalIndent(NewMessage(sc, f, t), "", "  ")
}
