package diagram

import (
	"time"

	"github.com/matzehuels/arbor/pkg/scene"
)

// Frame records one reconciliation: which elements entered, moved and left,
// and where each one animates from and to.
type Frame struct {
	Seq      int           `json:"seq"`
	Anchor   string        `json:"anchor"`
	Duration time.Duration `json:"duration"`

	Transitions []scene.Transition `json:"transitions"`

	// Nodes lists visible node keys in breadth-first order; Links lists
	// the child key of every visible link.
	Nodes []string `json:"nodes"`
	Links []string `json:"links"`
}

// Count returns the number of transitions with the given phase and kind.
func (f Frame) Count(p scene.Phase, k scene.Kind) int {
	n := 0
	for _, t := range f.Transitions {
		if t.Phase == p && t.Kind == k {
			n++
		}
	}
	return n
}

// Keys returns the keys of transitions with the given phase and kind.
func (f Frame) Keys(p scene.Phase, k scene.Kind) []string {
	var keys []string
	for _, t := range f.Transitions {
		if t.Phase == p && t.Kind == k {
			keys = append(keys, t.Key)
		}
	}
	return keys
}
