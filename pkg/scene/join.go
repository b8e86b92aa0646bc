package scene

// Joined is the outcome of keying new data against a scene layer.
type Joined[T any] struct {
	Enter  []T        // data whose key the layer does not hold
	Update []T        // data whose key the layer already holds
	Exit   []*Element // layer elements whose key is absent from data
}

// Join splits data by key against the current contents of one layer. Enter
// and Update keep data order; Exit keeps draw order.
func Join[T any](s *Scene, kind Kind, data []T, key func(T) string) Joined[T] {
	var j Joined[T]
	l := s.layer(kind)
	seen := make(map[string]struct{}, len(data))
	for _, d := range data {
		k := key(d)
		seen[k] = struct{}{}
		if _, ok := l.byKey[k]; ok {
			j.Update = append(j.Update, d)
		} else {
			j.Enter = append(j.Enter, d)
		}
	}
	for _, e := range l.list() {
		if _, ok := seen[e.Key]; !ok {
			j.Exit = append(j.Exit, e)
		}
	}
	return j
}

// Phase is a reconciliation phase.
type Phase string

const (
	PhaseEnter  Phase = "enter"
	PhaseUpdate Phase = "update"
	PhaseExit   Phase = "exit"
)

// Transition animates one element from a start state to its end state.
// Node transitions use From/To; link transitions use FromPath/ToPath.
type Transition struct {
	Phase Phase  `json:"phase"`
	Kind  Kind   `json:"kind"`
	Key   string `json:"key"`

	From Point `json:"from"`
	To   Point `json:"to"`

	FromPath string `json:"fromPath,omitempty"`
	ToPath   string `json:"toPath,omitempty"`

	FromOpacity float64 `json:"fromOpacity"`
	ToOpacity   float64 `json:"toOpacity"`
}
