// Package layout computes tidy tree positions.
//
// The algorithm is the Reingold-Tilford tidy tree in the linear-time form of
// Buchheim, Jünger and Leipert, with the same conventions as d3's tree
// layout: siblings are one unit apart, cousins two, and a parent is centered
// over its first and last child.
package layout

import "github.com/matzehuels/arbor/pkg/errors"

// SizingMode selects how breadth positions are scaled.
type SizingMode string

const (
	// Size fits the whole tree into a fixed breadth extent.
	Size SizingMode = "size"
	// NodeSize gives every node a fixed breadth spacing, so the tree grows
	// with its content.
	NodeSize SizingMode = "nodeSize"
)

// ParseSizingMode validates a sizing mode name.
func ParseSizingMode(s string) (SizingMode, error) {
	switch SizingMode(s) {
	case Size, "":
		return Size, nil
	case NodeSize:
		return NodeSize, nil
	}
	return "", errors.Config("unknown sizing mode %q", s)
}

// Config controls a layout pass.
type Config struct {
	Mode SizingMode

	// Breadth is the total breadth extent in Size mode, and the spacing
	// between adjacent siblings in NodeSize mode.
	Breadth float64

	// DepthStep is the distance between consecutive levels.
	DepthStep float64
}

// Apply lays out the tree under root. children returns the nodes to lay out
// below a node (normally its visible children); set receives each node's
// breadth position x and depth position y.
func Apply[N any](root N, children func(N) []N, set func(n N, x, y float64), cfg Config) {
	t := buildWalk(root, children)
	t.eachAfter(firstWalk[N])
	t.parent.m = -t.z
	t.eachBefore(secondWalk[N])

	if cfg.Mode == NodeSize {
		t.eachBefore(func(v *walkNode[N]) {
			set(v.n, v.x*cfg.Breadth, float64(v.depth)*cfg.DepthStep)
		})
		return
	}

	left, right := t, t
	t.eachBefore(func(v *walkNode[N]) {
		if v.x < left.x {
			left = v
		}
		if v.x > right.x {
			right = v
		}
	})
	s := 1.0
	if left != right {
		s = separation(left, right) / 2
	}
	tx := s - left.x
	kx := cfg.Breadth / (right.x + s + tx)
	t.eachBefore(func(v *walkNode[N]) {
		set(v.n, (v.x+tx)*kx, float64(v.depth)*cfg.DepthStep)
	})
}

type walkNode[N any] struct {
	n        N
	parent   *walkNode[N]
	children []*walkNode[N]
	depth    int
	i        int // index among siblings

	A *walkNode[N] // default ancestor
	a *walkNode[N] // ancestor
	t *walkNode[N] // thread

	z float64 // prelim
	m float64 // mod
	c float64 // change
	s float64 // shift
	x float64
}

func buildWalk[N any](root N, children func(N) []N) *walkNode[N] {
	t := &walkNode[N]{n: root}
	t.a = t
	stack := []*walkNode[N]{t}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kids := children(v.n)
		if len(kids) == 0 {
			continue
		}
		v.children = make([]*walkNode[N], len(kids))
		for i, k := range kids {
			c := &walkNode[N]{n: k, parent: v, depth: v.depth + 1, i: i}
			c.a = c
			v.children[i] = c
			stack = append(stack, c)
		}
	}
	fake := &walkNode[N]{children: []*walkNode[N]{t}}
	fake.a = fake
	t.parent = fake
	return t
}

func (v *walkNode[N]) eachAfter(fn func(*walkNode[N])) {
	for _, c := range v.children {
		c.eachAfter(fn)
	}
	fn(v)
}

func (v *walkNode[N]) eachBefore(fn func(*walkNode[N])) {
	fn(v)
	for _, c := range v.children {
		c.eachBefore(fn)
	}
}

func separation[N any](a, b *walkNode[N]) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func nextLeft[N any](v *walkNode[N]) *walkNode[N] {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.t
}

func nextRight[N any](v *walkNode[N]) *walkNode[N] {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.t
}

func moveSubtree[N any](wm, wp *walkNode[N], shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

func executeShifts[N any](v *walkNode[N]) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.z += shift
		w.m += shift
		change += w.c
		shift += w.s + change
	}
}

func nextAncestor[N any](vim, v, ancestor *walkNode[N]) *walkNode[N] {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

func firstWalk[N any](v *walkNode[N]) {
	siblings := v.parent.children
	var w *walkNode[N]
	if v.i > 0 {
		w = siblings[v.i-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].z + v.children[len(v.children)-1].z) / 2
		if w != nil {
			v.z = w.z + separation(v, w)
			v.m = v.z - midpoint
		} else {
			v.z = midpoint
		}
	} else if w != nil {
		v.z = w.z + separation(v, w)
	}
	ancestor := v.parent.A
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.A = apportion(v, w, ancestor)
}

func secondWalk[N any](v *walkNode[N]) {
	v.x = v.z + v.parent.m
	v.m += v.parent.m
}

func apportion[N any](v, w, ancestor *walkNode[N]) *walkNode[N] {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m
	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.z + sim - vip.z - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}
	if vim != nil && nextRight(vop) == nil {
		vop.t = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.t = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}
