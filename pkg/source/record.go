// Package source provides tree data for the widget: datasets read from
// JSON or TOML files, and loaders that fetch children on demand from a
// directory tree or a MongoDB collection.
//
// All sources produce [*Record] values. [Accessors] and [Options] wire
// records into a [widget.Widget]; [Async] and [Sync] turn a [Loader] into
// the widget's load-on-demand callbacks.
package source

import (
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/widget"
)

// Record is one tree item. Hierarchical datasets nest Children; flat
// datasets link records through ParentID. HasChildren marks records whose
// children are fetched lazily.
type Record struct {
	ID          string    `json:"id" toml:"id" bson:"_id"`
	ParentID    string    `json:"parent_id,omitempty" toml:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Label       string    `json:"label" toml:"label" bson:"label"`
	Title       string    `json:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	HasChildren bool      `json:"has_children,omitempty" toml:"has_children,omitempty" bson:"has_children,omitempty"`
	Children    []*Record `json:"children,omitempty" toml:"children,omitempty" bson:"-"`
}

// DisplayText returns the label, falling back to the id.
func (r *Record) DisplayText() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// Accessors returns the tree accessors for records.
func Accessors() tree.Accessors[string, *Record] {
	return tree.Accessors[string, *Record]{
		ID:       func(r *Record) string { return r.ID },
		Children: func(r *Record) []*Record { return r.Children },
		ParentID: func(r *Record) (string, bool) { return r.ParentID, r.ParentID != "" },
	}
}

// Options fills the data and accessor fields of base from d.
func Options(base widget.Options[string, *Record], d *Dataset) widget.Options[string, *Record] {
	acc := Accessors()
	base.GetID = acc.ID
	base.GetChildren = acc.Children
	base.GetParentID = acc.ParentID
	base.DisplayText = (*Record).DisplayText
	base.TitleText = func(r *Record) string { return r.Title }
	if d.IsFlat() {
		base.IsFlatData, base.Records, base.Root = true, d.Records, nil
	} else {
		base.IsFlatData, base.Records, base.Root = false, nil, d.Root
	}
	return base
}
