package tree_test

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/tree"
)

type role struct {
	id, reportsTo string
}

func ids(nodes []*tree.Node[string, role]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func ExampleBuildFlat() {
	records := []role{
		{"ceo", ""},
		{"cto", "ceo"},
		{"cfo", "ceo"},
		{"eng", "cto"},
	}
	t, err := tree.BuildFlat(records, tree.Accessors[string, role]{
		ID:       func(r role) string { return r.id },
		ParentID: func(r role) (string, bool) { return r.reportsTo, r.reportsTo != "" },
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(ids(t.VisibleNodes()))
	fmt.Println("height:", t.Root.Height)
	// Output:
	// [ceo cto cfo eng]
	// height: 2
}

func ExampleBuildFlat_orphan() {
	records := []role{{"ceo", ""}, {"eng", "cto"}}
	_, err := tree.BuildFlat(records, tree.Accessors[string, role]{
		ID:       func(r role) string { return r.id },
		ParentID: func(r role) (string, bool) { return r.reportsTo, r.reportsTo != "" },
	})
	fmt.Println(err)
	// Output:
	// DATA_INVALID: record eng references unknown parent cto
}

func ExampleTree_Focus() {
	records := []role{
		{"ceo", ""},
		{"cto", "ceo"},
		{"cfo", "ceo"},
		{"eng", "cto"},
	}
	t, _ := tree.BuildFlat(records, tree.Accessors[string, role]{
		ID:       func(r role) string { return r.id },
		ParentID: func(r role) (string, bool) { return r.reportsTo, r.reportsTo != "" },
	})

	cto, _ := t.Find("cto")
	t.Focus(cto)
	fmt.Println(ids(t.VisibleNodes()), t.Selected().ID)

	// Focusing the root resets the nested expansion to one level.
	t.Focus(t.Root)
	fmt.Println(ids(t.VisibleNodes()), t.Selected().ID)
	// Output:
	// [ceo cto eng] cto
	// [ceo cto cfo] ceo
}

func ExampleNode_HideSiblings() {
	records := []role{{"ceo", ""}, {"cto", "ceo"}, {"cfo", "ceo"}}
	t, _ := tree.BuildFlat(records, tree.Accessors[string, role]{
		ID:       func(r role) string { return r.id },
		ParentID: func(r role) (string, bool) { return r.reportsTo, r.reportsTo != "" },
	})

	cfo, _ := t.Find("cfo")
	cfo.HideSiblings()
	fmt.Println(ids(t.Root.Children()), len(t.Root.Loaded()))
	// Output:
	// [cfo] 2
}
