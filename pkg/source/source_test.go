package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render/circle"
	"github.com/matzehuels/arbor/pkg/widget"
)

func TestReadJSONShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flat  bool
		n     int
	}{
		{"root object", `{"root": {"id": "a", "children": [{"id": "b"}]}}`, false, 2},
		{"bare record", `{"id": "a", "label": "A", "children": [{"id": "b"}, {"id": "c"}]}`, false, 3},
		{"records object", `{"records": [{"id": "a"}, {"id": "b", "parent_id": "a"}]}`, true, 2},
		{"bare array", `[{"id": "a"}, {"id": "b", "parent_id": "a"}, {"id": "c", "parent_id": "b"}]`, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Read(strings.NewReader(tt.input), FormatJSON)
			require.NoError(t, err)
			require.Equal(t, tt.flat, d.IsFlat())
			require.Equal(t, tt.n, d.Len())
		})
	}
}

func TestReadTOML(t *testing.T) {
	input := `
[[records]]
id = "1"
label = "Board"

[[records]]
id = "2"
parent_id = "1"
label = "CEO"
title = "Chief"
`
	d, err := Read(strings.NewReader(input), FormatTOML)
	require.NoError(t, err)
	require.True(t, d.IsFlat())
	require.Equal(t, "Chief", d.Records[1].Title)
	require.Equal(t, "1", d.Records[1].ParentID)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d, FormatTOML))
	again, err := Read(&buf, FormatTOML)
	require.NoError(t, err)
	require.Equal(t, d.Records, again.Records)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader(`{}`), FormatJSON)
	require.True(t, errors.IsData(err), "empty: %v", err)

	_, err = Read(strings.NewReader(`{"root": {"id": "a"}, "records": [{"id": "b"}]}`), FormatJSON)
	require.True(t, errors.IsData(err), "both: %v", err)

	_, err = Read(strings.NewReader(`{"root": {"id": ""}}`), FormatJSON)
	require.Error(t, err)

	_, err = Read(strings.NewReader(`{not json`), FormatJSON)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "syntax: %v", err)

	_, err = FormatFromPath("tree.yaml")
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, errors.IsNotFound(err))
}

func TestOptionsBuildWidget(t *testing.T) {
	d, err := Read(strings.NewReader(`[{"id": "a", "label": "A"}, {"id": "b", "parent_id": "a"}]`), FormatJSON)
	require.NoError(t, err)

	w, err := widget.New(Options(widget.DefaultOptions[string, *Record](), d), circle.New())
	require.NoError(t, err)
	require.NoError(t, w.Initialize())
	require.Equal(t, "a", w.Root().ID)

	b, ok := w.Node("b")
	require.True(t, ok)
	require.Equal(t, "b", b.Data.DisplayText(), "label falls back to id")
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range []string{"src/main.go", "src/util/util.go", "README.md", ".git/HEAD"} {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	return dir
}

func TestDirLoader(t *testing.T) {
	ctx := context.Background()
	l, err := NewDirLoader(fixtureDir(t))
	require.NoError(t, err)

	root, err := l.Root(ctx)
	require.NoError(t, err)
	require.True(t, root.HasChildren)

	kids, err := l.Children(ctx, root)
	require.NoError(t, err)
	var names []string
	for _, k := range kids {
		names = append(names, k.ID)
	}
	require.Equal(t, []string{"empty", "src", "README.md"}, names)
	require.True(t, kids[1].HasChildren)
	require.False(t, kids[2].HasChildren)
	require.Equal(t, "1 B", kids[2].Title)

	src, err := l.Children(ctx, kids[1])
	require.NoError(t, err)
	require.Equal(t, "src/util", src[0].ID)
	require.Equal(t, "src", src[0].ParentID)

	_, err = l.Children(ctx, &Record{ID: "../etc"})
	require.Error(t, err)
}

func TestDirLoaderOptions(t *testing.T) {
	l, err := NewDirLoader(fixtureDir(t), WithHidden(), WithMaxEntries(2))
	require.NoError(t, err)
	kids, err := l.Children(context.Background(), &Record{ID: "."})
	require.NoError(t, err)
	require.Len(t, kids, 2)
	require.Equal(t, ".git", kids[0].ID)

	_, err = NewDirLoader(filepath.Join(t.TempDir(), "nope"))
	require.True(t, errors.IsNotFound(err))
}

func TestSyncLoaderDrivesWidget(t *testing.T) {
	ctx := context.Background()
	l, err := NewDirLoader(fixtureDir(t))
	require.NoError(t, err)
	d, err := Lazy(ctx, l)
	require.NoError(t, err)

	opts := Options(widget.DefaultOptions[string, *Record](), d)
	opts.LoadOnDemand = Sync(ctx, l, nil)
	w, err := widget.New(opts, circle.New())
	require.NoError(t, err)
	require.NoError(t, w.Initialize())
	require.Nil(t, w.Root().Loaded())

	require.NoError(t, w.Toggle(w.Root()))
	require.Len(t, w.Root().Children(), 3)

	empty, ok := w.Node("empty")
	require.True(t, ok)
	require.NoError(t, w.Toggle(empty))
	require.False(t, w.Tree().NeedsLoad(empty), "empty directory becomes a leaf")
	require.Nil(t, empty.Loaded())
}

func TestAsyncLoaderPostsResult(t *testing.T) {
	ctx := context.Background()
	l, err := NewDirLoader(fixtureDir(t))
	require.NoError(t, err)
	d, err := Lazy(ctx, l)
	require.NoError(t, err)

	posted := make(chan func(), 1)
	opts := Options(widget.DefaultOptions[string, *Record](), d)
	opts.LoadOnDemand = Async(ctx, l, func(fn func()) { posted <- fn }, nil)
	w, err := widget.New(opts, circle.New())
	require.NoError(t, err)
	require.NoError(t, w.Initialize())

	require.NoError(t, w.Focus(w.Root()))
	require.True(t, w.Root().IsLoading())
	require.Nil(t, w.Root().Loaded())

	(<-posted)()
	require.False(t, w.Root().IsLoading())
	require.True(t, w.Root().Selected)
	require.Len(t, w.Root().Children(), 3)
}

func TestLoaderErrorReleasesNode(t *testing.T) {
	ctx := context.Background()
	var failed *Record
	opts := Options(widget.DefaultOptions[string, *Record](), &Dataset{Root: &Record{ID: "r", HasChildren: true}})
	var w *widget.Widget[string, *Record]
	opts.LoadOnDemand = Sync(ctx, failing{}, func(r *Record, err error) {
		failed = r
		n, _ := w.Node(r.ID)
		w.CancelLoad(n)
	})
	w, err := widget.New(opts, circle.New())
	require.NoError(t, err)
	require.NoError(t, w.Initialize())

	require.NoError(t, w.Toggle(w.Root()))
	require.Equal(t, "r", failed.ID)
	require.False(t, w.Root().IsLoading())
	require.True(t, w.Tree().NeedsLoad(w.Root()))
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Root(context.Context) (*Record, error) {
	return nil, errors.New(errors.ErrCodeNetwork, "backend down")
}
func (failing) Children(context.Context, *Record) ([]*Record, error) {
	return nil, errors.New(errors.ErrCodeNetwork, "backend down")
}

type counting struct {
	calls int
}

func (c *counting) Name() string { return "counting" }
func (c *counting) Root(context.Context) (*Record, error) {
	return &Record{ID: "r", HasChildren: true}, nil
}
func (c *counting) Children(_ context.Context, p *Record) ([]*Record, error) {
	c.calls++
	return []*Record{{ID: p.ID + "/1", ParentID: p.ID, Label: "one"}}, nil
}

func TestCachedLoader(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	inner := &counting{}
	l := NewCachedLoader(inner, fc, nil, 0, nil)

	root, err := l.Root(ctx)
	require.NoError(t, err)
	first, err := l.Children(ctx, root)
	require.NoError(t, err)
	second, err := l.Children(ctx, root)
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls)
	require.Equal(t, first, second)
	require.Equal(t, "counting", l.Name())
}

func TestMongoConfigValidate(t *testing.T) {
	require.Error(t, MongoConfig{}.Validate())
	require.Error(t, MongoConfig{URI: "http://db"}.Validate())
	require.True(t, errors.IsConfig(MongoConfig{URI: "mongodb://localhost"}.Validate()))
	require.NoError(t, MongoConfig{URI: "mongodb://localhost", Database: "d", Collection: "c"}.Validate())
}

func TestMongoLoader(t *testing.T) {
	uri := os.Getenv("ARBOR_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ARBOR_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	l, err := NewMongoLoader(ctx, MongoConfig{URI: uri, Database: "arbor_test", Collection: "records", CountChildren: true})
	require.NoError(t, err)
	defer l.Close(ctx)

	_, err = l.coll.DeleteMany(ctx, map[string]any{})
	require.NoError(t, err)
	_, err = l.coll.InsertMany(ctx, []any{
		Record{ID: "1", Label: "root"},
		Record{ID: "2", ParentID: "1", Label: "b"},
		Record{ID: "3", ParentID: "1", Label: "a"},
		Record{ID: "4", ParentID: "2", Label: "leaf"},
	})
	require.NoError(t, err)

	root, err := l.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, "1", root.ID)

	kids, err := l.Children(ctx, root)
	require.NoError(t, err)
	require.Len(t, kids, 2)
	require.Equal(t, "a", kids[0].Label)
	require.False(t, kids[0].HasChildren)
	require.True(t, kids[1].HasChildren)
}
