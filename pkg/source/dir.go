package source

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
)

// DirLoader browses a directory tree. Record ids are slash-separated paths
// relative to the root ("" is the root itself); directories are marked
// HasChildren and listed only when opened.
type DirLoader struct {
	root       string
	showHidden bool
	maxEntries int
}

// DirOption configures a DirLoader.
type DirOption func(*DirLoader)

// WithHidden includes dot files.
func WithHidden() DirOption { return func(l *DirLoader) { l.showHidden = true } }

// WithMaxEntries caps the number of children listed per directory.
func WithMaxEntries(n int) DirOption { return func(l *DirLoader) { l.maxEntries = n } }

// NewDirLoader returns a loader rooted at dir.
func NewDirLoader(dir string, opts ...DirOption) (*DirLoader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "directory %s not found", dir)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}
	l := &DirLoader{root: abs, maxEntries: 1000}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name implements Loader.
func (l *DirLoader) Name() string { return "dir:" + l.root }

// Root implements Loader.
func (l *DirLoader) Root(context.Context) (*Record, error) {
	return &Record{ID: ".", Label: filepath.Base(l.root), Title: l.root, HasChildren: true}, nil
}

// Children implements Loader. Directories come first, then files, each
// sorted by name.
func (l *DirLoader) Children(ctx context.Context, parent *Record) ([]*Record, error) {
	rel := parent.ID
	if rel == "." {
		rel = ""
	}
	if err := errors.ValidatePath(rel); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "list %s", parent.ID)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var out []*Record
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !l.showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if l.maxEntries > 0 && len(out) == l.maxEntries {
			break
		}
		r := &Record{
			ID:          path.Join(rel, e.Name()),
			ParentID:    parent.ID,
			Label:       e.Name(),
			HasChildren: e.IsDir(),
		}
		if e.IsDir() {
			r.Title = "directory"
		} else if info, err := e.Info(); err == nil {
			r.Title = humanSize(info.Size())
		}
		out = append(out, r)
	}
	return out, nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatInt(n/div, 10) + " " + string("KMGTPE"[exp]) + "B"
}
