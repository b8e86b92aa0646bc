package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/arbor/pkg/config"
)

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    inputOpts
		args    []string
		wantErr bool
	}{
		{"file", inputOpts{}, []string{"tree.json"}, false},
		{"dir", inputOpts{dir: "."}, nil, false},
		{"mongo", inputOpts{mongo: true}, nil, false},
		{"nothing", inputOpts{}, nil, true},
		{"file and dir", inputOpts{dir: "."}, []string{"tree.json"}, true},
		{"dir and mongo", inputOpts{dir: ".", mongo: true}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenInputFile(t *testing.T) {
	c, data := testCLI(t)

	in, err := c.openInput(context.Background(), config.Default(), []string{data}, &inputOpts{})
	if err != nil {
		t.Fatalf("openInput() error: %v", err)
	}
	defer in.Close()

	if in.lazy() {
		t.Error("file input should not be lazy")
	}
	if in.dataset.Len() != 4 {
		t.Errorf("dataset records = %d, want 4", in.dataset.Len())
	}
}

func TestOpenInputDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "file.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	in, err := c.openInput(context.Background(), config.Default(), nil, &inputOpts{dir: dir, maxEntries: 10, noCache: true})
	if err != nil {
		t.Fatalf("openInput() error: %v", err)
	}
	defer in.Close()

	if !in.lazy() {
		t.Fatal("directory input should be lazy")
	}
	ds, err := in.start(context.Background())
	if err != nil {
		t.Fatalf("start() error: %v", err)
	}
	if ds.Root == nil || !ds.Root.HasChildren {
		t.Errorf("lazy root = %+v, want a root with children", ds.Root)
	}
}

func TestOpenInputMissingFile(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)

	if _, err := c.openInput(context.Background(), config.Default(), []string{"missing.json"}, &inputOpts{}); err == nil {
		t.Error("openInput() should fail for a missing file")
	}
}
