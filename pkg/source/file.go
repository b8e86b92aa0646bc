package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Format is a dataset encoding.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Dataset is either a hierarchical Root or a flat list of Records.
type Dataset struct {
	Root    *Record   `json:"root,omitempty" toml:"root,omitempty"`
	Records []*Record `json:"records,omitempty" toml:"records,omitempty"`
}

// IsFlat reports whether the dataset is a flat record list.
func (d *Dataset) IsFlat() bool { return d.Root == nil }

// Len returns the number of records in the dataset, not counting lazily
// loaded children.
func (d *Dataset) Len() int {
	if d.IsFlat() {
		return len(d.Records)
	}
	n := 0
	var walk func(*Record)
	walk = func(r *Record) {
		n++
		for _, c := range r.Children {
			walk(c)
		}
	}
	walk(d.Root)
	return n
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (want .json or .toml)", filepath.Ext(path))
}

// ReadFile reads a dataset from a .json or .toml file.
func ReadFile(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "dataset %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return d, nil
}

// Read decodes a dataset. JSON input may be an object with "root" or
// "records", a bare record array (flat) or a bare record object
// (hierarchical). TOML input uses a [root] table or [[records]] arrays.
func Read(r io.Reader, format Format) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var d Dataset
	switch format {
	case FormatJSON:
		err = decodeJSON(raw, &d)
	case FormatTOML:
		_, err = toml.Decode(string(raw), &d)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s dataset", format)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeJSON(raw []byte, d *Dataset) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &d.Records)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	if _, ok := fields["id"]; ok {
		d.Root = new(Record)
		return json.Unmarshal(trimmed, d.Root)
	}
	return json.Unmarshal(trimmed, d)
}

// Validate checks the dataset shape and every record id. Structural checks
// (orphans, duplicates, cycles) happen when the tree is built.
func (d *Dataset) Validate() error {
	if d.Root != nil && len(d.Records) > 0 {
		return errors.Data("dataset has both root and records")
	}
	if d.Root == nil && len(d.Records) == 0 {
		return errors.Data("dataset is empty")
	}
	if d.Root != nil {
		return validateRecords([]*Record{d.Root}, true)
	}
	return validateRecords(d.Records, false)
}

func validateRecords(records []*Record, nested bool) error {
	for _, r := range records {
		if r == nil {
			return errors.Data("dataset contains an empty record")
		}
		if err := errors.ValidateNodeID(r.ID); err != nil {
			return err
		}
		if nested {
			if err := validateRecords(r.Children, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write encodes d in the given format.
func Write(w io.Writer, d *Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(d)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
}
