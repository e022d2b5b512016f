// Package source adapts raw configuration text to and from document.Value.
//
// Formats are pluggable drivers keyed by name and file extension. JSON
// (goccy/go-json) and YAML (gopkg.in/yaml.v3) are registered by default;
// SetDriver replaces or adds one.
package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// Parser turns raw configuration text into a Document. Failures are ordinary
// errors; callers such as legacy.ParseAndTransform convert them into
// suggestions.
type Parser func(raw []byte) (document.Value, error)

// Encoder renders a Document.
type Encoder func(v document.Value, opts ...EncodeOption) ([]byte, error)

// Driver couples a parser and encoder with the file extensions it claims.
type Driver struct {
	Name       string
	Extensions []string // lower-case, with leading dot
	Parse      Parser
	Encode     Encoder
}

var (
	driverMu sync.RWMutex
	drivers  = map[string]Driver{}
)

func init() {
	SetDriver(Driver{Name: "json", Extensions: []string{".json"}, Parse: JSON, Encode: EncodeJSON})
	SetDriver(Driver{Name: "yaml", Extensions: []string{".yaml", ".yml"}, Parse: YAML, Encode: EncodeYAML})
}

// SetDriver registers d under its name; drivers without a name or parser are
// ignored.
func SetDriver(d Driver) {
	if d.Name == "" || d.Parse == nil {
		return
	}
	driverMu.Lock()
	drivers[strings.ToLower(d.Name)] = d
	driverMu.Unlock()
}

// GetDriver returns the driver registered under name.
func GetDriver(name string) (Driver, bool) {
	driverMu.RLock()
	d, ok := drivers[strings.ToLower(name)]
	driverMu.RUnlock()
	return d, ok
}

// DriverNames lists registered drivers alphabetically.
func DriverNames() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	out := make([]string, 0, len(drivers))
	for n := range drivers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ForFile picks the driver for a file name by extension. Unknown extensions
// fall back to YAML, which also accepts JSON documents.
func ForFile(name string) Driver {
	ext := strings.ToLower(filepath.Ext(name))
	driverMu.RLock()
	defer driverMu.RUnlock()
	for _, d := range drivers {
		for _, e := range d.Extensions {
			if e == ext {
				return d
			}
		}
	}
	return drivers["yaml"]
}

// ReadFile loads and parses a configuration file using ForFile.
func ReadFile(name string) (document.Value, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return document.Value{}, err
	}
	v, err := ForFile(name).Parse(raw)
	if err != nil {
		return document.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// JSON parses a single JSON value, keeping object key order.
func JSON(raw []byte) (document.Value, error) {
	return document.DecodeJSON(bytes.NewReader(raw))
}

// YAML parses the first YAML document, keeping mapping order. Empty input
// yields null.
func YAML(raw []byte) (document.Value, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(raw, &n); err != nil {
		return document.Value{}, err
	}
	if n.Kind == 0 {
		return document.Null(), nil
	}
	return document.FromYAMLNode(&n)
}

type encodeConfig struct {
	indent  int
	comment func(ncconf.Path) string
}

// EncodeOption tunes EncodeJSON and EncodeYAML.
type EncodeOption func(*encodeConfig)

// WithIndent sets the indentation width (default 2).
func WithIndent(n int) EncodeOption { return func(c *encodeConfig) { c.indent = n } }

// WithComments attaches head comments to YAML keys. JSON ignores it.
func WithComments(fn func(ncconf.Path) string) EncodeOption {
	return func(c *encodeConfig) { c.comment = fn }
}

func newEncodeConfig(opts []EncodeOption) encodeConfig {
	c := encodeConfig{indent: 2}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// EncodeJSON renders v as indented JSON with a trailing newline. An indent of
// zero produces compact output.
func EncodeJSON(v document.Value, opts ...EncodeOption) ([]byte, error) {
	c := newEncodeConfig(opts)
	var (
		out []byte
		err error
	)
	if c.indent <= 0 {
		out, err = v.MarshalJSON()
	} else {
		out, err = document.MarshalIndentJSON(v, "", strings.Repeat(" ", c.indent))
	}
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// EncodeYAML renders v as block YAML.
func EncodeYAML(v document.Value, opts ...EncodeOption) ([]byte, error) {
	c := newEncodeConfig(opts)
	if c.indent <= 0 {
		c.indent = 2
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(c.indent)
	if err := enc.Encode(v.YAMLNode(c.comment)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
