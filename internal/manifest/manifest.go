package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when a manifest cannot be decoded.
var ErrInvalidManifest = errors.New("invalid manifest")

// Tokens with special meaning in state fields.
const (
	AnyStateToken     = "*"
	DefaultStateToken = "<default>"
	UnknownToken      = "<unknown>"
)

// Manifest is a decoded routes file.
type Manifest struct {
	Name    string      `json:"name" mapstructure:"name"`
	Default ActionSpec  `json:"default" mapstructure:"default"`
	Routes  []RouteSpec `json:"routes" mapstructure:"routes"`
	Cases   []Case      `json:"cases" mapstructure:"cases"`

	source string
}

// ActionSpec is what a matched route does: reply, then change state.
type ActionSpec struct {
	// Reply may use {text}, {command}, {args}, {data}, {query} and {state}.
	Reply    string `json:"reply,omitempty" mapstructure:"reply"`
	SetState string `json:"set_state,omitempty" mapstructure:"set_state"`
	Reset    bool   `json:"reset,omitempty" mapstructure:"reset"`
}

// RouteSpec declares one handler.
type RouteSpec struct {
	Name    string    `json:"name" mapstructure:"name"`
	Kind    string    `json:"kind,omitempty" mapstructure:"kind"`
	Command string    `json:"command,omitempty" mapstructure:"command"`
	State   string    `json:"state,omitempty" mapstructure:"state"`
	When    *WhenSpec `json:"when,omitempty" mapstructure:"when"`

	ActionSpec `mapstructure:",squash"`

	origin string
}

// Origin returns file:line of the route's declaration.
func (r RouteSpec) Origin() string { return r.origin }

// WhenSpec is a content predicate. Set fields are combined with AND.
type WhenSpec struct {
	TextEquals     string     `json:"text_equals,omitempty" mapstructure:"text_equals"`
	TextPrefix     string     `json:"text_prefix,omitempty" mapstructure:"text_prefix"`
	TextMatches    string     `json:"text_matches,omitempty" mapstructure:"text_matches"`
	HasText        bool       `json:"has_text,omitempty" mapstructure:"has_text"`
	NotCommand     bool       `json:"not_command,omitempty" mapstructure:"not_command"`
	CallbackPrefix string     `json:"callback_prefix,omitempty" mapstructure:"callback_prefix"`
	Attachment     string     `json:"attachment,omitempty" mapstructure:"attachment"`
	Reply          bool       `json:"reply,omitempty" mapstructure:"reply"`
	Any            []WhenSpec `json:"any,omitempty" mapstructure:"any"`
	Not            *WhenSpec  `json:"not,omitempty" mapstructure:"not"`
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a manifest. source names the file in route origins.
func Parse(data []byte, source string) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, source, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidManifest, source)
	}
	root := doc.Content[0]

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, source, err)
	}

	m := &Manifest{source: source}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           m,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, source, err)
	}

	lines := routeLines(root)
	base := filepath.Base(source)
	for i := range m.Routes {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		m.Routes[i].origin = fmt.Sprintf("%s:%d", base, line)
	}
	return m, nil
}

// routeLines returns the line of each item of the top-level routes sequence.
func routeLines(root *yaml.Node) []int {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "routes" {
			continue
		}
		seq := root.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, item := range seq.Content {
			lines[j] = item.Line
		}
		return lines
	}
	return nil
}

// Source returns the path the manifest was read from.
func (m *Manifest) Source() string { return m.source }
