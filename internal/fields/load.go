package fields

import (
	"errors"
	"fmt"
	"os"

	"github.com/ironsheep/ocr-fields/internal/ocr"
	"gopkg.in/yaml.v3"
)

// ErrUnavailable is matched by every fields-file load failure. A run must not
// start when its fields are unavailable.
var ErrUnavailable = errors.New("fields unavailable")

// LoadError describes why a fields file could not be used.
type LoadError struct {
	// Path is the file name, empty when parsing in-memory data.
	Path string

	// Err is the underlying problem.
	Err error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("fields: %v", e.Err)
	}
	return fmt.Sprintf("fields: %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrUnavailable and the underlying error to errors.Is.
func (e *LoadError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Load reads and parses a fields file.
func Load(path string) (*FieldSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	set, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return set, nil
}

// Parse parses fields-file content. All failures are *LoadError.
func Parse(data []byte) (*FieldSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &LoadError{Err: errors.New("file is empty")}
	}

	set, err := parseRoot(doc.Content[0])
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return set, nil
}

func parseRoot(root *yaml.Node) (*FieldSet, error) {
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of fields", root.Line)
	}

	set := &FieldSet{}
	fieldsNode := root
	if isWrapped(root) {
		fieldsNode = nil
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			switch key.Value {
			case "ocr":
				opts, err := parseOCR(val)
				if err != nil {
					return nil, fmt.Errorf("ocr: %w", err)
				}
				set.OCR = opts
			case "fields":
				fieldsNode = val
			}
		}
		if fieldsNode == nil || fieldsNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: fields must be a mapping", root.Line)
		}
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(fieldsNode.Content); i += 2 {
		key, val := fieldsNode.Content[i], fieldsNode.Content[i+1]
		if seen[key.Value] {
			return nil, fmt.Errorf("line %d: field %q declared twice", key.Line, key.Value)
		}
		seen[key.Value] = true

		field, err := parseField(key.Value, val)
		if err != nil {
			return nil, err
		}
		set.Fields = append(set.Fields, field)
	}
	if len(set.Fields) == 0 {
		return nil, errors.New("no fields declared")
	}
	return set, nil
}

// isWrapped reports whether root uses the ocr/fields layout rather than a
// bare mapping of fields.
func isWrapped(root *yaml.Node) bool {
	hasFields := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch root.Content[i].Value {
		case "fields":
			hasFields = true
		case "ocr":
		default:
			return false
		}
	}
	return hasFields
}

func parseField(name string, node *yaml.Node) (Field, error) {
	field := Field{Name: name}
	if node.Kind != yaml.MappingNode {
		return field, fmt.Errorf("line %d: field %q must be a mapping of paths", node.Line, name)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return field, fmt.Errorf("line %d: path %q declared twice in field %q", key.Line, key.Value, name)
		}
		seen[key.Value] = true

		path, err := parsePath(key.Value, val)
		if err != nil {
			return field, fmt.Errorf("field %q: %w", name, err)
		}
		field.Paths = append(field.Paths, path)
	}
	if len(field.Paths) == 0 {
		return field, fmt.Errorf("line %d: field %q has no paths", node.Line, name)
	}
	return field, nil
}

func parsePath(name string, node *yaml.Node) (Path, error) {
	path := Path{Name: name}
	switch node.Kind {
	case yaml.SequenceNode:
	case yaml.ScalarNode:
		// An empty path OCRs the field's input as it is.
		if node.Tag == "!!null" {
			return path, nil
		}
		fallthrough
	default:
		return path, fmt.Errorf("line %d: path %q must be a list of steps", node.Line, name)
	}

	for i, n := range node.Content {
		step, err := parseStep(n)
		if err != nil {
			return path, fmt.Errorf("path %q step %d: %w", name, i+1, err)
		}
		path.Steps = append(path.Steps, step)
	}
	return path, nil
}

// rawStep accepts both the name/config and foo/params spellings.
type rawStep struct {
	Name   string         `yaml:"name"`
	Foo    string         `yaml:"foo"`
	Config map[string]any `yaml:"config"`
	Params map[string]any `yaml:"params"`
}

var (
	stepKeys = map[string]bool{"name": true, "foo": true, "config": true, "params": true}
	ocrKeys  = map[string]bool{
		"lang": true, "config": true, "nice": true, "timeout": true,
		"command": true, "tessdata_prefix": true, "variables": true,
	}
)

// rawOCR is the ocr section as written. The timeout is either a duration
// string or a number of seconds.
type rawOCR struct {
	Language       string            `yaml:"lang"`
	Config         string            `yaml:"config"`
	Nice           int               `yaml:"nice"`
	Timeout        any               `yaml:"timeout"`
	Command        string            `yaml:"command"`
	TessdataPrefix string            `yaml:"tessdata_prefix"`
	Variables      map[string]string `yaml:"variables"`
}

func parseOCR(node *yaml.Node) (ocr.Options, error) {
	var raw rawOCR
	if err := decodeStrict(node, &raw, ocrKeys); err != nil {
		return ocr.Options{}, err
	}
	timeout, err := ocr.ParseTimeout(raw.Timeout)
	if err != nil {
		return ocr.Options{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return ocr.Options{
		Language:       raw.Language,
		Config:         raw.Config,
		Nice:           raw.Nice,
		Timeout:        timeout,
		Command:        raw.Command,
		TessdataPrefix: raw.TessdataPrefix,
		Variables:      raw.Variables,
	}, nil
}

func parseStep(node *yaml.Node) (Step, error) {
	// A bare name is a step without options.
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		if node.Value == "" {
			return Step{}, fmt.Errorf("line %d: step has no name", node.Line)
		}
		return Step{Name: node.Value}, nil
	}
	if node.Kind != yaml.MappingNode {
		return Step{}, fmt.Errorf("line %d: step must be a mapping", node.Line)
	}

	var raw rawStep
	if err := decodeStrict(node, &raw, stepKeys); err != nil {
		return Step{}, err
	}

	step := Step{Name: raw.Name, Config: raw.Config}
	if step.Name == "" {
		step.Name = raw.Foo
	} else if raw.Foo != "" && raw.Foo != raw.Name {
		return Step{}, fmt.Errorf("line %d: name %q and foo %q disagree", node.Line, raw.Name, raw.Foo)
	}
	if step.Config == nil {
		step.Config = raw.Params
	} else if raw.Params != nil {
		return Step{}, fmt.Errorf("line %d: both config and params given", node.Line)
	}
	if step.Name == "" {
		return Step{}, fmt.Errorf("line %d: step has no name", node.Line)
	}
	return step, nil
}

// decodeStrict decodes a mapping node into out after checking that every key
// is allowed.
func decodeStrict(node *yaml.Node, out any, allowed map[string]bool) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		if key := node.Content[i]; !allowed[key.Value] {
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	if err := node.Decode(out); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}
