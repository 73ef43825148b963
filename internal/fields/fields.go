// Package fields defines the field/path/step model and loads it from a
// fields file.
//
// A fields file is YAML (JSON is accepted, being a subset). Mapping order is
// significant: fields run in the order they are declared and paths are
// ranked with declaration order as the tie-break.
//
//	ocr:                  # optional OCR overrides
//	  lang: eng+fra
//	  config: --psm 7
//	fields:
//	  Header:             # field
//	    plain:            # path
//	      - name: greyscale
//	    otsu:
//	      - name: resize
//	        config: {fx: 3, fy: 3}
//	      - name: threshold
//	        config: {Binary_OTSU: "True"}
//
// A file without the top-level ocr/fields keys is read as a bare mapping of
// fields. Steps may use foo/params instead of name/config, so JSON renditions
// of older field files load unchanged. JSON5 is not read: "//" comments must
// become "#" comments first.
package fields

import "github.com/ironsheep/ocr-fields/internal/ocr"

// Step is one named transform invocation.
type Step struct {
	// Name is the transform registry key.
	Name string `json:"name" yaml:"name"`

	// Config is the transform's option bag. It may be nil.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Path is an ordered sequence of steps tried as one candidate for a field.
type Path struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Field is a named group of alternative paths applied to the same image.
type Field struct {
	Name  string `json:"name"`
	Paths []Path `json:"paths"`
}

// FieldSet is the content of a fields file.
type FieldSet struct {
	// OCR overrides the environment's OCR options for this file.
	OCR ocr.Options `json:"ocr"`

	// Fields in execution order.
	Fields []Field `json:"fields"`
}

// Field returns the field called name.
func (s *FieldSet) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Path returns the path called name.
func (f Field) Path(name string) (Path, bool) {
	for _, p := range f.Paths {
		if p.Name == name {
			return p, true
		}
	}
	return Path{}, false
}
