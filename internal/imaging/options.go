package imaging

import "github.com/spf13/cast"

// Options is the configuration bag of a single transform step. Values come
// straight from the fields file, so a number may arrive as 3, 3.0 or "3".
// Getters coerce what they can and fall back to the supplied default for
// missing or unparseable values.
type Options map[string]any

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Int returns key as an integer. Fractional values are truncated.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return int(f)
	}
	return def
}

// Float returns key as a float64.
func (o Options) Float(key string, def float64) float64 {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// String returns key as a string.
func (o Options) String(key string, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Flag reports whether key is the string "True" or the boolean true. An
// unquoted True in a YAML file arrives as the boolean. Anything else,
// including "true", "1" or a missing key, is false.
func (o Options) Flag(key string) bool {
	switch v := o[key].(type) {
	case string:
		return v == "True"
	case bool:
		return v
	default:
		return false
	}
}
