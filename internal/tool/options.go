package tool

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/hpungsan/docmint/internal/errors"
)

// OptionType is the scalar type of a tool option.
type OptionType string

const (
	OptString OptionType = "string"
	OptInt    OptionType = "int"
	OptBool   OptionType = "bool"
	OptEnum   OptionType = "enum"
)

// Option declares one configurable input of a tool.
type Option struct {
	Name  string     `json:"name"`
	Label string     `json:"label"`
	Help  string     `json:"help,omitempty"`
	Type  OptionType `json:"type"`

	// Default is applied when the option is missing. A required option
	// without default must be supplied by the caller.
	Default  any  `json:"default,omitempty"`
	Required bool `json:"required,omitempty"`

	// Min and Max bound int options when Bounded is set.
	Min     int  `json:"min,omitempty"`
	Max     int  `json:"max,omitempty"`
	Bounded bool `json:"bounded,omitempty"`

	// Choices lists the lower-case values an enum option accepts.
	Choices []string `json:"choices,omitempty"`
}

// IntOption declares an int option bounded to [min, max].
func IntOption(name, label string, def, min, max int) Option {
	return Option{Name: name, Label: label, Type: OptInt, Default: def, Min: min, Max: max, Bounded: true}
}

// EnumOption declares an enum option; def must be one of choices.
func EnumOption(name, label, def string, choices ...string) Option {
	return Option{Name: name, Label: label, Type: OptEnum, Default: def, Choices: choices}
}

// BoolOption declares a boolean option.
func BoolOption(name, label string, def bool) Option {
	return Option{Name: name, Label: label, Type: OptBool, Default: def}
}

// WithHelp returns a copy of o with help text.
func (o Option) WithHelp(help string) Option {
	o.Help = help
	return o
}

// Options holds validated, typed option values.
type Options map[string]any

// Int returns an int option (0 if absent).
func (o Options) Int(name string) int {
	v, _ := o[name].(int)
	return v
}

// Bool returns a bool option (false if absent).
func (o Options) Bool(name string) bool {
	v, _ := o[name].(bool)
	return v
}

// String returns a string or enum option ("" if absent).
func (o Options) String(name string) string {
	v, _ := o[name].(string)
	return v
}

// ValidateOptions checks raw values against schema: unknown keys are
// rejected, missing keys take their declared default, required keys without
// default must be present, and every value is coerced to its declared type.
// Empty strings count as missing for non-string options (blank form fields).
func ValidateOptions(schema []Option, raw map[string]any) (Options, error) {
	known := make(map[string]bool, len(schema))
	for _, opt := range schema {
		known[opt.Name] = true
	}
	unknown := make([]string, 0)
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.NewInvalidConfig(unknown[0], "unknown option")
	}

	out := make(Options, len(schema))
	for _, opt := range schema {
		v, present := raw[opt.Name]
		if present && v == nil {
			present = false
		}
		if s, isStr := v.(string); present && isStr && opt.Type != OptString && strings.TrimSpace(s) == "" {
			present = false
		}
		if !present {
			switch {
			case opt.Default != nil:
				v = opt.Default
			case opt.Required:
				return nil, errors.NewInvalidConfig(opt.Name, "is required")
			default:
				continue
			}
		}

		coerced, err := coerce(opt, v)
		if err != nil {
			return nil, errors.NewInvalidConfig(opt.Name, err.Error())
		}
		out[opt.Name] = coerced
	}
	return out, nil
}

func coerce(opt Option, v any) (any, error) {
	switch opt.Type {
	case OptInt:
		if f, ok := v.(float64); ok && f != math.Trunc(f) {
			return nil, fmt.Errorf("must be a whole number, got %v", f)
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("must be an integer, got %q", fmt.Sprint(v))
		}
		if opt.Bounded && (n < opt.Min || n > opt.Max) {
			return nil, fmt.Errorf("must be between %d and %d, got %d", opt.Min, opt.Max, n)
		}
		return n, nil

	case OptBool:
		if s, ok := v.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "on", "yes":
				return true, nil
			case "off", "no":
				return false, nil
			}
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("must be true or false, got %q", fmt.Sprint(v))
		}
		return b, nil

	case OptEnum:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("must be one of %s", strings.Join(opt.Choices, ", "))
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if !slices.Contains(opt.Choices, s) {
			return nil, fmt.Errorf("must be one of %s, got %q", strings.Join(opt.Choices, ", "), s)
		}
		return s, nil

	case OptString:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("must be a string")
		}
		return s, nil
	}
	return nil, fmt.Errorf("has unsupported type %q", opt.Type)
}
