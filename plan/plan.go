// Package plan compiles human-readable flight plans into the portable
// config form. Plans name their states; the compiler validates the plan
// against a CUE schema, checks the referential rules the schema cannot
// express, and resolves state names into positional indices.
package plan

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// A File is the decoded, schema-validated form of a plan, before name
// resolution.
type File struct {
	Default string  `json:"default"`
	States  []State `json:"states"`
}

// A State is one named flight phase of a plan.
type State struct {
	Name     string    `json:"name"`
	Checks   []Check   `json:"checks,omitempty"`
	Commands []Command `json:"commands,omitempty"`
	Timeout  *Timeout  `json:"timeout,omitempty"`
}

// A Check is one condition of a plan state.
type Check struct {
	Check string `json:"check"`

	GreaterThan *float64 `json:"greater_than,omitempty"`
	LessThan    *float64 `json:"less_than,omitempty"`
	Between     *Range   `json:"between,omitempty"`

	Expect *bool `json:"expect,omitempty"`

	Transition string `json:"transition,omitempty"`
	Abort      string `json:"abort,omitempty"`
}

// A Range is a closed altitude interval.
type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// A Command is one delayed action of a plan state.
type Command struct {
	Command string  `json:"command"`
	Value   any     `json:"value"`
	Delay   float64 `json:"delay,omitempty"`
}

// A Timeout is the maximum dwell time of a plan state.
type Timeout struct {
	After      float64 `json:"after"`
	Transition string  `json:"transition,omitempty"`
	Abort      string  `json:"abort,omitempty"`
}

// Parse validates raw plan bytes against the schema and decodes them. The
// format is chosen from the file extension: .cue and .json are read as CUE,
// .yaml and .yml through the YAML bridge.
func Parse(data []byte, filename string) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal schema error: %w", err)
	}

	planSchema := schema.LookupPath(cue.ParsePath("#Plan"))
	if err := planSchema.Err(); err != nil {
		return nil, fmt.Errorf("internal schema error: %w", err)
	}

	var value cue.Value

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, fmt.Errorf("parse plan %s: %w", filename, err)
		}

		value = ctx.BuildFile(f)
	default:
		value = ctx.CompileBytes(data, cue.Filename(filename))
	}

	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", filename, err)
	}

	unified := planSchema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("plan %s does not match schema: %w", filename, err)
	}

	var f File
	if err := unified.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", filename, err)
	}

	return &f, nil
}
