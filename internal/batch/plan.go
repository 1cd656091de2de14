// Package batch replays operation files against a stout list.
//
// A plan names a node capacity, optional initial values and a list of
// operations. Plans are written in YAML or TOML:
//
//	capacity: 4
//	values: [A, B, C, D, E]
//	check: true
//	ops:
//	  - {op: remove, pos: 4}
//	  - {op: insert, pos: 0, value: Z}
//	  - {op: iter, pos: 2}
//	  - {op: next}
//	  - {op: delete}
//	  - {op: sort}
//	  - {op: sort, value: de}
//
// A sort with a value orders elements by the collation of that language tag.
// Every operation is applied in order; a failing operation is recorded in
// the report and the run continues.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Errors returned while loading a plan.
var (
	ErrUnsupportedFormat = errors.New("unsupported plan format")
	ErrUnknownOp         = errors.New("unknown operation")
	ErrMissingField      = errors.New("missing field")
)

// Op names.
const (
	OpAdd         = "add"
	OpInsert      = "insert"
	OpRemove      = "remove"
	OpGet         = "get"
	OpSet         = "set"
	OpClear       = "clear"
	OpSort        = "sort"
	OpSortReverse = "sort_reverse"
	OpIter        = "iter"
	OpNext        = "next"
	OpPrevious    = "previous"
	OpIterSet     = "iter_set"
	OpIterInsert  = "iter_insert"
	OpDelete      = "delete"
	OpRender      = "render"
)

// Plan is a parsed operation file.
type Plan struct {
	Name     string   `yaml:"name" toml:"name"`
	Capacity int      `yaml:"capacity" toml:"capacity"`
	Values   []string `yaml:"values" toml:"values"`
	// Check verifies the list structure after every operation.
	Check bool `yaml:"check" toml:"check"`
	Ops   []Op `yaml:"ops" toml:"ops"`
}

// Op is a single operation. Pos and Value are required by some operations.
type Op struct {
	Op    string  `yaml:"op" toml:"op"`
	Pos   *int    `yaml:"pos" toml:"pos"`
	Value *string `yaml:"value" toml:"value"`
}

// String renders the op the way it appears in reports, e.g. "insert(2, X)".
func (o Op) String() string {
	var args []string
	if o.Pos != nil {
		args = append(args, fmt.Sprint(*o.Pos))
	}
	if o.Value != nil {
		args = append(args, *o.Value)
	}
	return o.Op + "(" + strings.Join(args, ", ") + ")"
}

// Validate checks the op name and its required fields.
func (o Op) Validate() error {
	needPos, needValue := false, false
	switch o.Op {
	case OpAdd, OpIterSet, OpIterInsert:
		needValue = true
	case OpInsert, OpSet:
		needPos, needValue = true, true
	case OpRemove, OpGet:
		needPos = true
	case OpIter, OpClear, OpSort, OpSortReverse, OpNext, OpPrevious, OpDelete, OpRender:
	default:
		return fmt.Errorf("%q: %w", o.Op, ErrUnknownOp)
	}
	if needPos && o.Pos == nil {
		return fmt.Errorf("%s: pos: %w", o.Op, ErrMissingField)
	}
	if needValue && o.Value == nil {
		return fmt.Errorf("%s: value: %w", o.Op, ErrMissingField)
	}
	return nil
}

// Validate checks every op.
func (p *Plan) Validate() error {
	for i, op := range p.Ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// Parse decodes a plan, choosing the format from the extension of name.
func Parse(name string, data []byte) (*Plan, error) {
	var p Plan
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = filepath.Base(name)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", name, err)
	}
	return &p, nil
}

// Load reads and parses the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	return Parse(path, data)
}
