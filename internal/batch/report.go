package batch

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// JSON encodes the report as
//
//	{"plan": ..., "capacity": ..., "initial": ..., "final": [...],
//	 "steps": [{"index", "op", "result", "render", "error"}]}
//
// "result" and "error" are omitted when empty.
func (r *Report) JSON() ([]byte, error) {
	doc := []byte(`{}`)
	set := func(path string, value any) error {
		var err error
		doc, err = sjson.SetBytes(doc, path, value)
		if err != nil {
			return fmt.Errorf("encoding report %s: %w", path, err)
		}
		return nil
	}

	final := r.Final
	if final == nil {
		final = []string{}
	}
	if err := set("plan", r.Plan); err != nil {
		return nil, err
	}
	if err := set("capacity", r.Capacity); err != nil {
		return nil, err
	}
	if err := set("initial", r.Initial); err != nil {
		return nil, err
	}
	if err := set("final", final); err != nil {
		return nil, err
	}
	if err := set("steps", []any{}); err != nil {
		return nil, err
	}

	for _, s := range r.Steps {
		step := map[string]any{
			"index":  s.Index,
			"op":     s.Op.String(),
			"render": s.Render,
		}
		if s.Result != "" {
			step["result"] = s.Result
		}
		if s.Err != nil {
			step["error"] = s.Err.Error()
		}
		if err := set("steps.-1", step); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
